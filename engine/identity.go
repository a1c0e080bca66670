package engine

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"regexp"
	"strings"

	"chalkitup/models"
)

// shortCodeAlphabet excludes the visually ambiguous characters I, O, 0, 1.
const shortCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var shortCodePattern = regexp.MustCompile(`^CHALK-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{4}$`)

// HashPin returns the lowercase hex SHA-256 digest of a UTF-8 PIN. A plain,
// fast digest is intentional here: PINs are short numeric codes checked on
// every table action, not passwords guarding an account, so bcrypt/scrypt's
// deliberate slowness would just add latency without a matching threat.
func HashPin(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// VerifyPin reports whether pin hashes to the stored digest, comparing in
// constant time to avoid leaking the digest via timing.
func VerifyPin(pin, storedHash string) bool {
	candidate := HashPin(pin)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}

// GenerateShortCode returns a fresh `CHALK-XXXX` code drawn uniformly from
// shortCodeAlphabet using a CSPRNG.
func GenerateShortCode() (string, error) {
	charsLen := big.NewInt(int64(len(shortCodeAlphabet)))
	buf := make([]byte, models.ShortCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, charsLen)
		if err != nil {
			return "", err
		}
		buf[i] = shortCodeAlphabet[n.Int64()]
	}
	return "CHALK-" + string(buf), nil
}

// NormalizeShortCode trims and uppercases a user-typed code.
func NormalizeShortCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateShortCode reports whether a normalized code matches the wire
// format `CHALK-[A-HJ-NP-Z2-9]{4}`.
func ValidateShortCode(code string) bool {
	return shortCodePattern.MatchString(code)
}
