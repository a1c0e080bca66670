// Package config loads process-wide configuration for the table session
// service via viper bound to environment variables, using
// SetDefault/BindEnv instead of hand-rolled os.Getenv lookups.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is every environment-driven setting the server binary needs.
type Config struct {
	HTTPAddr string

	DBDriver string // "sqlite" or "mysql"
	DBDSN    string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string
}

// Load reads configuration from the environment (and any already-loaded
// .env file — cmd/server calls godotenv.Load before this), applying the
// defaults below when a variable is unset.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "chalkitup.db")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	for _, key := range []string{
		"http.addr", "db.driver", "db.dsn",
		"redis.host", "redis.port", "redis.password", "redis.db",
		"allowed_origins",
	} {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	origins := strings.Split(v.GetString("allowed_origins"), ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			trimmed = append(trimmed, o)
		}
	}

	return Config{
		HTTPAddr:       v.GetString("http.addr"),
		DBDriver:       v.GetString("db.driver"),
		DBDSN:          v.GetString("db.dsn"),
		RedisHost:      v.GetString("redis.host"),
		RedisPort:      v.GetString("redis.port"),
		RedisPassword:  v.GetString("redis.password"),
		RedisDB:        v.GetInt("redis.db"),
		AllowedOrigins: trimmed,
	}, nil
}
