package engine

import "chalkitup/models"

// SettingsPatch is a partial update to Settings. Every field is a pointer
// so that "absent" and "explicitly set to the zero value" are distinct.
// HouseRules is the one subtree that deep-merges field by field; every
// other field is a shallow overwrite.
type SettingsPatch struct {
	TableName                 *string
	NoShowTimeoutSeconds      *int
	HoldMaxMinutes            *int
	WinLimitEnabled           *bool
	WinLimitCount             *int
	AttractModeTimeoutMinutes *int
	SoundEnabled              *bool
	SoundVolume               *float64
	Theme                     *models.Theme
	HouseRules                *HouseRulesPatch
}

// HouseRulesPatch is the deep-merged subtree of SettingsPatch.
type HouseRulesPatch struct {
	BreakRule     *models.BreakRule
	FoulRule      *models.FoulRule
	BlackSpotRule *bool
}

// UpdateSettings applies patch on top of current, shallow-overwriting
// every top-level field that patch sets and deep-merging HouseRules field
// by field. Fields patch leaves nil are left untouched.
func UpdateSettings(current models.Settings, patch SettingsPatch) models.Settings {
	next := current

	if patch.TableName != nil {
		next.TableName = *patch.TableName
	}
	if patch.NoShowTimeoutSeconds != nil {
		next.NoShowTimeoutSeconds = *patch.NoShowTimeoutSeconds
	}
	if patch.HoldMaxMinutes != nil {
		next.HoldMaxMinutes = *patch.HoldMaxMinutes
	}
	if patch.WinLimitEnabled != nil {
		next.WinLimitEnabled = *patch.WinLimitEnabled
	}
	if patch.WinLimitCount != nil {
		next.WinLimitCount = *patch.WinLimitCount
	}
	if patch.AttractModeTimeoutMinutes != nil {
		next.AttractModeTimeoutMinutes = *patch.AttractModeTimeoutMinutes
	}
	if patch.SoundEnabled != nil {
		next.SoundEnabled = *patch.SoundEnabled
	}
	if patch.SoundVolume != nil {
		next.SoundVolume = *patch.SoundVolume
	}
	if patch.Theme != nil {
		next.Theme = *patch.Theme
	}

	if patch.HouseRules != nil {
		hr := current.HouseRules
		if patch.HouseRules.BreakRule != nil {
			hr.BreakRule = *patch.HouseRules.BreakRule
		}
		if patch.HouseRules.FoulRule != nil {
			hr.FoulRule = *patch.HouseRules.FoulRule
		}
		if patch.HouseRules.BlackSpotRule != nil {
			hr.BlackSpotRule = *patch.HouseRules.BlackSpotRule
		}
		next.HouseRules = hr
	}

	return next
}

// ResetTable implements the settings side of ResetTable: it keeps the pin
// hash and table name but restores every other setting to its default.
func ResetTable(current models.Settings) models.Settings {
	defaults := models.DefaultSettings(current.PinHash, current.TableName)
	return defaults
}

// TogglePrivateMode flips session privacy, recording the allowed name list
// when turning private mode on and clearing it when turning it off.
func TogglePrivateMode(session models.SessionState, enable bool, allowedNames []string) models.SessionState {
	next := session
	next.IsPrivate = enable
	if enable {
		next.PrivatePlayerNames = append([]string(nil), allowedNames...)
	} else {
		next.PrivatePlayerNames = nil
	}
	return next
}
