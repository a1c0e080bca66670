package engine

import (
	"testing"

	"chalkitup/models"
)

func TestUpdateSettings_ShallowOverwritesOnlySetFields(t *testing.T) {
	current := models.DefaultSettings("hash", "Table 1")
	newName := "Table Two"
	patch := SettingsPatch{TableName: &newName}

	next := UpdateSettings(current, patch)

	if next.TableName != "Table Two" {
		t.Fatalf("expected table name updated, got %q", next.TableName)
	}
	if next.NoShowTimeoutSeconds != current.NoShowTimeoutSeconds {
		t.Fatalf("expected untouched field left at default, got %d", next.NoShowTimeoutSeconds)
	}
}

func TestUpdateSettings_DeepMergesHouseRulesFieldByField(t *testing.T) {
	current := models.DefaultSettings("hash", "Table 1")
	blackSpot := true
	patch := SettingsPatch{HouseRules: &HouseRulesPatch{BlackSpotRule: &blackSpot}}

	next := UpdateSettings(current, patch)

	if !next.HouseRules.BlackSpotRule {
		t.Fatalf("expected black spot rule enabled")
	}
	if next.HouseRules.BreakRule != current.HouseRules.BreakRule {
		t.Fatalf("expected untouched house rule field preserved, got %v", next.HouseRules.BreakRule)
	}
}

func TestResetTable_KeepsPinHashAndNameRestoresRest(t *testing.T) {
	current := models.DefaultSettings("hash", "Table 1")
	current.SoundEnabled = false
	current.WinLimitEnabled = true
	current.WinLimitCount = 99

	reset := ResetTable(current)

	if reset.PinHash != "hash" || reset.TableName != "Table 1" {
		t.Fatalf("expected pin hash and table name preserved, got %+v", reset)
	}
	if reset.WinLimitEnabled != false || reset.WinLimitCount != models.DefaultWinLimitCount {
		t.Fatalf("expected win limit settings restored to defaults, got %+v", reset)
	}
}

func TestTogglePrivateMode_OnRecordsAllowedNamesOffClears(t *testing.T) {
	session := models.SessionState{}

	on := TogglePrivateMode(session, true, []string{"Alice", "Bob"})
	if !on.IsPrivate || len(on.PrivatePlayerNames) != 2 {
		t.Fatalf("expected private mode enabled with allowed names, got %+v", on)
	}

	off := TogglePrivateMode(on, false, nil)
	if off.IsPrivate || off.PrivatePlayerNames != nil {
		t.Fatalf("expected private mode disabled and names cleared, got %+v", off)
	}
}
