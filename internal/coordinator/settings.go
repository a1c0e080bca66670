package coordinator

import (
	"context"

	"chalkitup/engine"
	"chalkitup/models"
)

// UpdateSettings implements the UpdateSettings command: patch is applied
// with a shallow field merge plus the one deep-merged HouseRules subtree
//.
func (c *Coordinator) UpdateSettings(ctx context.Context, tableID string, patch engine.SettingsPatch) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Settings = engine.UpdateSettings(t.Settings, patch)
		return t, nil
	})
}

// ResetTable restores every setting but the pin hash and table name to
// its process-wide default.
func (c *Coordinator) ResetTable(ctx context.Context, tableID string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Settings = engine.ResetTable(t.Settings)
		return t, nil
	})
}

// TogglePrivateMode implements the TogglePrivateMode command: enabling
// private mode also flips the table's coarse status to "private" (spec
// §3's invariant: status=private ⇒ session.isPrivate=true); disabling it
// returns the table to whatever settleLifecycle computes in the same commit.
func (c *Coordinator) TogglePrivateMode(ctx context.Context, tableID string, enable bool, allowedNames []string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Session = engine.TogglePrivateMode(t.Session, enable, allowedNames)
		if enable {
			t.Status = models.StatusPrivate
		} else if t.Status == models.StatusPrivate {
			t.Status = models.StatusActive
		}
		return t, nil
	})
}
