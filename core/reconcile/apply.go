package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Summary reports the outcome of an export run.
type Summary struct {
	// Database is the database reference the run was started with.
	Database string `json:"database"`

	// DatabaseID is the resolved catalog database id.
	DatabaseID int `json:"database_id"`

	// SyncComplete is false when the sync wait timed out or was disabled.
	SyncComplete bool `json:"sync_complete"`

	// DryRun is true when the plan was not applied.
	DryRun bool `json:"dry_run"`

	// Planned is the number of planned update calls.
	Planned int `json:"planned"`

	// Updated counts table and field updates applied successfully.
	Updated int `json:"updated"`

	// Skipped counts models and columns without a catalog counterpart.
	Skipped int `json:"skipped"`

	// MarkedCruft counts tables marked as cruft successfully.
	MarkedCruft int `json:"marked_cruft"`

	// Warnings lists the non-fatal conditions of the run.
	Warnings []Warning `json:"warnings"`

	// Actions lists the planned update calls.
	Actions []Action `json:"actions"`

	// Failures lists the update calls that failed; each is a *CatalogUnavailableError.
	Failures []error `json:"-"`
}

// Err returns the joined failures of the run, or nil when every update succeeded.
func (s *Summary) Err() error {
	return errors.Join(s.Failures...)
}

// FailureMessages returns the failures as strings, for reports.
func (s *Summary) FailureMessages() []string {
	msgs := make([]string, 0, len(s.Failures))
	for _, err := range s.Failures {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

// ApplyPlan executes the actions of a plan, one catalog call per action.
// A failed call is recorded and the remaining actions still run; nothing is retried.
func ApplyPlan(ctx context.Context, client CatalogClient, plan *ReconcilePlan, logger *zap.Logger) *Summary {
	summary := &Summary{
		DatabaseID: plan.DatabaseID,
		Planned:    len(plan.Actions),
		Actions:    plan.Actions,
		Warnings:   plan.Warnings,
	}

	for _, action := range plan.Actions {
		var err error
		switch action.Type {
		case ActionUpdateTable, ActionMarkCruft:
			err = client.UpdateTable(ctx, action.TableID, *action.Table)
		case ActionUpdateField:
			err = client.UpdateField(ctx, action.FieldID, *action.Field)
		}

		if err != nil {
			err = unavailable(action.Key, string(action.Type), err)
			logger.Error("Catalog update failed",
				zap.String("type", string(action.Type)),
				zap.String("key", action.Key),
				zap.Error(err),
			)
			summary.Failures = append(summary.Failures, err)
			continue
		}

		logger.Debug("Catalog updated",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.Strings("changes", action.Changes),
		)
		if action.Type == ActionMarkCruft {
			summary.MarkedCruft++
		} else {
			summary.Updated++
		}
	}

	return summary
}
