package history

import "time"

// Run statuses.
const (
	// StatusSucceeded means every planned update was applied.
	StatusSucceeded = "succeeded"
	// StatusPartial means some update calls failed.
	StatusPartial = "partial"
	// StatusFailed means the run stopped before planning.
	StatusFailed = "failed"
)

// ExportRun represents the 'export_runs' table.
type ExportRun struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Database     string    `gorm:"column:database_name;size:255;index" json:"database"`
	Status       string    `gorm:"column:status;size:16" json:"status"`
	DryRun       bool      `gorm:"column:dry_run" json:"dry_run"`
	SyncComplete bool      `gorm:"column:sync_complete" json:"sync_complete"`
	Planned      int       `gorm:"column:planned" json:"planned"`
	Updated      int       `gorm:"column:updated" json:"updated"`
	Skipped      int       `gorm:"column:skipped" json:"skipped"`
	MarkedCruft  int       `gorm:"column:marked_cruft" json:"marked_cruft"`
	Warnings     int       `gorm:"column:warnings" json:"warnings"`
	Failures     int       `gorm:"column:failures" json:"failures"`
	Error        string    `gorm:"column:error;type:text" json:"error,omitempty"`
	Report       string    `gorm:"column:report;size:512" json:"report,omitempty"` // object key of the uploaded report
	StartedAt    time.Time `gorm:"column:started_at;index" json:"started_at"`
	FinishedAt   time.Time `gorm:"column:finished_at" json:"finished_at"`
}

// TableName overrides the table name.
func (ExportRun) TableName() string {
	return "export_runs"
}

// columns lists the columns Migrate verifies.
var columns = []string{
	"id", "database_name", "status", "dry_run", "sync_complete", "planned", "updated", "skipped",
	"marked_cruft", "warnings", "failures", "error", "report", "started_at", "finished_at",
}
