package entities

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ImportSource is the registry row for one external provider.
type ImportSource struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex"`
	Kind         string
	IsActive     bool
	LastImportAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImportRun records one import invocation. It is terminal once its status
// reaches completed or failed; item-level errors only inflate
// FailedRecords, they never fail the run.
type ImportRun struct {
	ID             string `gorm:"primaryKey"`
	SourceID       uint   `gorm:"index"`
	Status         RunStatus
	TotalRecords   int
	CreatedRecords int
	UpdatedRecords int
	FailedRecords  int
	ErrorLog       string
	StartedAt      time.Time
	CompletedAt    *time.Time
}

type Translation struct {
	ID          uint   `gorm:"primaryKey"`
	ContentID   string `gorm:"index:idx_translations_key,unique"`
	Language    string `gorm:"index:idx_translations_key,unique"`
	ContentType string `gorm:"index:idx_translations_key,unique"`
	Text        string
	CreatedAt   time.Time
}
