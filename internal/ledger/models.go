package ledger

import "time"

// Run is one recorded provisioning run.
type Run struct {
	ID         string    `gorm:"primaryKey;size:36"`
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time
	DryRun     bool
	OK         bool
	Created    int
	Existed    int
	Failed     int
	Results    []ResultRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// ResultRecord is one resource outcome within a Run.
type ResultRecord struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	RunID      string `gorm:"size:36;index:idx_run_seq"`
	Seq        int    `gorm:"index:idx_run_seq"`
	Kind       string `gorm:"size:16;index"`
	Identifier string `gorm:"size:255"`
	Outcome    string `gorm:"size:16"`
	Detail     string `gorm:"size:255"`
	Error      string `gorm:"type:text"`
	DryRun     bool
}

// AllModels returns the ledger tables for migration.
func AllModels() []interface{} {
	return []interface{}{
		&Run{},
		&ResultRecord{},
	}
}
