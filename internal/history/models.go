// Package history persists analysis runs to a local SQLite database so
// repeated scans of a fleet can be compared over time.
package history

import (
	"time"
)

// Run records one invocation of the analyzer.
type Run struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Root         string    `gorm:"not null"`
	AnalyzedAt   time.Time `gorm:"not null;index"`
	Devices      int       `gorm:"not null"`
	DevicesIssue int       `gorm:"not null"`
	TotalEvents  int       `gorm:"not null"`

	Results []DeviceResult `gorm:"foreignKey:RunID"`
}

// DeviceResult records the outcome for one device within a run.
type DeviceResult struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	RunID    uint   `gorm:"not null;index"`
	Bundle   string `gorm:"not null"`
	Serial   string `gorm:"index:idx_serial"`
	Status   string `gorm:"not null"`
	Firmware string
	Error    string

	Events []EventRecord `gorm:"foreignKey:DeviceResultID"`
}

// EventRecord records one timeline event for a device.
type EventRecord struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	DeviceResultID uint   `gorm:"not null;index"`
	Kind           string `gorm:"not null;index:idx_kind"`
	Stream         string `gorm:"not null"`
	Start          time.Time
	End            time.Time
	DurationSecs   int64
	Evidence       string
}
