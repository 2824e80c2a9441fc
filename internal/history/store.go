package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chargescan/pkg/output"
)

// Store wraps the runs database.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the history database at path and migrates the
// schema. The busy timeout keeps concurrent invocations from failing
// with SQLITE_BUSY.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if err := db.AutoMigrate(&Run{}, &DeviceResult{}, &EventRecord{}); err != nil {
		return nil, fmt.Errorf("migrating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveReport writes a full analysis report as one run.
func (s *Store) SaveReport(report *output.Report) error {
	run := &Run{
		Root:         report.Metadata.Root,
		AnalyzedAt:   report.Metadata.AnalyzedAt,
		Devices:      report.Summary.Devices,
		DevicesIssue: report.Summary.DevicesIssue,
		TotalEvents:  report.Summary.TotalEvents,
	}

	for _, dev := range report.Devices {
		res := DeviceResult{
			Bundle:   dev.Bundle,
			Serial:   dev.Serial,
			Status:   string(dev.Status),
			Firmware: dev.Firmware.Current,
			Error:    dev.Error,
		}
		for _, ev := range dev.Events {
			res.Events = append(res.Events, EventRecord{
				Kind:         string(ev.Kind),
				Stream:       ev.Stream,
				Start:        ev.Start,
				End:          ev.End,
				DurationSecs: int64(ev.Duration / time.Second),
				Evidence:     strings.Join(ev.Evidence, "\n"),
			})
		}
		run.Results = append(run.Results, res)
	}

	return s.db.Create(run).Error
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]*Run, error) {
	var runs []*Run
	err := s.db.Order("analyzed_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// DeviceHistory returns past results for a serial, newest first.
func (s *Store) DeviceHistory(serial string, limit int) ([]*DeviceResult, error) {
	var results []*DeviceResult
	err := s.db.Preload("Events").
		Where("serial = ?", serial).
		Order("id DESC").Limit(limit).
		Find(&results).Error
	return results, err
}
