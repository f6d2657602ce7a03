package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zulandar/roadmapper/internal/provision"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("ledger: run not found")

// Store reads and writes run history.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an already migrated connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn and returns a Store.
func Open(dsn string) (*Store, error) {
	db, err := Connect(dsn)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save records a finished run and all of its results in one transaction.
func (s *Store) Save(ctx context.Context, sum *provision.Summary) error {
	created, existed, failed := sum.Counts()
	run := Run{
		ID:         sum.RunID,
		StartedAt:  sum.StartedAt,
		FinishedAt: sum.FinishedAt,
		DryRun:     sum.DryRun,
		OK:         sum.OK(),
		Created:    created,
		Existed:    existed,
		Failed:     failed,
	}
	for i, r := range sum.Results {
		rec := ResultRecord{
			RunID:      sum.RunID,
			Seq:        i,
			Kind:       string(r.Kind),
			Identifier: r.ID,
			Outcome:    string(r.Outcome),
			Detail:     r.Detail,
			DryRun:     r.DryRun,
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		run.Results = append(run.Results, rec)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&run).Error
	})
	if err != nil {
		return fmt.Errorf("ledger: save run %s: %w", sum.RunID, err)
	}
	return nil
}

// List returns the most recent runs first, without their results.
// A limit of zero or less means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := s.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its results in provisioning order.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Preload("Results", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("id = ?", id).
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: get run %s: %w", id, err)
	}
	return &run, nil
}

// LastFailed returns the failed results of the most recent non-dry run,
// or nil when that run succeeded or no run exists.
func (s *Store) LastFailed(ctx context.Context) ([]ResultRecord, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Where("dry_run = ?", false).
		Order("started_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: last run: %w", err)
	}
	var recs []ResultRecord
	err = s.db.WithContext(ctx).
		Where("run_id = ? AND outcome = ?", run.ID, string(provision.OutcomeFailed)).
		Order("seq ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: failed results for %s: %w", run.ID, err)
	}
	return recs, nil
}
