package casestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const DefaultListLimit = 20

var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrInvalidDecision = errors.New("invalid human decision")
	ErrInvalidCase     = errors.New("invalid case")
)

type Config struct {
	DSN          string        `split_words:"true" required:"true"`
	DialTimeout  time.Duration `split_words:"true" default:"5s"`
	QueryTimeout time.Duration `split_words:"true" default:"10s"`
}

// Store persists reviewed cases and the human decisions recorded on them.
type Store struct {
	db  bun.IDB
	now func() time.Time
}

func New(db bun.IDB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects to Postgres through bun's pgdriver. Callers close the
// returned *bun.DB.
func Open(cfg Config) (*Store, *bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, nil, fmt.Errorf("%w: database dsn is required", ErrInvalidCase)
	}

	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if cfg.DialTimeout > 0 {
		opts = append(opts, pgdriver.WithDialTimeout(cfg.DialTimeout))
	}
	if cfg.QueryTimeout > 0 {
		opts = append(opts, pgdriver.WithReadTimeout(cfg.QueryTimeout), pgdriver.WithWriteTimeout(cfg.QueryTimeout))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	db := bun.NewDB(sqldb, pgdialect.New())
	return New(db), db, nil
}

// Init creates the cases table when missing.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*caseRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create cases table: %w", err)
	}
	return nil
}

// Save inserts the case or refreshes its workflow output. A previously
// recorded human decision and the original created_at are kept.
func (s *Store) Save(ctx context.Context, c Case) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	row, err := toRow(c)
	if err != nil {
		return err
	}

	_, err = s.db.NewInsert().
		Model(&row).
		On("CONFLICT (case_id) DO UPDATE").
		Set("source_name = EXCLUDED.source_name").
		Set("document_text = EXCLUDED.document_text").
		Set("fields_json = EXCLUDED.fields_json").
		Set("validation_json = EXCLUDED.validation_json").
		Set("review_json = EXCLUDED.review_json").
		Set("path = EXCLUDED.path").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save case %s: %w", c.ID, err)
	}
	return nil
}

// SetHumanDecision records the reviewer's decision on an existing case.
func (s *Store) SetHumanDecision(ctx context.Context, caseID string, decision Decision) error {
	if !decision.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	res, err := s.db.NewUpdate().
		Model((*caseRow)(nil)).
		Set("human_decision = ?", string(decision)).
		Set("human_decision_at = ?", s.now().UTC()).
		Where("case_id = ?", caseID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set decision on case %s: %w", caseID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set decision on case %s: %w", caseID, err)
	}
	if n == 0 {
		return fmt.Errorf("set decision on case %s: %w", caseID, ErrCaseNotFound)
	}
	return nil
}

// List returns the newest cases first. A non-positive limit means
// DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Case, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []caseRow
	if err := s.db.NewSelect().
		Model(&rows).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	out := make([]Case, 0, len(rows))
	for _, row := range rows {
		c, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, caseID string) (Case, error) {
	var row caseRow
	err := s.db.NewSelect().
		Model(&row).
		Where("case_id = ?", caseID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Case{}, fmt.Errorf("get case %s: %w", caseID, ErrCaseNotFound)
		}
		return Case{}, fmt.Errorf("get case %s: %w", caseID, err)
	}
	return fromRow(row)
}
