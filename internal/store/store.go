package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wfvining/motion-ca/internal/constants"
	"github.com/wfvining/motion-ca/internal/experiment"
	_ "modernc.org/sqlite" // SQLite driver
)

// Batch kinds.
const (
	KindRun      = "run"
	KindSweep    = "sweep"
	KindVelocity = "velocity"
)

// ErrNotFound is returned when a batch does not exist.
var ErrNotFound = errors.New("not found")

// Store is a SQLite-backed result store. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Batch describes one stored driver invocation.
type Batch struct {
	ID        int64             `json:"id"`
	Kind      string            `json:"kind"`
	CreatedAt time.Time         `json:"created_at"`
	Params    experiment.Params `json:"params"`
	RunCount  int               `json:"run_count"`
}

// RunRecord is a stored evaluation together with the batch it belongs to.
type RunRecord struct {
	ID        int64     `json:"id"`
	BatchID   int64     `json:"batch_id"`
	Kind      string    `json:"kind"`
	Regime    string    `json:"regime"`
	Rule      string    `json:"rule"`
	CreatedAt time.Time `json:"created_at"`
	experiment.RunResult
}

// Open opens (creating if needed) dir/motionca.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dir, constants.DatabaseFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath, now: time.Now}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) insertBatch(ctx context.Context, tx *sql.Tx, kind string, p experiment.Params, params any) (int64, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to encode parameters: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO batches (kind, created_at, regime, rule, num_agents, arena_size,
			communication_range, speed, base_seed, max_steps, params)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kind, s.now().UTC().Format(time.RFC3339Nano), p.Regime.String(), p.RuleName,
		p.Model.NumAgents, p.Model.ArenaSize, p.Model.CommunicationRange, p.Model.Speed,
		p.Model.Seed, p.MaxSteps, string(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to insert batch: %w", err)
	}
	return res.LastInsertId()
}

func insertRun(ctx context.Context, tx *sql.Tx, batchID int64, r experiment.RunResult) error {
	thresholds, err := json.Marshal(r.Thresholds)
	if err != nil {
		return fmt.Errorf("failed to encode thresholds: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (batch_id, seed, initial_density, final_density, steps, converged,
			correct, average_degree, degree_std_dev, median_degree, final_components, thresholds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batchID, r.Seed, r.InitialDensity, r.FinalDensity, r.Steps, r.Converged,
		r.Correct, r.AverageDegree, r.DegreeStdDev, r.MedianDegree, r.FinalComponents, string(thresholds))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveRun stores a single evaluation as its own batch and returns the batch ID.
func (s *Store) SaveRun(ctx context.Context, p experiment.Params, r experiment.RunResult) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = s.insertBatch(ctx, tx, KindRun, p, p); err != nil {
			return err
		}
		return insertRun(ctx, tx, id, r)
	})
	return id, err
}

// SaveSweep stores a density sweep, including every evaluation behind its
// points, and returns its batch ID.
func (s *Store) SaveSweep(ctx context.Context, sp experiment.SweepParams, points []experiment.SweepPoint) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = s.insertBatch(ctx, tx, KindSweep, sp.Params, sp); err != nil {
			return err
		}
		for _, pt := range points {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sweeps (batch_id, density, runs, correct, converged, fraction_correct, mean_steps)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, pt.Density, pt.Runs, pt.Correct, pt.Converged, pt.FractionCorrect, pt.MeanSteps); err != nil {
				return fmt.Errorf("failed to insert sweep point %v: %w", pt.Density, err)
			}
			for _, r := range pt.Results {
				if err := insertRun(ctx, tx, id, r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return id, err
}

// SaveVelocity stores the converged runs of a velocity experiment and
// returns its batch ID.
func (s *Store) SaveVelocity(ctx context.Context, vp experiment.VelocityParams, report experiment.VelocityReport) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = s.insertBatch(ctx, tx, KindVelocity, vp.Params, vp); err != nil {
			return err
		}
		for _, r := range report.Results {
			if err := insertRun(ctx, tx, id, r); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

// ListBatches returns up to limit batches, newest first. A non-positive
// limit returns all of them.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.kind, b.created_at, b.params, COUNT(r.id)
		FROM batches b LEFT JOIN runs r ON r.batch_id = b.id
		GROUP BY b.id
		ORDER BY b.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var (
			b       Batch
			created string
			params  string
		)
		if err := rows.Scan(&b.ID, &b.Kind, &created, &params, &b.RunCount); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		if b.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("batch %d: invalid timestamp: %w", b.ID, err)
		}
		// Sweep and velocity parameters embed experiment.Params, so the
		// common fields decode from any batch kind.
		if err := json.Unmarshal([]byte(params), &b.Params); err != nil {
			return nil, fmt.Errorf("batch %d: invalid parameters: %w", b.ID, err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// ListRuns returns up to limit stored runs, newest first. A non-positive
// limit returns all of them.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.batch_id, b.kind, b.regime, b.rule, b.created_at,
			r.seed, r.initial_density, r.final_density, r.steps, r.converged, r.correct,
			r.average_degree, r.degree_std_dev, r.median_degree, r.final_components, r.thresholds
		FROM runs r JOIN batches b ON b.id = r.batch_id
		ORDER BY r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec        RunRecord
			created    string
			thresholds string
		)
		if err := rows.Scan(&rec.ID, &rec.BatchID, &rec.Kind, &rec.Regime, &rec.Rule, &created,
			&rec.Seed, &rec.InitialDensity, &rec.FinalDensity, &rec.Steps, &rec.Converged, &rec.Correct,
			&rec.AverageDegree, &rec.DegreeStdDev, &rec.MedianDegree, &rec.FinalComponents, &thresholds); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %d: invalid timestamp: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(thresholds), &rec.Thresholds); err != nil {
			return nil, fmt.Errorf("run %d: invalid thresholds: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SweepPoints returns the points of a stored sweep in density order.
func (s *Store) SweepPoints(ctx context.Context, batchID int64) ([]experiment.SweepPoint, error) {
	var kind string
	err := s.db.QueryRowContext(ctx, `SELECT kind FROM batches WHERE id = ?`, batchID).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %d: %w", batchID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query batch %d: %w", batchID, err)
	}
	if kind != KindSweep {
		return nil, fmt.Errorf("batch %d is a %s, not a sweep", batchID, kind)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT density, runs, correct, converged, fraction_correct, mean_steps
		FROM sweeps WHERE batch_id = ? ORDER BY density`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweep points: %w", err)
	}
	defer rows.Close()

	var points []experiment.SweepPoint
	for rows.Next() {
		var pt experiment.SweepPoint
		if err := rows.Scan(&pt.Density, &pt.Runs, &pt.Correct, &pt.Converged, &pt.FractionCorrect, &pt.MeanSteps); err != nil {
			return nil, fmt.Errorf("failed to scan sweep point: %w", err)
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}

// DeleteBatch removes a batch and everything recorded under it.
func (s *Store) DeleteBatch(ctx context.Context, batchID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, batchID)
	if err != nil {
		return fmt.Errorf("failed to delete batch %d: %w", batchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("batch %d: %w", batchID, ErrNotFound)
	}
	return nil
}
