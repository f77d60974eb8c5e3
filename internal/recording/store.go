package recording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/timeutil"
)

// ErrNotFound is returned for an unknown recording ID.
var ErrNotFound = errors.New("recording not found")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Recording describes one stored capture. It holds raw inputs only; counts
// are recomputed on replay.
type Recording struct {
	ID        uuid.UUID
	Name      string
	Exercise  string // exercise selected while capturing, may be empty
	CreatedAt time.Time
	Frames    int
}

// Store is a SQLite database of recordings.
type Store struct {
	db    *sql.DB
	path  string
	clock timeutil.Clock
}

// Open opens or creates the database at path and migrates it to the latest
// schema. clock stamps new recordings; nil uses the wall clock.
func Open(path string, clock timeutil.Clock) (*Store, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection keeps the WAL pragmas and foreign keys in force.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	s := &Store{db: db, path: path, clock: clock}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	monitoring.Logf("recording: opened store %s", path)
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	monitoring.Logf("recording: closing store %s", s.path)
	return s.db.Close()
}

// Create registers a new empty recording.
func (s *Store) Create(ctx context.Context, name, exercise string) (Recording, error) {
	rec := Recording{
		ID:        uuid.New(),
		Name:      name,
		Exercise:  exercise,
		CreatedAt: s.clock.Now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recordings (recording_id, name, exercise, created_unix) VALUES (?, ?, ?, ?)`,
		rec.ID.String(), rec.Name, rec.Exercise, rec.CreatedAt.Unix())
	if err != nil {
		return Recording{}, fmt.Errorf("create recording %q: %w", name, err)
	}
	return rec, nil
}

// Append adds samples after any already stored for id.
func (s *Store) Append(ctx context.Context, id uuid.UUID, samples []Sample) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recordings WHERE recording_id = ?`, id.String()).Scan(&exists); err != nil {
		return fmt.Errorf("lookup recording %s: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("append to %s: %w", id, ErrNotFound)
	}

	var next int64
	if err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM recording_frames WHERE recording_id = ?`, id.String()).Scan(&next); err != nil {
		return fmt.Errorf("next sequence for %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO recording_frames (recording_id, seq, ts, frame_json) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for i, smp := range samples {
		var data []byte
		if data, err = Marshal(smp); err != nil {
			return err
		}
		if _, err = stmt.ExecContext(ctx, id.String(), next+int64(i), smp.Frame.Timestamp, string(data)); err != nil {
			return fmt.Errorf("insert frame %d: %w", next+int64(i), err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// Get returns the recording with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Recording, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.recording_id, r.name, r.exercise, r.created_unix,
		       (SELECT COUNT(*) FROM recording_frames f WHERE f.recording_id = r.recording_id)
		FROM recordings r WHERE r.recording_id = ?`, id.String())
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Recording{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Recording{}, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

// List returns all recordings, newest first.
func (s *Store) List(ctx context.Context) ([]Recording, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.recording_id, r.name, r.exercise, r.created_unix,
		       (SELECT COUNT(*) FROM recording_frames f WHERE f.recording_id = r.recording_id)
		FROM recordings r ORDER BY r.created_unix DESC, r.name`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var out []Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Samples loads the frames of id in capture order, applying minVisibility as
// the decoder does.
func (s *Store) Samples(ctx context.Context, id uuid.UUID, minVisibility float64) ([]Sample, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, frame_json FROM recording_frames WHERE recording_id = ? ORDER BY seq`, id.String())
	if err != nil {
		return nil, fmt.Errorf("load frames for %s: %w", id, err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var seq int64
		var data string
		if err := rows.Scan(&seq, &data); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		smp, err := Unmarshal([]byte(data), minVisibility)
		if err != nil {
			return nil, fmt.Errorf("frame %d of %s: %w", seq, id, err)
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

// Delete removes a recording and its frames.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recording_frames WHERE recording_id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete frames of %s: %w", id, err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE recording_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecording(sc scanner) (Recording, error) {
	var (
		rec     Recording
		rawID   string
		created int64
	)
	if err := sc.Scan(&rawID, &rec.Name, &rec.Exercise, &created, &rec.Frames); err != nil {
		return Recording{}, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Recording{}, fmt.Errorf("parse id %q: %w", rawID, err)
	}
	rec.ID = id
	rec.CreatedAt = time.Unix(created, 0).UTC()
	return rec, nil
}
