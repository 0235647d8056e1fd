package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/handiism/manga-downloader/internal/model"
)

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded batch download.
type Run struct {
	ID         string
	MangaURL   string
	Title      string
	Format     string
	StartedAt  time.Time
	FinishedAt time.Time

	ChaptersOK     int
	ChaptersFailed int
	ImagesOK       int
	ImagesFailed   int

	// Chapters is only filled by NewRun and Store.GetRun.
	Chapters []ChapterRecord
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ChapterRecord is the recorded result of one chapter in a run.
type ChapterRecord struct {
	Number       float64
	URL          string
	Dir          string
	ImagesOK     int
	ImagesFailed int
	Error        string
	Artifact     string
}

// NewRun builds a Run with a fresh ID from a batch summary.
func NewRun(mangaURL string, summary model.BatchSummary, format model.Format, startedAt, finishedAt time.Time) Run {
	run := Run{
		ID:             uuid.NewString(),
		MangaURL:       mangaURL,
		Title:          summary.Title,
		Format:         format.String(),
		StartedAt:      startedAt.UTC(),
		FinishedAt:     finishedAt.UTC(),
		ChaptersOK:     summary.Succeeded(),
		ChaptersFailed: summary.Failed(),
		ImagesOK:       summary.ImagesSucceeded(),
		ImagesFailed:   summary.ImagesFailed(),
	}

	for _, r := range summary.Chapters {
		rec := ChapterRecord{
			Number:       r.Chapter.Number,
			URL:          r.Chapter.URL,
			Dir:          r.Dir,
			ImagesOK:     r.Succeeded,
			ImagesFailed: r.Failed,
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		run.Chapters = append(run.Chapters, rec)
	}
	return run
}

// Store persists download runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordRun stores a run and its chapter records in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, manga_url, title, format, started_at, finished_at,
            chapters_ok, chapters_failed, images_ok, images_failed
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.MangaURL,
		run.Title,
		run.Format,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.ChaptersOK,
		run.ChaptersFailed,
		run.ImagesOK,
		run.ImagesFailed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, ch := range run.Chapters {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_chapters (
                run_id, url, number, dir, images_ok, images_failed, error, artifact
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, ch.URL, ch.Number, ch.Dir, ch.ImagesOK, ch.ImagesFailed, ch.Error, ch.Artifact,
		)
		if err != nil {
			return fmt.Errorf("insert chapter %s: %w", model.FormatNumber(ch.Number), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// SetArtifact records the conversion artifact of a chapter in a run.
func (s *Store) SetArtifact(ctx context.Context, runID, chapterURL, artifact string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE run_chapters SET artifact = ? WHERE run_id = ? AND url = ?",
		artifact, runID, chapterURL,
	)
	if err != nil {
		return fmt.Errorf("update artifact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrRunNotFound, runID, chapterURL)
	}
	return nil
}

// ListRuns returns the most recent runs first, without chapter records.
// A non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, manga_url, title, format, started_at, finished_at,
                     chapters_ok, chapters_failed, images_ok, images_failed
              FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns a run with its chapter records.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, manga_url, title, format, started_at, finished_at,
                chapters_ok, chapters_failed, images_ok, images_failed
         FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}

	run.Chapters, err = s.Chapters(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// Chapters returns the chapter records of a run ordered by chapter number.
func (s *Store) Chapters(ctx context.Context, runID string) ([]ChapterRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, url, dir, images_ok, images_failed, error, artifact
         FROM run_chapters WHERE run_id = ? ORDER BY number`, runID)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	var records []ChapterRecord
	for rows.Next() {
		var rec ChapterRecord
		if err := rows.Scan(&rec.Number, &rec.URL, &rec.Dir, &rec.ImagesOK, &rec.ImagesFailed, &rec.Error, &rec.Artifact); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var started, finished string
	err := row.Scan(
		&run.ID, &run.MangaURL, &run.Title, &run.Format, &started, &finished,
		&run.ChaptersOK, &run.ChaptersFailed, &run.ImagesOK, &run.ImagesFailed,
	)
	if err != nil {
		return Run{}, err
	}

	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return run, nil
}
