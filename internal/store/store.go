// Package store persists resumes and their match scores in PostgreSQL.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// ErrNotFound is returned when a requested resume or score row does
// not exist.
var ErrNotFound = errors.New("not found")

// Resume is an uploaded resume file reference. Immutable after
// creation; a re-upload creates a new row.
type Resume struct {
	ID         int       `json:"id"`
	EmployeeID int       `json:"employee_id"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"upload_timestamp"`
}

// MatchScore is the blended score and analysis for one resume. At most
// one live row per resume.
type MatchScore struct {
	ResumeID int       `json:"resume_id"`
	Score    float64   `json:"score"`
	Analysis string    `json:"analysis"`
	ScoredAt time.Time `json:"scored_at"`
}

// ScoredProfile joins a match score with the candidate's profile for
// employer-facing listings.
type ScoredProfile struct {
	MatchScore
	UserID         int    `json:"user_id"`
	Name           string `json:"name"`
	Skills         string `json:"skills"`
	Experience     string `json:"experience"`
	Education      string `json:"education"`
	DesiredJobType string `json:"desired_job_type"`
	Location       string `json:"location"`
	ResumeFileURL  string `json:"resume_file_url"`
}

// Store holds the pgx connection pool for matching data.
type Store struct {
	pool *pgxpool.Pool
}

// Connect creates a pgx pool and runs schema migrations.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("match postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Info("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// --- Resume CRUD ---

// CreateResume inserts a resume row and returns its ID.
func (s *Store) CreateResume(ctx context.Context, employeeID int, fileURL string) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO resumes (employee_id, file_url) VALUES ($1, $2) RETURNING id`,
		employeeID, fileURL,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert resume: %w", err)
	}
	return id, nil
}

// GetResume returns the resume with the given ID.
func (s *Store) GetResume(ctx context.Context, id int) (*Resume, error) {
	var r Resume
	err := s.pool.QueryRow(ctx,
		`SELECT id, employee_id, file_url, upload_timestamp FROM resumes WHERE id = $1`, id,
	).Scan(&r.ID, &r.EmployeeID, &r.FileURL, &r.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resume %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get resume %d: %w", id, err)
	}
	return &r, nil
}

// ResumesByEmployee returns all resumes uploaded by an employee, newest
// first.
func (s *Store) ResumesByEmployee(ctx context.Context, employeeID int) ([]Resume, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, employee_id, file_url, upload_timestamp
		 FROM resumes WHERE employee_id = $1 ORDER BY upload_timestamp DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("resumes by employee %d: %w", employeeID, err)
	}
	defer rows.Close()

	var results []Resume
	for rows.Next() {
		var r Resume
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.FileURL, &r.UploadedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteResume removes a resume. Its score row cascades away.
func (s *Store) DeleteResume(ctx context.Context, id int) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	return err
}

// --- MatchScore ---

// ReplaceScore stores the score for a resume, superseding any prior
// row. Implemented as an upsert so a concurrent reader never observes
// a scored resume with zero rows mid-reanalysis.
func (s *Store) ReplaceScore(ctx context.Context, sc MatchScore) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_scores (resume_id, score, analysis, scored_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (resume_id) DO UPDATE
		 SET score = EXCLUDED.score, analysis = EXCLUDED.analysis, scored_at = now()`,
		sc.ResumeID, sc.Score, sc.Analysis,
	)
	if err != nil {
		return fmt.Errorf("replace score for resume %d: %w", sc.ResumeID, err)
	}
	return nil
}

// GetScore returns the current score for a resume. Absence of a score
// is a valid state for the caller to display, reported as ErrNotFound.
func (s *Store) GetScore(ctx context.Context, resumeID int) (*MatchScore, error) {
	var sc MatchScore
	err := s.pool.QueryRow(ctx,
		`SELECT resume_id, score, analysis, scored_at FROM match_scores WHERE resume_id = $1`,
		resumeID,
	).Scan(&sc.ResumeID, &sc.Score, &sc.Analysis, &sc.ScoredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("score for resume %d: %w", resumeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get score for resume %d: %w", resumeID, err)
	}
	return &sc, nil
}

// DeleteScore removes the score for a resume, if any.
func (s *Store) DeleteScore(ctx context.Context, resumeID int) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM match_scores WHERE resume_id = $1`, resumeID)
	return err
}

// UnanalyzedResumes returns resumes without a current score, oldest
// upload first. Feed for the periodic analysis sweep.
func (s *Store) UnanalyzedResumes(ctx context.Context, limit int) ([]Resume, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.employee_id, r.file_url, r.upload_timestamp
		 FROM resumes r
		 LEFT JOIN match_scores ms ON ms.resume_id = r.id
		 WHERE ms.resume_id IS NULL
		 ORDER BY r.upload_timestamp ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("unanalyzed resumes: %w", err)
	}
	defer rows.Close()

	var results []Resume
	for rows.Next() {
		var r Resume
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.FileURL, &r.UploadedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ScoresWithProfiles returns all current scores joined with candidate
// profiles, best match first.
func (s *Store) ScoresWithProfiles(ctx context.Context) ([]ScoredProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ms.resume_id, ms.score, ms.analysis, ms.scored_at,
		        r.employee_id, r.file_url,
		        COALESCE(p.name,''), COALESCE(p.skills,''), COALESCE(p.experience,''),
		        COALESCE(p.education,''), COALESCE(p.desired_job_type,''), COALESCE(p.location,'')
		 FROM match_scores ms
		 JOIN resumes r ON r.id = ms.resume_id
		 LEFT JOIN profiles p ON p.user_id = r.employee_id
		 ORDER BY ms.score DESC`)
	if err != nil {
		return nil, fmt.Errorf("scores with profiles: %w", err)
	}
	defer rows.Close()

	var results []ScoredProfile
	for rows.Next() {
		var sp ScoredProfile
		if err := rows.Scan(&sp.ResumeID, &sp.Score, &sp.Analysis, &sp.ScoredAt,
			&sp.UserID, &sp.ResumeFileURL,
			&sp.Name, &sp.Skills, &sp.Experience,
			&sp.Education, &sp.DesiredJobType, &sp.Location); err != nil {
			return nil, err
		}
		results = append(results, sp)
	}
	return results, rows.Err()
}
