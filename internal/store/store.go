// Package store is the local persistence layer: application settings,
// the recent-projects list, and cached server snapshots of captions and
// highlights so a project opens instantly while fresh data loads.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clipdeck/clipdeck/internal/cloud"
)

type RecentProject struct {
	ProjectID int64
	Title     string
	Status    string
	OpenedAt  time.Time
}

type Repository interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error

	TouchRecentProject(ctx context.Context, projectID int64, title, status string) error
	ListRecentProjects(ctx context.Context, limit int) ([]*RecentProject, error)

	SaveCaptionSnapshot(ctx context.Context, projectID int64, captions []cloud.Caption) error
	GetCaptionSnapshot(ctx context.Context, projectID int64) ([]cloud.Caption, error)

	SaveHighlightSnapshot(ctx context.Context, projectID int64, highlights []cloud.Highlight) error
	GetHighlightSnapshot(ctx context.Context, projectID int64) ([]cloud.Highlight, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (r *SQLiteRepository) TouchRecentProject(ctx context.Context, projectID int64, title, status string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recent_projects (project_id, title, status, opened_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			opened_at = excluded.opened_at
	`, projectID, title, status, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) ListRecentProjects(ctx context.Context, limit int) ([]*RecentProject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT project_id, title, status, opened_at
		FROM recent_projects ORDER BY opened_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*RecentProject
	for rows.Next() {
		var p RecentProject
		var openedAt string
		if err := rows.Scan(&p.ProjectID, &p.Title, &p.Status, &openedAt); err != nil {
			return nil, err
		}
		p.OpenedAt, _ = time.Parse(time.RFC3339, openedAt)
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) SaveCaptionSnapshot(ctx context.Context, projectID int64, captions []cloud.Caption) error {
	return r.saveSnapshot(ctx, "caption_snapshots", projectID, captions)
}

func (r *SQLiteRepository) GetCaptionSnapshot(ctx context.Context, projectID int64) ([]cloud.Caption, error) {
	var captions []cloud.Caption
	found, err := r.loadSnapshot(ctx, "caption_snapshots", projectID, &captions)
	if err != nil || !found {
		return nil, err
	}
	return captions, nil
}

func (r *SQLiteRepository) SaveHighlightSnapshot(ctx context.Context, projectID int64, highlights []cloud.Highlight) error {
	return r.saveSnapshot(ctx, "highlight_snapshots", projectID, highlights)
}

func (r *SQLiteRepository) GetHighlightSnapshot(ctx context.Context, projectID int64) ([]cloud.Highlight, error) {
	var highlights []cloud.Highlight
	found, err := r.loadSnapshot(ctx, "highlight_snapshots", projectID, &highlights)
	if err != nil || !found {
		return nil, err
	}
	return highlights, nil
}

func (r *SQLiteRepository) saveSnapshot(ctx context.Context, table string, projectID int64, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (project_id, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, table), projectID, string(payload), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) loadSnapshot(ctx context.Context, table string, projectID int64, v any) (bool, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT payload FROM %s WHERE project_id = ?", table), projectID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return true, nil
}
