// Package preview serves project media to the local video player over
// a loopback HTTP server with range-request support, backed by an
// on-disk cache of downloaded source and rendered files.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/clipdeck/clipdeck/internal/cloud"
)

// Cache lays out downloaded media under one directory per project:
//
//	<dir>/<projectID>/source.mp4
//	<dir>/<projectID>/output.mp4
type Cache struct {
	dir    string
	client cloud.Client
	logger *slog.Logger
}

func NewCache(dir string, client cloud.Client, logger *slog.Logger) *Cache {
	return &Cache{dir: dir, client: client, logger: logger}
}

func (c *Cache) SourcePath(projectID int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d", projectID), "source.mp4")
}

func (c *Cache) OutputPath(projectID int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d", projectID), "output.mp4")
}

func (c *Cache) HasSource(projectID int64) bool {
	return fileExists(c.SourcePath(projectID))
}

func (c *Cache) HasOutput(projectID int64) bool {
	return fileExists(c.OutputPath(projectID))
}

// EnsureSource downloads the project's source media unless it is
// already cached. Returns the local path.
func (c *Cache) EnsureSource(ctx context.Context, projectID int64) (string, error) {
	path := c.SourcePath(projectID)
	if fileExists(path) {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	c.logger.Info("downloading source media", "project_id", projectID)
	if err := c.client.DownloadSource(ctx, projectID, path); err != nil {
		return "", err
	}
	return path, nil
}

// EnsureOutput downloads the rendered output unless it is already
// cached. A rerender invalidates via InvalidateOutput first.
func (c *Cache) EnsureOutput(ctx context.Context, projectID int64) (string, error) {
	path := c.OutputPath(projectID)
	if fileExists(path) {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	c.logger.Info("downloading rendered output", "project_id", projectID)
	if err := c.client.DownloadOutput(ctx, projectID, path); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Cache) InvalidateOutput(projectID int64) error {
	err := os.Remove(c.OutputPath(projectID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
