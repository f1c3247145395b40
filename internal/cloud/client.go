package cloud

import (
	"context"
	"fmt"
)

// APIError represents a non-2xx response from the pipeline service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pipeline api: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx)
// are considered permanent.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// Client is the remote pipeline service contract the editor consumes.
// All calls take a context; in-flight requests are abandoned, never
// undone, when it is cancelled.
type Client interface {
	GetProject(ctx context.Context, projectID int64) (*Project, error)
	GetStatus(ctx context.Context, projectID int64) (*StatusResponse, error)

	ListCaptions(ctx context.Context, projectID int64) ([]Caption, error)
	ReplaceCaptions(ctx context.Context, projectID int64, captions []CaptionUpdate) error
	ListHighlights(ctx context.Context, projectID int64) ([]Highlight, error)

	StartAcquire(ctx context.Context, projectID int64) error
	StartTranscribe(ctx context.Context, projectID int64) error
	StartHighlights(ctx context.Context, projectID int64) error
	StartRender(ctx context.Context, projectID int64, highlightIDs []int64) error
	GetRenderProgress(ctx context.Context, projectID int64) (*RenderProgress, error)

	// Media byte streams, consumed by the playback side without parsing.
	DownloadSource(ctx context.Context, projectID int64, destPath string) error
	DownloadOutput(ctx context.Context, projectID int64, destPath string) error
	VideoURL(projectID int64) string
	OutputURL(projectID int64) string
}
