package cloud

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// HTTPClient talks to the remote clip pipeline service over HTTP.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	// streamClient has no overall timeout; media downloads are bounded
	// by the caller's context instead.
	streamClient *http.Client
	logger       *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{},
		logger:       logger,
	}
}

func (c *HTTPClient) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	var p Project
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", projectID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetStatus(ctx context.Context, projectID int64) (*StatusResponse, error) {
	var s StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/status", projectID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) ListCaptions(ctx context.Context, projectID int64) ([]Caption, error) {
	var caps []Caption
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/captions", projectID), nil, &caps); err != nil {
		return nil, err
	}
	return caps, nil
}

// ReplaceCaptions atomically replaces the project's caption collection.
// There is no partial update; the server discards whatever it held.
func (c *HTTPClient) ReplaceCaptions(ctx context.Context, projectID int64, captions []CaptionUpdate) error {
	body := captionsEnvelope{Captions: captions}
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/projects/%d/captions", projectID), body, nil)
}

func (c *HTTPClient) ListHighlights(ctx context.Context, projectID int64) ([]Highlight, error) {
	var hs []Highlight
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/highlights", projectID), nil, &hs); err != nil {
		return nil, err
	}
	return hs, nil
}

func (c *HTTPClient) StartAcquire(ctx context.Context, projectID int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/download", projectID), nil, nil)
}

func (c *HTTPClient) StartTranscribe(ctx context.Context, projectID int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/transcribe", projectID), nil, nil)
}

func (c *HTTPClient) StartHighlights(ctx context.Context, projectID int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/highlight", projectID), nil, nil)
}

func (c *HTTPClient) StartRender(ctx context.Context, projectID int64, highlightIDs []int64) error {
	var body any
	if len(highlightIDs) > 0 {
		body = renderRequest{HighlightIDs: highlightIDs}
	} else {
		body = struct{}{}
	}
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/render", projectID), body, nil)
}

func (c *HTTPClient) GetRenderProgress(ctx context.Context, projectID int64) (*RenderProgress, error) {
	var rp RenderProgress
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/render/progress", projectID), nil, &rp); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (c *HTTPClient) DownloadSource(ctx context.Context, projectID int64, destPath string) error {
	return c.downloadFile(ctx, fmt.Sprintf("/projects/%d/video", projectID), destPath)
}

func (c *HTTPClient) DownloadOutput(ctx context.Context, projectID int64, destPath string) error {
	return c.downloadFile(ctx, fmt.Sprintf("/projects/%d/output", projectID), destPath)
}

func (c *HTTPClient) VideoURL(projectID int64) string {
	return fmt.Sprintf("%s/projects/%d/video", c.baseURL, projectID)
}

func (c *HTTPClient) OutputURL(projectID int64) string {
	return fmt.Sprintf("%s/projects/%d/output", c.baseURL, projectID)
}

// doJSON performs one request with auth and correlation headers. A nil
// out discards the response body; a nil in sends no body.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Clipdeck-Request-Id", generateRequestID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// downloadFile streams a media endpoint to destPath. Written through a
// temp file so a cancelled download never leaves a truncated cache entry.
func (c *HTTPClient) downloadFile(ctx context.Context, path, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write media file: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("finalize media file: %w", err)
	}

	c.logger.Info("media downloaded", "path", destPath, "bytes", written)
	return nil
}

func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
