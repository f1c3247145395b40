package cloud

import "encoding/json"

// Project is the remote project record, as served by the pipeline API.
type Project struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	SourceURL  *string `json:"source_url"`
	SourcePath *string `json:"source_path"`
	OutputPath *string `json:"output_path"`
	CreatedAt  string  `json:"created_at"`
}

// Caption is a machine-generated caption row. StyleJSON is kept raw
// because the service may return an object, a JSON-encoded string of an
// object, or null; resolution happens at the caption store boundary.
type Caption struct {
	ID        int64           `json:"id"`
	ProjectID int64           `json:"project_id"`
	StartTime float64         `json:"start_time"`
	EndTime   float64         `json:"end_time"`
	Text      string          `json:"text"`
	StyleJSON json.RawMessage `json:"style_json"`
}

// CaptionUpdate is one element of the full-replace save payload.
// StyleJSON is always a structured object on the way up.
type CaptionUpdate struct {
	StartTime float64         `json:"start_time"`
	EndTime   float64         `json:"end_time"`
	Text      string          `json:"text"`
	StyleJSON json.RawMessage `json:"style_json"`
}

// Highlight is a detected highlight segment.
type Highlight struct {
	ID        int64   `json:"id"`
	ProjectID int64   `json:"project_id"`
	Title     string  `json:"title"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Reason    *string `json:"reason"`
	Order     int     `json:"order"`
}

// StatusResponse is the lightweight status probe payload.
type StatusResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// RenderProgress is the fine-grained render poll payload. Progress is
// reported by the service and is not trusted to be in range.
type RenderProgress struct {
	ProjectID int64   `json:"project_id"`
	Status    string  `json:"status"`
	Progress  int     `json:"progress"`
	Stage     string  `json:"stage"`
	OutputURL *string `json:"output_url"`
}

type captionsEnvelope struct {
	Captions []CaptionUpdate `json:"captions"`
}

type renderRequest struct {
	HighlightIDs []int64 `json:"highlight_ids,omitempty"`
}
