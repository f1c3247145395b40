// Package pipeline owns the remote processing state machine: the
// status value, action gating, and the polling loops that keep the
// editor's view of the pipeline current.
package pipeline

// Status is the remote pipeline state of a project.
type Status string

const (
	StatusPending      Status = "pending"
	StatusDownloading  Status = "downloading"
	StatusTranscribing Status = "transcribing"
	StatusHighlighting Status = "highlighting"
	StatusReady        Status = "ready"
	StatusRendering    Status = "rendering"
	StatusDone         Status = "done"
	StatusError        Status = "error"
)

// Processing reports whether the status belongs to the processing
// subset: stage-triggering actions are disabled and polling is active.
func (s Status) Processing() bool {
	switch s {
	case StatusDownloading, StatusTranscribing, StatusHighlighting, StatusRendering:
		return true
	default:
		return false
	}
}

// Label returns a short human-readable form for the status line.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDownloading:
		return "downloading source"
	case StatusTranscribing:
		return "transcribing"
	case StatusHighlighting:
		return "analyzing highlights"
	case StatusReady:
		return "ready"
	case StatusRendering:
		return "rendering"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return string(s)
	}
}

// Tracker holds the current status together with the prerequisite facts
// that gate user-invoked stage actions. It is owned by the editing view
// for its lifetime; nothing else mutates it.
type Tracker struct {
	status       Status
	hasSourceURL bool
	hasMedia     bool
	hasOutput    bool
	captionCount int
}

func NewTracker() *Tracker {
	return &Tracker{status: StatusPending}
}

func (t *Tracker) Status() Status        { return t.status }
func (t *Tracker) SetStatus(s Status)    { t.status = s }
func (t *Tracker) HasMedia() bool        { return t.hasMedia }
func (t *Tracker) HasOutput() bool       { return t.hasOutput }
func (t *Tracker) Processing() bool      { return t.status.Processing() }
func (t *Tracker) SetCaptionCount(n int) { t.captionCount = n }
func (t *Tracker) SetHasMedia(v bool)    { t.hasMedia = v }
func (t *Tracker) SetHasOutput(v bool)   { t.hasOutput = v }

// SetProject refreshes the prerequisite facts from a project record.
func (t *Tracker) SetProject(status Status, hasSourceURL, hasMedia, hasOutput bool) {
	t.status = status
	t.hasSourceURL = hasSourceURL
	t.hasMedia = hasMedia
	t.hasOutput = hasOutput
}

// Action gating. A stage action is accepted only if its prerequisite
// holds and no processing stage is active; otherwise the control stays
// disabled and the call is never attempted.

// CanAcquire requires a source reference.
func (t *Tracker) CanAcquire() bool {
	return t.hasSourceURL && !t.status.Processing()
}

// CanTranscribe requires previously acquired media.
func (t *Tracker) CanTranscribe() bool {
	return t.hasMedia && !t.status.Processing()
}

// CanHighlight requires a non-empty caption set.
func (t *Tracker) CanHighlight() bool {
	return t.captionCount > 0 && !t.status.Processing()
}

// CanRender requires previously acquired media.
func (t *Tracker) CanRender() bool {
	return t.hasMedia && !t.status.Processing()
}
