package tui

import (
	"time"

	"github.com/clipdeck/clipdeck/internal/cloud"
	"github.com/clipdeck/clipdeck/internal/pipeline"
)

type projectLoadedMsg struct {
	project *cloud.Project
}

type captionsLoadedMsg struct {
	captions  []cloud.Caption
	fromCache bool
}

type highlightsLoadedMsg struct {
	highlights []cloud.Highlight
	fromCache  bool
}

type mediaReadyMsg struct {
	path string
}

type durationMsg struct {
	seconds float64
}

type saveDoneMsg struct {
	rev uint64
	err error
}

type stageStartedMsg struct {
	stage string
	err   error
}

type pipelineMsg struct {
	update pipeline.Update
}

type exportDoneMsg struct {
	path string
	err  error
}

type clipboardMsg struct {
	err error
}

type playerOpenedMsg struct {
	err error
}

type tickMsg time.Time

// statusClearMsg dismisses the transient status-line message, unless a
// newer one replaced it in the meantime.
type statusClearMsg struct {
	gen int
}

type errorMsg struct {
	err error
}
