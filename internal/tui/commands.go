package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clipdeck/clipdeck/internal/captions"
	"github.com/clipdeck/clipdeck/internal/export"
	"github.com/clipdeck/clipdeck/internal/pipeline"
	"github.com/clipdeck/clipdeck/internal/player"
)

// playTickInterval drives the local playback clock while playing.
const playTickInterval = 100 * time.Millisecond

func (m Model) loadProjectCmd() tea.Cmd {
	return func() tea.Msg {
		project, err := m.client.GetProject(m.ctx, m.projectID)
		if err != nil {
			return errorMsg{err: err}
		}
		return projectLoadedMsg{project: project}
	}
}

// loadCachedCmd serves the last stored snapshot so the editor opens
// with content before the network round trip completes.
func (m Model) loadCachedCmd() tea.Cmd {
	return func() tea.Msg {
		cached, err := m.repo.GetCaptionSnapshot(m.ctx, m.projectID)
		if err != nil || cached == nil {
			return nil
		}
		return captionsLoadedMsg{captions: cached, fromCache: true}
	}
}

func (m Model) loadCaptionsCmd() tea.Cmd {
	return func() tea.Msg {
		caps, err := m.client.ListCaptions(m.ctx, m.projectID)
		if err != nil {
			return errorMsg{err: err}
		}
		if err := m.repo.SaveCaptionSnapshot(m.ctx, m.projectID, caps); err != nil {
			m.logger.Warn("failed to cache captions", "error", err)
		}
		return captionsLoadedMsg{captions: caps}
	}
}

// loadCachedHighlightsCmd is the highlight counterpart of
// loadCachedCmd: the last snapshot fills the tab until fresh data lands.
func (m Model) loadCachedHighlightsCmd() tea.Cmd {
	return func() tea.Msg {
		cached, err := m.repo.GetHighlightSnapshot(m.ctx, m.projectID)
		if err != nil || cached == nil {
			return nil
		}
		return highlightsLoadedMsg{highlights: cached, fromCache: true}
	}
}

func (m Model) loadHighlightsCmd() tea.Cmd {
	return func() tea.Msg {
		highlights, err := m.client.ListHighlights(m.ctx, m.projectID)
		if err != nil {
			return errorMsg{err: err}
		}
		if err := m.repo.SaveHighlightSnapshot(m.ctx, m.projectID, highlights); err != nil {
			m.logger.Warn("failed to cache highlights", "error", err)
		}
		return highlightsLoadedMsg{highlights: highlights}
	}
}

// saveCmd snapshots the working set on the update loop so the store is
// never touched from the request goroutine; edits made while the save
// is in flight stay dirty via the revision check in MarkClean.
func (m Model) saveCmd() tea.Cmd {
	payload, rev, err := m.captions.Snapshot()
	if err != nil {
		return func() tea.Msg { return saveDoneMsg{err: err} }
	}
	return func() tea.Msg {
		return saveDoneMsg{rev: rev, err: m.client.ReplaceCaptions(m.ctx, m.projectID, payload)}
	}
}

func (m Model) startStageCmd(stage string, start func() error) tea.Cmd {
	return func() tea.Msg {
		return stageStartedMsg{stage: stage, err: start()}
	}
}

// ensureMediaCmd downloads the source into the local cache if needed
// and probes its duration.
func (m Model) ensureMediaCmd() tea.Cmd {
	return func() tea.Msg {
		path, err := m.cache.EnsureSource(m.ctx, m.projectID)
		if err != nil {
			return errorMsg{err: fmt.Errorf("source media unavailable: %w", err)}
		}
		return mediaReadyMsg{path: path}
	}
}

func (m Model) probeDurationCmd(path string) tea.Cmd {
	fallback := m.captionExtent()
	return func() tea.Msg {
		seconds, err := player.ProbeDuration(m.ctx, path)
		if err != nil {
			m.logger.Warn("duration probe failed, falling back to caption extent", "error", err)
			return durationMsg{seconds: fallback}
		}
		return durationMsg{seconds: seconds}
	}
}

// waitForPipeline delivers the next poll loop update. The handler
// re-issues it, so the channel drains for as long as the view lives.
func waitForPipeline(updates <-chan pipeline.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return pipelineMsg{update: u}
	}
}

func playTick() tea.Cmd {
	return tea.Tick(playTickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) exportCmd() tea.Cmd {
	// a detached copy, the store slice stays with the update loop
	entries := append([]captions.Entry(nil), m.captions.Entries()...)
	title := fmt.Sprintf("project-%d", m.projectID)
	if m.project != nil && m.project.Title != "" {
		title = m.project.Title
	}
	return func() tea.Msg {
		path, err := export.WriteCaptions(m.exportDir, title, export.FormatSRT, entries)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m Model) copyOutputCmd() tea.Cmd {
	url := m.outputURL
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(url)}
	}
}

func (m Model) openPlayerCmd() tea.Cmd {
	url := m.preview.SourceURL(m.projectID)
	start := m.clock.CurrentTime()
	return func() tea.Msg {
		return playerOpenedMsg{err: m.launcher.Open(url, start)}
	}
}

// openOutputCmd plays the rendered result: the output is downloaded
// into the cache if needed, then the player opens it from the start.
func (m Model) openOutputCmd() tea.Cmd {
	url := m.preview.OutputURL(m.projectID)
	return func() tea.Msg {
		if _, err := m.cache.EnsureOutput(m.ctx, m.projectID); err != nil {
			return errorMsg{err: fmt.Errorf("rendered output unavailable: %w", err)}
		}
		return playerOpenedMsg{err: m.launcher.Open(url, 0)}
	}
}

func (m Model) openHighlightCmd(hl int) tea.Cmd {
	if hl < 0 || hl >= len(m.highlights) {
		return nil
	}
	h := m.highlights[hl]
	url := m.preview.SourceURL(m.projectID)
	return func() tea.Msg {
		return playerOpenedMsg{err: m.launcher.OpenClip(m.ctx, url, h.StartTime, h.EndTime)}
	}
}

// captionExtent is the fallback duration estimate when the media
// cannot be probed: the end of the last caption.
func (m Model) captionExtent() float64 {
	var max float64
	for _, e := range m.captions.Entries() {
		if e.End > max {
			max = e.End
		}
	}
	return max
}
