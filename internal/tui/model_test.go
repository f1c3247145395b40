package tui

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clipdeck/clipdeck/internal/captions"
	"github.com/clipdeck/clipdeck/internal/cloud"
	"github.com/clipdeck/clipdeck/internal/pipeline"
	"github.com/clipdeck/clipdeck/internal/preview"
	"github.com/clipdeck/clipdeck/internal/store"
)

type fakeClient struct {
	cloud.Client
	received []cloud.CaptionUpdate
}

func (f *fakeClient) OutputURL(projectID int64) string {
	return "http://api.test/projects/1/output"
}

func (f *fakeClient) ReplaceCaptions(_ context.Context, _ int64, caps []cloud.CaptionUpdate) error {
	f.received = caps
	return nil
}

type fakeRepo struct {
	store.Repository
}

func patchFontSize(size int) captions.Patch {
	return captions.Patch{FontSize: &size}
}

func patchXY(x, y float64) captions.Patch {
	return captions.Patch{X: &x, Y: &y}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	client := &fakeClient{}
	cache := preview.NewCache(t.TempDir(), client, discardLogger())
	m := New(Options{
		ProjectID:  1,
		Client:     client,
		Repo:       fakeRepo{},
		Supervisor: pipeline.NewSupervisor(client, time.Hour, time.Hour, discardLogger()),
		Preview: preview.NewServer(preview.ServerConfig{
			Port:   8790,
			Cache:  cache,
			Logger: discardLogger(),
		}),
		Cache:     cache,
		Launcher:  nil,
		ExportDir: t.TempDir(),
		Logger:    discardLogger(),
	})
	t.Cleanup(m.cancel)
	return m
}

func loadedModel(t *testing.T) Model {
	m := newTestModel(t)
	next, _ := m.handleCaptionsLoaded(captionsLoadedMsg{captions: []cloud.Caption{
		{ID: 1, StartTime: 0, EndTime: 2, Text: "first"},
		{ID: 2, StartTime: 2, EndTime: 5, Text: "second"},
		{ID: 3, StartTime: 10, EndTime: 12, Text: "third"},
	}})
	return next.(Model)
}

func TestTarget_SelectionBeatsTimeActive(t *testing.T) {
	m := loadedModel(t)
	m.clock.Seek(1) // caption 1 is time-active

	if e := m.target(); e == nil || e.ID != 1 {
		t.Fatalf("target without selection = %v, want caption 1", e)
	}

	m.selectedID = 3
	if e := m.target(); e == nil || e.ID != 3 {
		t.Fatalf("target with selection = %v, want caption 3", e)
	}

	// a stale selection falls back to the time-active caption
	m.selectedID = 99
	if e := m.target(); e == nil || e.ID != 1 {
		t.Fatalf("target with stale selection = %v, want caption 1", e)
	}
}

func TestHandleCaptionsLoaded_SetsDurationFallback(t *testing.T) {
	m := loadedModel(t)
	if got := m.clock.Duration(); got != 12 {
		t.Errorf("duration = %v, want 12 (last caption end)", got)
	}
	if m.captions.Len() != 3 {
		t.Errorf("caption count = %d, want 3", m.captions.Len())
	}
}

func TestHandleCaptionsLoaded_CachedSnapshotIgnoredAfterFresh(t *testing.T) {
	m := loadedModel(t)
	m.captionsFresh = true

	next, _ := m.handleCaptionsLoaded(captionsLoadedMsg{
		captions:  []cloud.Caption{{ID: 9, StartTime: 0, EndTime: 1, Text: "stale"}},
		fromCache: true,
	})
	m = next.(Model)

	if m.captions.Len() != 3 {
		t.Errorf("caption count = %d, want 3 (stale cache applied)", m.captions.Len())
	}
}

func TestHandleCaptionsLoaded_RefreshKeepsUnsavedEdits(t *testing.T) {
	m := loadedModel(t)
	size := 40
	m.captions.SetStyle(1, patchFontSize(size))

	next, _ := m.handleCaptionsLoaded(captionsLoadedMsg{captions: []cloud.Caption{
		{ID: 1, StartTime: 0, EndTime: 2, Text: "first", StyleJSON: json.RawMessage(`{"fontSize":20}`)},
	}})
	m = next.(Model)

	if e := m.captions.Get(1); e == nil || e.Style.FontSize != size {
		t.Errorf("caption 1 font size = %v, want %d (edit preserved)", e, size)
	}
	if !m.captions.Dirty() {
		t.Error("store no longer dirty after refresh")
	}
}

func TestHandleKey_DisabledStageNotAttempted(t *testing.T) {
	m := newTestModel(t)
	// pending status, no source URL: acquire prerequisite missing

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	if cmd != nil {
		t.Error("disabled acquire action produced a command")
	}
}

func TestHandleKey_EnabledStageStarts(t *testing.T) {
	m := newTestModel(t)
	m.tracker.SetProject(pipeline.StatusPending, true, false, false)

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	if cmd == nil {
		t.Error("enabled acquire action produced no command")
	}
}

func TestHandleKey_StageBlockedWhileProcessing(t *testing.T) {
	m := newTestModel(t)
	m.tracker.SetProject(pipeline.StatusTranscribing, true, true, false)

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	if cmd != nil {
		t.Error("render action produced a command while transcribing")
	}
}

func TestHandlePipelineUpdate_TerminalStatus(t *testing.T) {
	m := loadedModel(t)
	m.tracker.SetStatus(pipeline.StatusTranscribing)

	next, cmd := m.handlePipelineUpdate(pipeline.Update{
		Kind:     pipeline.KindStatus,
		Status:   pipeline.StatusReady,
		Terminal: true,
	})
	m = next.(Model)

	if m.tracker.Status() != pipeline.StatusReady {
		t.Errorf("status = %q, want %q", m.tracker.Status(), pipeline.StatusReady)
	}
	if cmd == nil {
		t.Error("terminal update produced no refresh command")
	}
}

func TestHandlePipelineUpdate_RenderDone(t *testing.T) {
	m := loadedModel(t)
	m.tracker.SetStatus(pipeline.StatusRendering)

	next, _ := m.handlePipelineUpdate(pipeline.Update{
		Kind:     pipeline.KindRenderProgress,
		Progress: 100,
		Stage:    "complete",
		Terminal: true,
	})
	m = next.(Model)

	if m.progress != 100 || m.stage != "complete" {
		t.Errorf("progress = (%d,%q), want (100,complete)", m.progress, m.stage)
	}
	if m.tracker.Status() != pipeline.StatusDone {
		t.Errorf("status = %q, want %q", m.tracker.Status(), pipeline.StatusDone)
	}
	if m.outputURL == "" {
		t.Error("output URL not set after render completion")
	}
}

func TestHandleTimelineClick_BlockSelectsAndSeeks(t *testing.T) {
	m := loadedModel(t)
	m.clock.SetDuration(12)

	// caption 2 spans 2..5s of 12s: cols 12..31 of a 76-wide track
	m.handleTimelineClick(20)
	if m.selectedID != 2 {
		t.Errorf("selectedID = %d, want 2", m.selectedID)
	}
	if m.clock.CurrentTime() != 2 {
		t.Errorf("current time = %v, want 2 (caption start)", m.clock.CurrentTime())
	}
}

func TestHandleTimelineClick_EmptyTrackSeeksByRatio(t *testing.T) {
	m := loadedModel(t)
	m.clock.SetDuration(12)

	// col 38 of 76 is halfway: 6s, between captions 2 and 3
	m.handleTimelineClick(38)
	if m.selectedID != 0 {
		t.Errorf("selectedID = %d, want 0", m.selectedID)
	}
	if got := m.clock.CurrentTime(); got != 6 {
		t.Errorf("current time = %v, want 6", got)
	}
}

func TestHandleTimelineClick_ZeroDurationIsNoop(t *testing.T) {
	m := newTestModel(t)
	m.handleTimelineClick(10)
	if m.clock.CurrentTime() != 0 || m.selectedID != 0 {
		t.Error("click with zero duration changed state")
	}
}

func TestMoveSelection_Bounds(t *testing.T) {
	m := loadedModel(t)

	m.moveSelection(1)
	if m.selectedID != 1 {
		t.Errorf("first selection = %d, want 1", m.selectedID)
	}
	m.moveSelection(1)
	m.moveSelection(1)
	m.moveSelection(1)
	if m.selectedID != 3 {
		t.Errorf("selection past end = %d, want 3", m.selectedID)
	}
	m.moveSelection(-5)
	if m.selectedID != 1 {
		t.Errorf("selection past start = %d, want 1", m.selectedID)
	}
}

func TestDragRelease_CommitsPosition(t *testing.T) {
	m := loadedModel(t)
	e := m.captions.Get(1)
	origX, origY := e.Style.X, e.Style.Y
	m.drag.begin(*e, 100, 100)
	m.drag.move(130, 60)

	id, x, y := m.drag.end()
	if !m.captions.SetStyle(id, patchXY(x, y)) {
		t.Fatal("SetStyle rejected drag commit")
	}
	moved := m.captions.Get(1)
	if moved.Style.X != origX+30 || moved.Style.Y != origY-40 {
		t.Errorf("committed position = (%v,%v), want (%v,%v)",
			moved.Style.X, moved.Style.Y, origX+30, origY-40)
	}
}

func TestSave_PayloadDetachedFromLaterEdits(t *testing.T) {
	m := loadedModel(t)
	m.captions.SetStyle(1, patchFontSize(30))

	// the snapshot is taken on the update loop when the command is built
	cmd := m.saveCmd()

	// an edit lands while the request is in flight
	m.captions.SetStyle(1, patchFontSize(44))

	msg := cmd()
	done, ok := msg.(saveDoneMsg)
	if !ok {
		t.Fatalf("save command returned %T, want saveDoneMsg", msg)
	}
	if done.err != nil {
		t.Fatalf("unexpected save error: %v", done.err)
	}

	fc := m.client.(*fakeClient)
	if len(fc.received) != 3 {
		t.Fatalf("payload entries = %d, want full collection of 3", len(fc.received))
	}
	var style captions.Style
	if err := json.Unmarshal(fc.received[0].StyleJSON, &style); err != nil {
		t.Fatalf("payload style not an object: %v", err)
	}
	if style.FontSize != 30 {
		t.Errorf("payload fontSize = %d, want 30 (value at snapshot time)", style.FontSize)
	}

	// the in-flight edit keeps the store dirty after the save settles
	next, _ := m.Update(done)
	m = next.(Model)
	if !m.captions.Dirty() {
		t.Error("store marked clean despite an edit during the save")
	}
	if got := m.captions.Get(1).Style.FontSize; got != 44 {
		t.Errorf("local fontSize = %d, want 44 (edit preserved)", got)
	}
}

func TestSave_UndisturbedSaveMarksClean(t *testing.T) {
	m := loadedModel(t)
	m.captions.SetStyle(1, patchFontSize(30))

	cmd := m.saveCmd()
	next, _ := m.Update(cmd())
	m = next.(Model)

	if m.captions.Dirty() {
		t.Error("store still dirty after undisturbed save")
	}
}

func TestHandleKey_OutputPreviewOnPipelineTab(t *testing.T) {
	m := loadedModel(t)
	m.tab = tabPipeline

	next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if nm := next.(Model); nm.statusMsg == "" {
		t.Error("expected a notice when no rendered output exists")
	}

	m.tracker.SetHasOutput(true)
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if cmd == nil {
		t.Error("output preview produced no command")
	}
}

func TestHandleHighlightsLoaded_CachedThenFresh(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.handleHighlightsLoaded(highlightsLoadedMsg{
		highlights: []cloud.Highlight{{ID: 1, Title: "cached"}},
		fromCache:  true,
	})
	m = next.(Model)
	if len(m.highlights) != 1 {
		t.Fatalf("highlights = %d, want 1 (cached snapshot applied)", len(m.highlights))
	}

	next, _ = m.handleHighlightsLoaded(highlightsLoadedMsg{
		highlights: []cloud.Highlight{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}},
	})
	m = next.(Model)
	if len(m.highlights) != 2 {
		t.Fatalf("highlights = %d, want 2 after fresh load", len(m.highlights))
	}

	// a cached snapshot arriving after the fresh load is stale
	next, _ = m.handleHighlightsLoaded(highlightsLoadedMsg{
		highlights: []cloud.Highlight{{ID: 9, Title: "stale"}},
		fromCache:  true,
	})
	m = next.(Model)
	if len(m.highlights) != 2 {
		t.Errorf("highlights = %d, want 2 (stale cache applied)", len(m.highlights))
	}
}

func TestStatusMessage_AutoDismiss(t *testing.T) {
	m := newTestModel(t)

	cmd := m.setStatus("first")
	if m.statusMsg != "first" {
		t.Fatalf("statusMsg = %q, want %q", m.statusMsg, "first")
	}
	if cmd == nil {
		t.Fatal("setStatus scheduled no dismissal")
	}

	staleGen := m.statusGen
	m.setStatus("second")

	// the stale clear must not dismiss the newer message
	next, _ := m.Update(statusClearMsg{gen: staleGen})
	m = next.(Model)
	if m.statusMsg != "second" {
		t.Errorf("statusMsg = %q, want %q after stale clear", m.statusMsg, "second")
	}

	next, _ = m.Update(statusClearMsg{gen: m.statusGen})
	m = next.(Model)
	if m.statusMsg != "" {
		t.Errorf("statusMsg = %q, want empty after matching clear", m.statusMsg)
	}
}

func TestChosenIDs_FollowsHighlightOrder(t *testing.T) {
	m := newTestModel(t)
	m.highlights = []cloud.Highlight{
		{ID: 5, Title: "a"}, {ID: 2, Title: "b"}, {ID: 9, Title: "c"},
	}
	m.chosen[9] = true
	m.chosen[5] = true
	m.chosen[2] = false

	ids := m.chosenIDs()
	if len(ids) != 2 || ids[0] != 5 || ids[1] != 9 {
		t.Errorf("chosenIDs() = %v, want [5 9]", ids)
	}
}
