// Package tui is the terminal editing view: caption canvas, timeline,
// style controls, highlight picker, and the pipeline action panel. One
// Model instance owns the per-session state (selection, drag, poll
// loops); tearing the view down releases all of it.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clipdeck/clipdeck/internal/captions"
	"github.com/clipdeck/clipdeck/internal/cloud"
	"github.com/clipdeck/clipdeck/internal/pipeline"
	"github.com/clipdeck/clipdeck/internal/playback"
	"github.com/clipdeck/clipdeck/internal/player"
	"github.com/clipdeck/clipdeck/internal/preview"
	"github.com/clipdeck/clipdeck/internal/store"
)

type tabID int

const (
	tabEditor tabID = iota
	tabHighlights
	tabPipeline
	tabCount
)

const (
	headerRows = 3
	canvasLeft = 2
	seekStep   = 5.0

	// transient status-line messages dismiss themselves after this
	statusMsgTTL = 4 * time.Second
)

type Options struct {
	ProjectID  int64
	Client     cloud.Client
	Repo       store.Repository
	Supervisor *pipeline.Supervisor
	Preview    *preview.Server
	Cache      *preview.Cache
	Launcher   *player.Launcher
	ExportDir  string
	Logger     *slog.Logger
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	client   cloud.Client
	repo     store.Repository
	sup      *pipeline.Supervisor
	preview  *preview.Server
	cache    *preview.Cache
	launcher *player.Launcher
	logger   *slog.Logger

	projectID int64
	exportDir string

	project    *cloud.Project
	captions   *captions.Store
	highlights []cloud.Highlight
	chosen     map[int64]bool
	hlCursor   int

	tracker *pipeline.Tracker
	clock   *playback.Clock

	tab        tabID
	canvas     Canvas
	timeline   Timeline
	drag       drag
	selectedID int64

	width  int
	height int

	spinner   spinner.Model
	statusMsg string
	statusGen int
	errMsg    string

	// captionsFresh and highlightsFresh flip once the first network
	// load lands; a cached snapshot arriving after that is stale and
	// ignored.
	captionsFresh   bool
	highlightsFresh bool

	progress  int
	stage     string
	outputURL string

	loading  bool
	saving   bool
	quitting bool
}

func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		ctx:       ctx,
		cancel:    cancel,
		client:    opts.Client,
		repo:      opts.Repo,
		sup:       opts.Supervisor,
		preview:   opts.Preview,
		cache:     opts.Cache,
		launcher:  opts.Launcher,
		logger:    opts.Logger,
		projectID: opts.ProjectID,
		exportDir: opts.ExportDir,
		captions:  captions.NewStore(),
		chosen:    make(map[int64]bool),
		tracker:   pipeline.NewTracker(),
		clock:     playback.NewClock(0),
		canvas:    NewCanvas(18, 16),
		timeline:  NewTimeline(76),
		spinner:   sp,
		loading:   true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadProjectCmd(),
		m.loadCachedCmd(),
		m.loadCachedHighlightsCmd(),
		waitForPipeline(m.sup.Updates()),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		if m.loading || m.saving || m.tracker.Processing() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case projectLoadedMsg:
		return m.handleProjectLoaded(msg)

	case captionsLoadedMsg:
		return m.handleCaptionsLoaded(msg)

	case highlightsLoadedMsg:
		return m.handleHighlightsLoaded(msg)

	case mediaReadyMsg:
		m.tracker.SetHasMedia(true)
		return m, m.probeDurationCmd(msg.path)

	case durationMsg:
		m.clock.SetDuration(msg.seconds)
		return m, nil

	case saveDoneMsg:
		m.saving = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("save failed: %v (edits kept, press s to retry)", msg.err)
			return m, nil
		}
		// clears dirty only if nothing was edited while the request ran
		m.captions.MarkClean(msg.rev)
		return m, m.setStatus("captions saved")

	case stageStartedMsg:
		return m.handleStageStarted(msg)

	case pipelineMsg:
		return m.handlePipelineUpdate(msg.update)

	case tickMsg:
		if m.clock.Playing() {
			m.clock.Advance(playTickInterval.Seconds())
			return m, playTick()
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("export failed: %v", msg.err)
			return m, nil
		}
		return m, m.setStatus(fmt.Sprintf("subtitles written to %s", msg.path))

	case clipboardMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("clipboard copy failed: %v", msg.err)
			return m, nil
		}
		return m, m.setStatus("output URL copied")

	case statusClearMsg:
		if msg.gen == m.statusGen {
			m.statusMsg = ""
		}
		return m, nil

	case playerOpenedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("player: %v", msg.err)
		}
		return m, nil

	case errorMsg:
		m.loading = false
		m.errMsg = msg.err.Error()
		return m, nil
	}

	return m, nil
}

// setStatus shows a transient status-line message and schedules its
// dismissal; a newer message cancels the older clear via the generation
// counter.
func (m *Model) setStatus(s string) tea.Cmd {
	m.statusMsg = s
	m.statusGen++
	gen := m.statusGen
	return tea.Tick(statusMsgTTL, func(time.Time) tea.Msg {
		return statusClearMsg{gen: gen}
	})
}

func (m *Model) resize() {
	rows := clampInt(m.height-headerRows-12, 8, 16)
	// terminal cells are roughly twice as tall as wide, so the 9:16
	// frame needs cols ≈ rows * 9/16 * 2
	cols := rows * 9 / 8
	m.canvas = NewCanvas(cols, rows)
	m.timeline = NewTimeline(clampInt(m.width-2*canvasLeft, 10, 200))
}

func (m Model) handleProjectLoaded(msg projectLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.project = msg.project

	status := pipeline.Status(msg.project.Status)
	hasSourceURL := msg.project.SourceURL != nil && *msg.project.SourceURL != ""
	hasMedia := msg.project.SourcePath != nil || m.cache.HasSource(m.projectID)
	hasOutput := msg.project.OutputPath != nil
	m.tracker.SetProject(status, hasSourceURL, hasMedia, hasOutput)
	m.tracker.SetCaptionCount(m.captions.Len())

	cmds := []tea.Cmd{
		m.loadCaptionsCmd(),
		m.loadHighlightsCmd(),
		m.touchRecentCmd(),
	}
	if hasMedia {
		cmds = append(cmds, m.ensureMediaCmd())
	}
	if status.Processing() {
		m.sup.WatchStatus(m.projectID)
		if status == pipeline.StatusRendering {
			m.sup.WatchRender(m.projectID)
		}
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) touchRecentCmd() tea.Cmd {
	title := m.project.Title
	status := m.project.Status
	return func() tea.Msg {
		if err := m.repo.TouchRecentProject(m.ctx, m.projectID, title, status); err != nil {
			m.logger.Warn("failed to record recent project", "error", err)
		}
		return nil
	}
}

func (m Model) handleHighlightsLoaded(msg highlightsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.fromCache && m.highlightsFresh {
		return m, nil
	}
	if !msg.fromCache {
		m.highlightsFresh = true
	}
	m.highlights = msg.highlights
	m.pruneChosen()
	if m.hlCursor >= len(m.highlights) {
		m.hlCursor = 0
	}
	return m, nil
}

func (m Model) handleCaptionsLoaded(msg captionsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.fromCache && m.captionsFresh {
		return m, nil
	}
	if !msg.fromCache && m.captions.Dirty() {
		// a refresh never clobbers unsaved edits
		m.captionsFresh = true
		return m, m.setStatus("captions changed remotely; save or reopen to reload")
	}

	m.captions.Load(msg.captions)
	m.tracker.SetCaptionCount(m.captions.Len())
	if !msg.fromCache {
		m.captionsFresh = true
	}
	if m.clock.Duration() == 0 {
		m.clock.SetDuration(m.captionExtent())
	}
	if m.selectedID != 0 && m.captions.Get(m.selectedID) == nil {
		m.selectedID = 0
	}
	return m, nil
}

func (m Model) handleStageStarted(msg stageStartedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errMsg = fmt.Sprintf("failed to start %s: %v", msg.stage, msg.err)
		return m, nil
	}
	statusCmd := m.setStatus(fmt.Sprintf("%s started", msg.stage))
	m.errMsg = ""

	switch msg.stage {
	case "download":
		m.tracker.SetStatus(pipeline.StatusDownloading)
	case "transcription":
		m.tracker.SetStatus(pipeline.StatusTranscribing)
	case "highlight detection":
		m.tracker.SetStatus(pipeline.StatusHighlighting)
	case "render":
		m.tracker.SetStatus(pipeline.StatusRendering)
		m.progress = 0
		m.stage = ""
		m.outputURL = ""
		m.sup.WatchRender(m.projectID)
	}
	m.sup.WatchStatus(m.projectID)
	return m, tea.Batch(m.spinner.Tick, statusCmd)
}

func (m Model) handlePipelineUpdate(u pipeline.Update) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForPipeline(m.sup.Updates())}

	switch u.Kind {
	case pipeline.KindPollError:
		m.errMsg = fmt.Sprintf("status poll stopped: %v", u.Err)

	case pipeline.KindStatus:
		m.tracker.SetStatus(u.Status)
		if u.Terminal {
			// the single dependent-data refresh for this watch
			cmds = append(cmds,
				m.loadProjectCmd(),
				m.loadCaptionsCmd(),
				m.loadHighlightsCmd(),
			)
			if u.Status == pipeline.StatusError {
				m.errMsg = "pipeline reported an error"
			}
		}

	case pipeline.KindRenderProgress:
		m.progress = u.Progress
		m.stage = u.Stage
		if u.Terminal {
			m.tracker.SetStatus(pipeline.StatusDone)
			m.tracker.SetHasOutput(true)
			m.outputURL = m.client.OutputURL(m.projectID)
			if err := m.cache.InvalidateOutput(m.projectID); err != nil {
				m.logger.Warn("failed to invalidate cached output", "error", err)
			}
			cmds = append(cmds, m.setStatus("render complete"))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.sup.Close()
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, keys.NextTab):
		m.tab = (m.tab + 1) % tabCount
		return m, nil

	case key.Matches(msg, keys.PlayPause):
		if m.tab == tabEditor {
			m.clock.TogglePlay()
			if m.clock.Playing() {
				return m, playTick()
			}
		}
		return m, nil

	case key.Matches(msg, keys.SeekBack):
		m.clock.Seek(m.clock.CurrentTime() - seekStep)
		return m, nil

	case key.Matches(msg, keys.SeekForward):
		m.clock.Seek(m.clock.CurrentTime() + seekStep)
		return m, nil

	case key.Matches(msg, keys.PrevCaption):
		if m.tab == tabHighlights {
			if m.hlCursor > 0 {
				m.hlCursor--
			}
			return m, nil
		}
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, keys.NextCaption):
		if m.tab == tabHighlights {
			if m.hlCursor < len(m.highlights)-1 {
				m.hlCursor++
			}
			return m, nil
		}
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, keys.Save):
		if m.saving || !m.captions.Dirty() {
			return m, nil
		}
		m.saving = true
		m.errMsg = ""
		return m, tea.Batch(m.spinner.Tick, m.saveCmd())

	case key.Matches(msg, keys.FontBigger):
		m.adjustFontSize(2)
		return m, nil

	case key.Matches(msg, keys.FontSmaller):
		m.adjustFontSize(-2)
		return m, nil

	case key.Matches(msg, keys.NextFont):
		if e := m.target(); e != nil {
			family := nextFontFamily(e.Style.FontFamily, 1)
			m.captions.SetStyle(e.ID, captions.Patch{FontFamily: &family})
		}
		return m, nil

	case key.Matches(msg, keys.NextColor):
		if e := m.target(); e != nil {
			color := nextColor(e.Style.Color, 1)
			m.captions.SetStyle(e.ID, captions.Patch{Color: &color})
		}
		return m, nil

	case key.Matches(msg, keys.Acquire):
		if !m.tracker.CanAcquire() {
			return m, nil
		}
		return m, m.startStageCmd("download", func() error {
			return m.client.StartAcquire(m.ctx, m.projectID)
		})

	case key.Matches(msg, keys.Transcribe):
		if !m.tracker.CanTranscribe() {
			return m, nil
		}
		return m, m.startStageCmd("transcription", func() error {
			return m.client.StartTranscribe(m.ctx, m.projectID)
		})

	case key.Matches(msg, keys.Highlight):
		if !m.tracker.CanHighlight() {
			return m, nil
		}
		return m, m.startStageCmd("highlight detection", func() error {
			return m.client.StartHighlights(m.ctx, m.projectID)
		})

	case key.Matches(msg, keys.Render):
		if !m.tracker.CanRender() {
			return m, nil
		}
		ids := m.chosenIDs()
		return m, m.startStageCmd("render", func() error {
			return m.client.StartRender(m.ctx, m.projectID, ids)
		})

	case key.Matches(msg, keys.Toggle):
		if m.tab == tabHighlights && m.hlCursor < len(m.highlights) {
			id := m.highlights[m.hlCursor].ID
			m.chosen[id] = !m.chosen[id]
		}
		return m, nil

	case key.Matches(msg, keys.Preview):
		if m.tab == tabHighlights {
			return m, m.openHighlightCmd(m.hlCursor)
		}
		if m.tab == tabPipeline {
			if !m.tracker.HasOutput() {
				return m, m.setStatus("no rendered output yet")
			}
			return m, m.openOutputCmd()
		}
		if m.cache.HasSource(m.projectID) {
			return m, m.openPlayerCmd()
		}
		return m, m.setStatus("source media not downloaded yet")

	case key.Matches(msg, keys.Export):
		if m.captions.Len() == 0 {
			return m, m.setStatus("nothing to export")
		}
		return m, m.exportCmd()

	case key.Matches(msg, keys.CopyURL):
		if m.outputURL == "" {
			return m, m.setStatus("no rendered output yet")
		}
		return m, m.copyOutputCmd()
	}

	return m, nil
}

// target is the caption style edits apply to: the explicit selection
// when there is one, otherwise the time-active caption.
func (m Model) target() *captions.Entry {
	if m.selectedID != 0 {
		if e := m.captions.Get(m.selectedID); e != nil {
			return e
		}
	}
	return m.captions.ActiveAt(m.clock.CurrentTime())
}

func (m *Model) adjustFontSize(delta int) {
	e := m.target()
	if e == nil {
		return
	}
	size := clampFontSize(e.Style.FontSize + delta)
	m.captions.SetStyle(e.ID, captions.Patch{FontSize: &size})
}

func (m *Model) moveSelection(step int) {
	entries := m.captions.Entries()
	if len(entries) == 0 {
		return
	}
	idx := -1
	for i, e := range entries {
		if e.ID == m.selectedID {
			idx = i
			break
		}
	}
	idx += step
	if idx < 0 {
		idx = 0
	}
	if idx >= len(entries) {
		idx = len(entries) - 1
	}
	m.selectedID = entries[idx].ID
}

func (m *Model) pruneChosen() {
	valid := make(map[int64]bool, len(m.highlights))
	for _, h := range m.highlights {
		valid[h.ID] = true
	}
	for id := range m.chosen {
		if !valid[id] {
			delete(m.chosen, id)
		}
	}
}

func (m Model) chosenIDs() []int64 {
	var ids []int64
	for _, h := range m.highlights {
		if m.chosen[h.ID] {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// Mouse geometry. The canvas grid starts one cell inside its border;
// the timeline track sits below the canvas box.

func (m Model) canvasOrigin() (x, y int) {
	return canvasLeft + 1, headerRows + 1
}

func (m Model) timelineRow() int {
	return headerRows + m.canvas.Rows() + 3
}

func (m Model) pointAt(col, row int) (float64, float64) {
	x, y := m.canvas.PointForCell(col, row)
	dx, dy := m.canvas.CellDelta(1, 1)
	return x + dx/2, y + dy/2
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.tab != tabEditor {
		return m, nil
	}

	ox, oy := m.canvasOrigin()
	cx, cy := msg.X-ox, msg.Y-oy
	inCanvas := cx >= 0 && cx < m.canvas.Cols() && cy >= 0 && cy < m.canvas.Rows()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if inCanvas {
			px, py := m.pointAt(cx, cy)
			visible := VisibleEntries(m.captions.Entries(), m.activeID(), m.selectedID)
			if id, ok := HitTest(visible, px, py); ok {
				m.selectedID = id
				if e := m.captions.Get(id); e != nil {
					m.drag.begin(*e, px, py)
				}
			}
			return m, nil
		}
		if msg.Y == m.timelineRow() {
			m.handleTimelineClick(msg.X - canvasLeft)
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.drag.active {
			px, py := m.pointAt(cx, cy)
			m.drag.move(px, py)
		}
		return m, nil

	case tea.MouseActionRelease:
		if m.drag.active {
			id, x, y := m.drag.end()
			m.captions.SetStyle(id, captions.Patch{X: &x, Y: &y})
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleTimelineClick(col int) {
	duration := m.clock.Duration()
	if duration <= 0 || col < 0 || col >= m.timeline.Width() {
		return
	}
	if id, ok := m.timeline.HitTest(col, m.captions.Entries(), duration); ok {
		// block click: select and jump to the caption, no ratio seek
		m.selectedID = id
		if e := m.captions.Get(id); e != nil {
			m.clock.Seek(e.Start)
		}
		return
	}
	m.clock.Seek(m.timeline.TimeForCol(col, duration))
}

func (m Model) activeID() int64 {
	if e := m.captions.ActiveAt(m.clock.CurrentTime()); e != nil {
		return e.ID
	}
	return 0
}
