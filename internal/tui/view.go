package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clipdeck/clipdeck/internal/captions"
	"github.com/clipdeck/clipdeck/internal/pipeline"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	switch m.tab {
	case tabEditor:
		b.WriteString(m.editorView())
	case tabHighlights:
		b.WriteString(m.highlightsView())
	case tabPipeline:
		b.WriteString(m.pipelineView())
	}

	b.WriteString("\n")
	b.WriteString(m.statusBarView())
	return b.String()
}

func (m Model) headerView() string {
	title := "clipdeck"
	if m.project != nil {
		title = m.project.Title
	}
	parts := []string{TitleStyle.Render(title)}

	status := m.tracker.Status()
	label := status.Label()
	if m.loading {
		label = "loading"
	}
	if m.tracker.Processing() || m.loading || m.saving {
		parts = append(parts, m.spinner.View()+DimTextStyle.Render(label))
	} else {
		parts = append(parts, DimTextStyle.Render(label))
	}

	if m.captions.Dirty() {
		parts = append(parts, DirtyMarkStyle.Render("● unsaved"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) tabsView() string {
	names := []string{"Editor", "Highlights", "Pipeline"}
	var rendered []string
	for i, name := range names {
		if tabID(i) == m.tab {
			rendered = append(rendered, ActiveTabStyle.Render(name))
		} else {
			rendered = append(rendered, TabStyle.Render(name))
		}
	}
	return strings.Join(rendered, "")
}

// editorView stacks the caption canvas, the timeline track, and the
// style readout for the editing target. Its row layout must stay in
// step with canvasOrigin and timelineRow, which map mouse events back
// onto it.
func (m Model) editorView() string {
	var b strings.Builder

	canvas := m.canvasView()
	b.WriteString(lipgloss.NewStyle().MarginLeft(canvasLeft).Render(CanvasStyle.Render(canvas)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", canvasLeft))
	b.WriteString(DimTextStyle.Render(m.timeRulerView()))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", canvasLeft))
	b.WriteString(m.timelineView())
	b.WriteString("\n\n")
	b.WriteString(m.stylePanelView())
	return b.String()
}

// canvasView paints visible captions onto the cell grid. During a drag
// the dragged caption renders at its provisional position; the store
// still holds the original until release.
func (m Model) canvasView() string {
	cols, rows := m.canvas.Cols(), m.canvas.Rows()
	grid := make([][]rune, rows)
	owner := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]rune, cols)
		owner[r] = make([]int, cols)
		for c := range grid[r] {
			grid[r][c] = ' '
			owner[r][c] = -1
		}
	}

	visible := VisibleEntries(m.captions.Entries(), m.activeID(), m.selectedID)
	for i, e := range visible {
		x, y := e.Style.X, e.Style.Y
		if m.drag.active && m.drag.entryID == e.ID {
			x, y = m.drag.position()
		}
		col, row := m.canvas.CellForPoint(x, y)
		for j, r := range []rune(e.Text) {
			if col+j >= cols {
				break
			}
			grid[row][col+j] = r
			owner[row][col+j] = i
		}
	}

	var lines []string
	for r := 0; r < rows; r++ {
		var line strings.Builder
		c := 0
		for c < cols {
			o := owner[r][c]
			start := c
			for c < cols && owner[r][c] == o {
				c++
			}
			segment := string(grid[r][start:c])
			if o < 0 {
				line.WriteString(segment)
				continue
			}
			line.WriteString(m.glyphStyle(visible[o]).Render(segment))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func (m Model) glyphStyle(e captions.Entry) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Style.Color))
	if e.ID == m.selectedID {
		style = style.Underline(true)
	}
	if e.ID == m.activeID() {
		style = style.Bold(true)
	}
	return style
}

func (m Model) timeRulerView() string {
	duration := m.clock.Duration()
	if duration <= 0 {
		return "no media loaded"
	}
	return fmt.Sprintf("%s / %s", formatClock(m.clock.CurrentTime()), formatClock(duration))
}

// timelineView draws the track: caption blocks over a base line, the
// playhead on top. With no duration there is nothing to map, so it
// renders an empty placeholder instead.
func (m Model) timelineView() string {
	width := m.timeline.Width()
	duration := m.clock.Duration()
	if duration <= 0 {
		return DimTextStyle.Render(strings.Repeat("┄", width))
	}

	cells := make([]string, width)
	for i := range cells {
		cells[i] = TrackStyle.Render("─")
	}
	for _, e := range m.captions.Entries() {
		startCol, endCol := m.timeline.BlockCols(SpanFor(e.Start, e.End, duration))
		style := BlockStyle
		if e.ID == m.selectedID {
			style = SelBlockStyle
		}
		for c := startCol; c <= endCol; c++ {
			cells[c] = style.Render("█")
		}
	}
	cells[m.timeline.PlayheadCol(m.clock.Fraction())] = PlayheadStyle.Render("┃")
	return strings.Join(cells, "")
}

func (m Model) stylePanelView() string {
	e := m.target()
	if e == nil {
		return DimTextStyle.Render("  no caption at playhead: click one or press j/k")
	}
	header := fmt.Sprintf("  #%d  %s → %s  %q",
		e.ID, formatClock(e.Start), formatClock(e.End), truncate(e.Text, 40))
	controls := fmt.Sprintf("  x=%.0f y=%.0f  size=%d (+/-)  color=%s (c)  font=%s (f)",
		e.Style.X, e.Style.Y, e.Style.FontSize, e.Style.Color, e.Style.FontFamily)
	return TextStyle.Render(header) + "\n" + DimTextStyle.Render(controls)
}

func (m Model) highlightsView() string {
	if len(m.highlights) == 0 {
		return DimTextStyle.Render("  no highlights yet: run highlight detection from the Pipeline tab")
	}

	var b strings.Builder
	for i, h := range m.highlights {
		checkbox := "☐"
		if m.chosen[h.ID] {
			checkbox = "◼"
		}
		timestamp := fmt.Sprintf("%s - %s", formatClock(h.StartTime), formatClock(h.EndTime))
		b.WriteString(TimestampStyle.Render(timestamp))
		b.WriteString("\n")

		line := fmt.Sprintf("%s %s", checkbox, h.Title)
		if h.Reason != nil && *h.Reason != "" {
			line += DimTextStyle.Render("  (" + truncate(*h.Reason, 50) + ")")
		}
		if i == m.hlCursor {
			b.WriteString(SelectedItem.Render("> " + line))
		} else {
			b.WriteString(ItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(DimTextStyle.Render(fmt.Sprintf("  %d selected. enter toggles, p previews, 4 renders the subset", len(m.chosenIDs()))))
	return b.String()
}

func (m Model) pipelineView() string {
	rows := []struct {
		key     string
		name    string
		enabled bool
		active  bool
	}{
		{"1", "download source", m.tracker.CanAcquire(), m.tracker.Status() == pipeline.StatusDownloading},
		{"2", "transcribe", m.tracker.CanTranscribe(), m.tracker.Status() == pipeline.StatusTranscribing},
		{"3", "find highlights", m.tracker.CanHighlight(), m.tracker.Status() == pipeline.StatusHighlighting},
		{"4", "render", m.tracker.CanRender(), m.tracker.Status() == pipeline.StatusRendering},
	}

	var b strings.Builder
	for _, row := range rows {
		label := fmt.Sprintf("  [%s] %s", row.key, row.name)
		switch {
		case row.active:
			b.WriteString(SpinnerStyle.Render(label + "  " + m.spinner.View()))
		case row.enabled:
			b.WriteString(TextStyle.Render(label))
		default:
			b.WriteString(DisabledStyle.Render(label))
		}
		b.WriteString("\n")
	}

	status := m.tracker.Status()
	if status == pipeline.StatusRendering || status == pipeline.StatusDone {
		b.WriteString("\n")
		b.WriteString(m.progressView())
		b.WriteString("\n")
	}
	if m.outputURL != "" {
		b.WriteString("\n")
		b.WriteString(SuccessStyle.Render("  output: " + m.outputURL))
		b.WriteString(DimTextStyle.Render("  (p plays, y copies)"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) progressView() string {
	const barWidth = 40
	filled := m.progress * barWidth / 100
	bar := ProgressStyle.Render(strings.Repeat("█", filled)) +
		DimTextStyle.Render(strings.Repeat("░", barWidth-filled))
	stage := m.stage
	if stage == "" {
		stage = "starting"
	}
	return fmt.Sprintf("  %s %3d%%  %s", bar, m.progress, DimTextStyle.Render(stage))
}

func (m Model) statusBarView() string {
	if m.errMsg != "" {
		return ErrorStyle.Render("  " + m.errMsg)
	}
	if m.statusMsg != "" {
		return SuccessStyle.Render("  " + m.statusMsg)
	}
	return StatusBarStyle.Render("  space play · s save · e export · tab switch · q quit")
}

func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	mins := int(seconds) / 60
	secs := seconds - float64(mins*60)
	return fmt.Sprintf("%d:%04.1f", mins, secs)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
