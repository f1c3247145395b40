package tui

import (
	"github.com/clipdeck/clipdeck/internal/captions"
)

// MinBlockWidth is the smallest fraction of the track a caption block
// may occupy, so sub-second captions stay visible and clickable.
const MinBlockWidth = 0.003

// Fraction maps a time to its horizontal position as a fraction of the
// track. A zero duration means there is nothing to map yet; callers
// render a placeholder instead.
func Fraction(t, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	f := t / duration
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// BlockSpan is a caption's horizontal extent on the track, in
// fractions of its width.
type BlockSpan struct {
	Left  float64
	Width float64
}

func SpanFor(start, end, duration float64) BlockSpan {
	left := Fraction(start, duration)
	width := Fraction(end, duration) - left
	if width < MinBlockWidth {
		width = MinBlockWidth
	}
	if left+width > 1 {
		left = 1 - width
	}
	return BlockSpan{Left: left, Width: width}
}

// Timeline lays the track out over a row of terminal cells.
type Timeline struct {
	width int
}

func NewTimeline(width int) Timeline {
	if width < 1 {
		width = 1
	}
	return Timeline{width: width}
}

func (t Timeline) Width() int { return t.width }

// PlayheadCol is the cell the playhead marker occupies.
func (t Timeline) PlayheadCol(fraction float64) int {
	return clampInt(int(fraction*float64(t.width)), 0, t.width-1)
}

// BlockCols converts a span to an inclusive cell range. A block always
// covers at least one cell.
func (t Timeline) BlockCols(span BlockSpan) (startCol, endCol int) {
	startCol = clampInt(int(span.Left*float64(t.width)), 0, t.width-1)
	endCol = clampInt(int((span.Left+span.Width)*float64(t.width)), startCol, t.width-1)
	return startCol, endCol
}

// TimeForCol maps a clicked cell back to a playback time, clamped to
// [0, duration].
func (t Timeline) TimeForCol(col int, duration float64) float64 {
	ratio := float64(col) / float64(t.width)
	seconds := ratio * duration
	if seconds < 0 {
		return 0
	}
	if seconds > duration {
		return duration
	}
	return seconds
}

// HitTest resolves a click on the track. A caption block under the
// cell wins over the track itself; the click then selects that caption
// rather than seeking to the raw ratio. Overlapping blocks resolve to
// the last one laid out.
func (t Timeline) HitTest(col int, entries []captions.Entry, duration float64) (int64, bool) {
	if duration <= 0 {
		return 0, false
	}
	var id int64
	found := false
	for _, e := range entries {
		startCol, endCol := t.BlockCols(SpanFor(e.Start, e.End, duration))
		if col >= startCol && col <= endCol {
			id = e.ID
			found = true
		}
	}
	return id, found
}
