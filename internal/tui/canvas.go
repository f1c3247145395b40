package tui

import (
	"github.com/clipdeck/clipdeck/internal/captions"
)

// Canvas maps the virtual caption coordinate space (captions.CanvasW x
// captions.CanvasH px, the 9:16 frame captions are positioned on) onto
// a grid of terminal cells. All caption positions stay in virtual px;
// cells are only a presentation of them.
type Canvas struct {
	cols int
	rows int
}

func NewCanvas(cols, rows int) Canvas {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return Canvas{cols: cols, rows: rows}
}

func (c Canvas) Cols() int { return c.cols }
func (c Canvas) Rows() int { return c.rows }

// CellForPoint locates the cell containing a virtual point. Points
// outside the frame clamp to the border cells so out-of-frame captions
// remain visible at the edge.
func (c Canvas) CellForPoint(x, y float64) (col, row int) {
	col = int(x / captions.CanvasW * float64(c.cols))
	row = int(y / captions.CanvasH * float64(c.rows))
	return clampInt(col, 0, c.cols-1), clampInt(row, 0, c.rows-1)
}

// PointForCell returns the virtual coordinates of a cell's top-left
// corner.
func (c Canvas) PointForCell(col, row int) (x, y float64) {
	x = float64(col) / float64(c.cols) * captions.CanvasW
	y = float64(row) / float64(c.rows) * captions.CanvasH
	return x, y
}

// CellDelta converts a cell displacement into virtual px, used to
// translate mouse drags into style offsets.
func (c Canvas) CellDelta(dcol, drow int) (dx, dy float64) {
	dx = float64(dcol) / float64(c.cols) * captions.CanvasW
	dy = float64(drow) / float64(c.rows) * captions.CanvasH
	return dx, dy
}

// Box is a caption's rendered extent in virtual px.
type Box struct {
	X, Y, W, H float64
}

func (b Box) Contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.W && y >= b.Y && y < b.Y+b.H
}

// glyphWidthRatio approximates average glyph width as a fraction of
// font size for hit-testing purposes.
const glyphWidthRatio = 0.6

// GlyphBox estimates the on-frame extent of a caption from its style.
func GlyphBox(e captions.Entry) Box {
	w := float64(len([]rune(e.Text))) * float64(e.Style.FontSize) * glyphWidthRatio
	if w < float64(e.Style.FontSize) {
		w = float64(e.Style.FontSize)
	}
	return Box{
		X: e.Style.X,
		Y: e.Style.Y,
		W: w,
		H: float64(e.Style.FontSize) * 1.2,
	}
}

// VisibleEntries filters to captions that are either time-active or
// explicitly selected. Everything else stays off the canvas.
func VisibleEntries(entries []captions.Entry, activeID, selectedID int64) []captions.Entry {
	var visible []captions.Entry
	for _, e := range entries {
		if e.ID == activeID || e.ID == selectedID {
			visible = append(visible, e)
		}
	}
	return visible
}

// HitTest finds the caption under a virtual point. Later entries draw
// on top, so the last hit wins.
func HitTest(entries []captions.Entry, x, y float64) (int64, bool) {
	var id int64
	found := false
	for _, e := range entries {
		if GlyphBox(e).Contains(x, y) {
			id = e.ID
			found = true
		}
	}
	return id, found
}

// drag tracks an in-progress reposition gesture. Movement only updates
// the visual position; the store is mutated once, on release.
type drag struct {
	active  bool
	entryID int64
	originX float64
	originY float64
	pressX  float64
	pressY  float64
	curX    float64
	curY    float64
}

func (d *drag) begin(e captions.Entry, px, py float64) {
	d.active = true
	d.entryID = e.ID
	d.originX = e.Style.X
	d.originY = e.Style.Y
	d.pressX = px
	d.pressY = py
	d.curX = px
	d.curY = py
}

func (d *drag) move(px, py float64) {
	if !d.active {
		return
	}
	d.curX = px
	d.curY = py
}

// position is the caption's visual position during the gesture. No
// clamping to the frame; off-canvas placement is allowed.
func (d *drag) position() (x, y float64) {
	return d.originX + (d.curX - d.pressX), d.originY + (d.curY - d.pressY)
}

// end finishes the gesture and reports the position to commit.
func (d *drag) end() (id int64, x, y float64) {
	id = d.entryID
	x, y = d.position()
	d.active = false
	d.entryID = 0
	return id, x, y
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
