package captions

import "encoding/json"

// Canvas dimensions of the 9:16 editing surface, in virtual pixels.
// Style coordinates are expressed in this space regardless of how the
// canvas is displayed.
const (
	CanvasW = 270
	CanvasH = 480
)

// Font size bounds enforced at the input boundary, not by the store.
const (
	MinFontSize = 10
	MaxFontSize = 60
)

// FontFamilies is the fixed set of selectable caption fonts.
var FontFamilies = []string{"Arial", "Impact", "Georgia", "Verdana", "Courier New"}

// PresetColors are the quick-pick caption colors.
var PresetColors = []string{"#FFFFFF", "#FFFF00", "#FF4444", "#44DDAA", "#FF88FF"}

// Style is the resolved visual style of a caption. Every caption in the
// store carries a complete Style; partial or malformed persisted
// payloads are filled from defaults at load time.
type Style struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FontSize   int     `json:"fontSize"`
	Color      string  `json:"color"`
	FontFamily string  `json:"fontFamily"`
}

// DefaultStyle returns the style applied when a caption has no stored
// style or its payload cannot be parsed. Y sits at 78% of canvas height.
func DefaultStyle() Style {
	return Style{
		X:          10,
		Y:          374, // round(0.78 * CanvasH)
		FontSize:   20,
		Color:      "#FFFFFF",
		FontFamily: "Arial",
	}
}

// Patch is a partial style update. Nil fields are left unchanged.
type Patch struct {
	X          *float64
	Y          *float64
	FontSize   *int
	Color      *string
	FontFamily *string
}

// Apply merges the patch into s.
func (p Patch) Apply(s *Style) {
	if p.X != nil {
		s.X = *p.X
	}
	if p.Y != nil {
		s.Y = *p.Y
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
	if p.FontFamily != nil {
		s.FontFamily = *p.FontFamily
	}
}

// stylePayload mirrors the persisted style shape with optional fields,
// so a stored subset overrides only the fields it names.
type stylePayload struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	FontSize   *int     `json:"fontSize"`
	Color      *string  `json:"color"`
	FontFamily *string  `json:"fontFamily"`
}

// ResolveStyle normalizes a persisted style payload into a complete
// Style. The payload may be a JSON object, a JSON string containing an
// encoded object, or null/absent. Resolution never fails: anything
// unparseable yields the defaults. No code past this boundary branches
// on the payload's original shape.
func ResolveStyle(raw json.RawMessage) Style {
	style := DefaultStyle()

	if len(raw) == 0 || string(raw) == "null" {
		return style
	}

	data := []byte(raw)

	// A string payload holds an encoded object one level down.
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		data = []byte(encoded)
	}

	var p stylePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return style
	}

	Patch{X: p.X, Y: p.Y, FontSize: p.FontSize, Color: p.Color, FontFamily: p.FontFamily}.Apply(&style)
	return style
}
