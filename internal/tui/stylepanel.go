package tui

import (
	"github.com/clipdeck/clipdeck/internal/captions"
)

// The style panel mutates the editing target through the caption
// store. Font size is clamped here, at the input boundary; the store
// itself does not validate ranges.

func clampFontSize(size int) int {
	return clampInt(size, captions.MinFontSize, captions.MaxFontSize)
}

func nextInList(values []string, current string, step int) string {
	if len(values) == 0 {
		return current
	}
	for i, v := range values {
		if v == current {
			return values[((i+step)%len(values)+len(values))%len(values)]
		}
	}
	// unknown current value snaps to the first option
	return values[0]
}

func nextFontFamily(current string, step int) string {
	return nextInList(captions.FontFamilies, current, step)
}

func nextColor(current string, step int) string {
	return nextInList(captions.PresetColors, current, step)
}
