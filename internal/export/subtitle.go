// Package export writes caption tracks to standalone subtitle files.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipdeck/clipdeck/internal/captions"
)

const (
	FormatSRT = "srt"
	FormatVTT = "vtt"
)

const maxNameLen = 80

// GenerateSRT renders entries as a SubRip track. Entries are emitted
// in the order given, numbered from 1.
func GenerateSRT(entries []captions.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(e.Start, ','), formatTimestamp(e.End, ','))
		b.WriteString(e.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// GenerateVTT renders entries as a WebVTT track.
func GenerateVTT(entries []captions.Entry) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(e.Start, '.'), formatTimestamp(e.End, '.'))
		b.WriteString(e.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm. SRT separates
// milliseconds with a comma, WebVTT with a period.
func formatTimestamp(seconds float64, sep rune) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int(math.Round(seconds * 1000))
	ms := totalMs % 1000
	totalSeconds := totalMs / 1000
	secs := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, sep, ms)
}

// WriteCaptions writes the track to <dir>/<sanitized title>.<format>
// and returns the written path.
func WriteCaptions(dir, title, format string, entries []captions.Entry) (string, error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", err
	}

	var content string
	switch format {
	case FormatSRT:
		content = GenerateSRT(entries)
	case FormatVTT:
		content = GenerateVTT(entries)
	default:
		return "", fmt.Errorf("unsupported subtitle format: %q", format)
	}

	name := SanitizeName(title, maxNameLen)
	if name == "" {
		name = "captions"
	}
	path := filepath.Join(dir, name+"."+format)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return path, nil
}
