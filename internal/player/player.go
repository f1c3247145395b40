// Package player launches an external video player (mpv by default)
// against the loopback preview server.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

const DefaultCommand = "mpv"

type Launcher struct {
	command string
	logger  *slog.Logger
}

func NewLauncher(command string, logger *slog.Logger) *Launcher {
	if command == "" {
		command = DefaultCommand
	}
	return &Launcher{command: command, logger: logger}
}

// Available reports whether the configured player binary is on PATH.
func (l *Launcher) Available() bool {
	_, err := exec.LookPath(l.command)
	return err == nil
}

// Open starts the player at the given URL and playback position. The
// player runs detached; closing it does not affect the editor.
func (l *Launcher) Open(url string, startSeconds float64) error {
	args := buildArgs(l.command, url, startSeconds, 0)
	cmd := exec.Command(l.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", l.command, err)
	}
	l.logger.Info("launched player", "command", l.command, "url", url, "start", startSeconds)
	go cmd.Wait()
	return nil
}

// OpenClip plays a bounded range, used for previewing a single
// highlight. Blocks until the player exits or ctx is cancelled.
func (l *Launcher) OpenClip(ctx context.Context, url string, startSeconds, endSeconds float64) error {
	args := buildArgs(l.command, url, startSeconds, endSeconds)
	cmd := exec.CommandContext(ctx, l.command, args...)
	l.logger.Info("launched clip preview", "command", l.command, "start", startSeconds, "end", endSeconds)
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("player exited: %w", err)
	}
	return nil
}

func buildArgs(command, url string, start, end float64) []string {
	// mpv and compatible forks share the --start/--end flag syntax;
	// anything else just gets the URL.
	if base := commandBase(command); base != "mpv" && !strings.HasPrefix(base, "mpv") {
		return []string{url}
	}
	args := []string{}
	if start > 0 {
		args = append(args, fmt.Sprintf("--start=%.3f", start))
	}
	if end > 0 {
		args = append(args, fmt.Sprintf("--end=%.3f", end))
	}
	return append(args, url)
}

func commandBase(command string) string {
	if i := strings.LastIndexAny(command, "/\\"); i >= 0 {
		return command[i+1:]
	}
	return command
}
