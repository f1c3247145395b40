package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/clipdeck/clipdeck/internal/cloud"
)

// UpdateKind classifies poll loop messages.
type UpdateKind int

const (
	// KindStatus carries a freshly polled pipeline status.
	KindStatus UpdateKind = iota
	// KindRenderProgress carries a render progress sample.
	KindRenderProgress
	// KindPollError reports the transport failure that stopped a loop.
	KindPollError
)

// Update is one message from a poll loop to the editing view.
type Update struct {
	Kind     UpdateKind
	Status   Status
	Progress int
	Stage    string
	Err      error
	// Terminal marks the tick that observed the status leave the
	// processing subset. Exactly one Terminal update is delivered per
	// watch; the view runs its one dependent-data refresh on it.
	Terminal bool
}

// Supervisor runs the two poll concerns, pipeline status and render
// progress, with at most one live loop per concern. Starting a loop
// cancels any previous one for the same concern; teardown releases
// both. Owned by a single editing view; methods are not safe for
// concurrent use.
type Supervisor struct {
	client         cloud.Client
	logger         *slog.Logger
	statusInterval time.Duration
	renderInterval time.Duration

	updates chan Update

	stopStatus context.CancelFunc
	stopRender context.CancelFunc
}

func NewSupervisor(client cloud.Client, statusInterval, renderInterval time.Duration, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		client:         client,
		logger:         logger,
		statusInterval: statusInterval,
		renderInterval: renderInterval,
		updates:        make(chan Update, 16),
	}
}

// Updates is the stream the editing view drains. It is never closed;
// loops simply stop publishing once cancelled.
func (s *Supervisor) Updates() <-chan Update {
	return s.updates
}

// WatchStatus starts the general status poll loop for a project. The
// loop stops on its own when the status leaves the processing subset or
// on the first transport error.
func (s *Supervisor) WatchStatus(projectID int64) {
	s.StopStatus()

	ctx, cancel := context.WithCancel(context.Background())
	s.stopStatus = cancel

	s.logger.Info("status poll started", "project_id", projectID, "interval", s.statusInterval)

	go func() {
		defer cancel()

		ticker := time.NewTicker(s.statusInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			resp, err := s.client.GetStatus(ctx, projectID)
			if err != nil {
				// fail-stop: a broken poll is not silently retried
				s.logger.Warn("status poll failed", "project_id", projectID, "error", err)
				s.publish(ctx, Update{Kind: KindPollError, Err: err})
				return
			}

			status := Status(resp.Status)
			if !status.Processing() {
				s.logger.Info("status poll finished", "project_id", projectID, "status", status)
				s.publish(ctx, Update{Kind: KindStatus, Status: status, Terminal: true})
				return
			}
			s.publish(ctx, Update{Kind: KindStatus, Status: status})
		}
	}()
}

// WatchRender starts the fine-grained render progress loop. It runs
// only while the pipeline renders; observing a terminal status in the
// progress payload stops it with a forced complete sample.
func (s *Supervisor) WatchRender(projectID int64) {
	s.StopRender()

	ctx, cancel := context.WithCancel(context.Background())
	s.stopRender = cancel

	s.logger.Info("render poll started", "project_id", projectID, "interval", s.renderInterval)

	go func() {
		defer cancel()

		ticker := time.NewTicker(s.renderInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			rp, err := s.client.GetRenderProgress(ctx, projectID)
			if err != nil {
				s.logger.Warn("render poll failed", "project_id", projectID, "error", err)
				s.publish(ctx, Update{Kind: KindPollError, Err: err})
				return
			}

			if Status(rp.Status) == StatusDone {
				// guarantee a visually terminal state even if the last
				// sample under-reported
				s.publish(ctx, Update{Kind: KindRenderProgress, Progress: 100, Stage: "complete", Terminal: true})
				return
			}
			s.publish(ctx, Update{Kind: KindRenderProgress, Progress: Clamp(rp.Progress), Stage: rp.Stage})
		}
	}()
}

// StopStatus cancels the status loop if one is live.
func (s *Supervisor) StopStatus() {
	if s.stopStatus != nil {
		s.stopStatus()
		s.stopStatus = nil
	}
}

// StopRender cancels the render loop if one is live.
func (s *Supervisor) StopRender() {
	if s.stopRender != nil {
		s.stopRender()
		s.stopRender = nil
	}
}

// Close releases every timer resource. Called on view teardown.
func (s *Supervisor) Close() {
	s.StopStatus()
	s.StopRender()
}

func (s *Supervisor) publish(ctx context.Context, u Update) {
	if ctx.Err() != nil {
		return
	}
	select {
	case s.updates <- u:
	case <-ctx.Done():
	}
}

// Clamp bounds a reported progress value to [0, 100]. The service's
// numbers are not trusted.
func Clamp(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
