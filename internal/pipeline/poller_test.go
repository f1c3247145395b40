package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/clipdeck/clipdeck/internal/cloud"
)

// fakeClient scripts status and render-progress responses; each poll
// tick consumes the next entry, the last entry repeats.
type fakeClient struct {
	cloud.Client

	mu          sync.Mutex
	statuses    []string
	statusErr   error
	statusCalls int

	progress     []cloud.RenderProgress
	progressErr  error
	progressCall int
}

func (f *fakeClient) GetStatus(_ context.Context, _ int64) (*cloud.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	i := f.statusCalls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.statusCalls++
	return &cloud.StatusResponse{ID: 1, Status: f.statuses[i]}, nil
}

func (f *fakeClient) GetRenderProgress(_ context.Context, _ int64) (*cloud.RenderProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	i := f.progressCall
	if i >= len(f.progress) {
		i = len(f.progress) - 1
	}
	f.progressCall++
	rp := f.progress[i]
	return &rp, nil
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func recvUpdate(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func assertNoUpdate(t *testing.T, ch <-chan Update, window time.Duration) {
	t.Helper()
	select {
	case u := <-ch:
		t.Fatalf("unexpected update after stop: %+v", u)
	case <-time.After(window):
	}
}

func TestWatchStatus_StopsAfterLeavingProcessing(t *testing.T) {
	client := &fakeClient{statuses: []string{"downloading", "ready"}}
	sup := NewSupervisor(client, 5*time.Millisecond, 5*time.Millisecond, quietLogger())
	defer sup.Close()

	sup.WatchStatus(1)

	first := recvUpdate(t, sup.Updates())
	if first.Kind != KindStatus || first.Status != StatusDownloading || first.Terminal {
		t.Fatalf("first update = %+v, want non-terminal downloading", first)
	}

	second := recvUpdate(t, sup.Updates())
	if second.Kind != KindStatus || second.Status != StatusReady {
		t.Fatalf("second update = %+v, want ready", second)
	}
	if !second.Terminal {
		t.Fatal("tick observing exit from processing subset must be terminal")
	}

	// exactly one terminal tick; polling does not continue
	assertNoUpdate(t, sup.Updates(), 50*time.Millisecond)
	if calls := client.calls(); calls != 2 {
		t.Errorf("status calls = %d, want exactly 2", calls)
	}
}

func TestWatchStatus_FailStopOnTransportError(t *testing.T) {
	client := &fakeClient{statusErr: errors.New("connection refused")}
	sup := NewSupervisor(client, 5*time.Millisecond, 5*time.Millisecond, quietLogger())
	defer sup.Close()

	sup.WatchStatus(1)

	u := recvUpdate(t, sup.Updates())
	if u.Kind != KindPollError || u.Err == nil {
		t.Fatalf("update = %+v, want poll error", u)
	}

	// no silent retry of a broken poll
	assertNoUpdate(t, sup.Updates(), 50*time.Millisecond)
}

func TestWatchStatus_RestartCancelsPrevious(t *testing.T) {
	client := &fakeClient{statuses: []string{"transcribing"}}
	sup := NewSupervisor(client, 5*time.Millisecond, 5*time.Millisecond, quietLogger())
	defer sup.Close()

	sup.WatchStatus(1)
	recvUpdate(t, sup.Updates())
	sup.WatchStatus(1) // cancel-before-start

	// drain for a while, then stop: updates must cease
	deadline := time.After(60 * time.Millisecond)
drain:
	for {
		select {
		case <-sup.Updates():
		case <-deadline:
			break drain
		}
	}

	sup.StopStatus()
	// allow an already-ticked poll to settle, then the stream is quiet
	time.Sleep(20 * time.Millisecond)
	for len(sup.Updates()) > 0 {
		<-sup.Updates()
	}
	assertNoUpdate(t, sup.Updates(), 50*time.Millisecond)
}

func TestWatchRender_ClampsReportedProgress(t *testing.T) {
	client := &fakeClient{progress: []cloud.RenderProgress{
		{Status: "rendering", Progress: -5, Stage: "preparing"},
		{Status: "rendering", Progress: 140, Stage: "encoding"},
	}}
	sup := NewSupervisor(client, 5*time.Millisecond, 5*time.Millisecond, quietLogger())
	defer sup.Close()

	sup.WatchRender(1)

	u := recvUpdate(t, sup.Updates())
	if u.Progress != 0 {
		t.Errorf("progress = %d, want clamp to 0", u.Progress)
	}
	u = recvUpdate(t, sup.Updates())
	if u.Progress != 100 {
		t.Errorf("progress = %d, want clamp to 100", u.Progress)
	}
}

func TestWatchRender_ForcesTerminalStateOnDone(t *testing.T) {
	client := &fakeClient{progress: []cloud.RenderProgress{
		{Status: "rendering", Progress: 60, Stage: "encoding"},
		{Status: "done", Progress: 60, Stage: "encoding"},
	}}
	sup := NewSupervisor(client, 5*time.Millisecond, 5*time.Millisecond, quietLogger())
	defer sup.Close()

	sup.WatchRender(1)

	u := recvUpdate(t, sup.Updates())
	if u.Progress != 60 || u.Terminal {
		t.Fatalf("first sample = %+v, want 60 non-terminal", u)
	}

	u = recvUpdate(t, sup.Updates())
	if !u.Terminal || u.Progress != 100 || u.Stage != "complete" {
		t.Fatalf("terminal sample = %+v, want forced {100, complete}", u)
	}

	assertNoUpdate(t, sup.Updates(), 50*time.Millisecond)
}

func TestSupervisor_CloseReleasesLoops(t *testing.T) {
	client := &fakeClient{
		statuses: []string{"downloading"},
		progress: []cloud.RenderProgress{{Status: "rendering", Progress: 10, Stage: "x"}},
	}
	sup := NewSupervisor(client, 5*time.Millisecond, 5*time.Millisecond, quietLogger())

	sup.WatchStatus(1)
	sup.WatchRender(1)
	recvUpdate(t, sup.Updates())

	sup.Close()
	time.Sleep(20 * time.Millisecond)
	for len(sup.Updates()) > 0 {
		<-sup.Updates()
	}
	assertNoUpdate(t, sup.Updates(), 50*time.Millisecond)
}
