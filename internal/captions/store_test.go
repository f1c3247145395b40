package captions

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/clipdeck/clipdeck/internal/cloud"
)

func TestResolveStyle_NullAndAbsent(t *testing.T) {
	want := DefaultStyle()

	cases := []struct {
		name string
		raw  json.RawMessage
	}{
		{"absent", nil},
		{"empty", json.RawMessage("")},
		{"null", json.RawMessage("null")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveStyle(tc.raw)
			if got != want {
				t.Errorf("ResolveStyle(%s) = %+v, want defaults %+v", tc.name, got, want)
			}
		})
	}
}

func TestResolveStyle_Unparseable(t *testing.T) {
	want := DefaultStyle()

	cases := []json.RawMessage{
		json.RawMessage(`{broken`),
		json.RawMessage(`"not an object at all"`),
		json.RawMessage(`"{\"fontSize\": }"`),
		json.RawMessage(`42`),
	}
	for _, raw := range cases {
		if got := ResolveStyle(raw); got != want {
			t.Errorf("ResolveStyle(%s) = %+v, want defaults", raw, got)
		}
	}
}

func TestResolveStyle_PartialMerge(t *testing.T) {
	got := ResolveStyle(json.RawMessage(`{"fontSize":30}`))
	want := Style{X: 10, Y: 374, FontSize: 30, Color: "#FFFFFF", FontFamily: "Arial"}
	if got != want {
		t.Errorf("merged style = %+v, want %+v", got, want)
	}
}

func TestResolveStyle_StringEncodedObject(t *testing.T) {
	got := ResolveStyle(json.RawMessage(`"{\"x\":50,\"color\":\"#FFFF00\"}"`))
	want := Style{X: 50, Y: 374, FontSize: 20, Color: "#FFFF00", FontFamily: "Arial"}
	if got != want {
		t.Errorf("string-encoded style = %+v, want %+v", got, want)
	}
}

func TestResolveStyle_FullObject(t *testing.T) {
	got := ResolveStyle(json.RawMessage(`{"x":1,"y":2,"fontSize":44,"color":"#FF4444","fontFamily":"Impact"}`))
	want := Style{X: 1, Y: 2, FontSize: 44, Color: "#FF4444", FontFamily: "Impact"}
	if got != want {
		t.Errorf("full style = %+v, want %+v", got, want)
	}
}

func loadedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Load([]cloud.Caption{
		{ID: 1, StartTime: 0, EndTime: 2, Text: "A"},
		{ID: 2, StartTime: 2, EndTime: 5, Text: "B"},
		{ID: 3, StartTime: 4, EndTime: 6, Text: "C"},
	})
	return s
}

func TestStore_ActiveAt_Boundary(t *testing.T) {
	s := loadedStore(t)

	// t=2.0 is inside both A [0,2] and B [2,5]; earliest start wins.
	for i := 0; i < 5; i++ {
		got := s.ActiveAt(2.0)
		if got == nil || got.ID != 1 {
			t.Fatalf("ActiveAt(2.0) = %+v, want entry 1", got)
		}
	}
}

func TestStore_ActiveAt_OrderIndependent(t *testing.T) {
	s := NewStore()
	s.Load([]cloud.Caption{
		{ID: 3, StartTime: 4, EndTime: 6, Text: "C"},
		{ID: 2, StartTime: 2, EndTime: 5, Text: "B"},
		{ID: 1, StartTime: 0, EndTime: 2, Text: "A"},
	})

	got := s.ActiveAt(4.5)
	if got == nil || got.ID != 2 {
		t.Fatalf("ActiveAt(4.5) = %+v, want entry 2 (earliest start)", got)
	}
}

func TestStore_ActiveAt_EqualStartsBreakByID(t *testing.T) {
	s := NewStore()
	s.Load([]cloud.Caption{
		{ID: 9, StartTime: 1, EndTime: 3, Text: "later id"},
		{ID: 4, StartTime: 1, EndTime: 3, Text: "earlier id"},
	})

	got := s.ActiveAt(2)
	if got == nil || got.ID != 4 {
		t.Fatalf("ActiveAt(2) = %+v, want entry 4", got)
	}
}

func TestStore_ActiveAt_None(t *testing.T) {
	s := loadedStore(t)
	if got := s.ActiveAt(100); got != nil {
		t.Fatalf("ActiveAt(100) = %+v, want nil", got)
	}
}

func TestStore_SetStyle(t *testing.T) {
	s := loadedStore(t)

	size := 30
	if !s.SetStyle(2, Patch{FontSize: &size}) {
		t.Fatal("SetStyle returned false for known id")
	}
	if got := s.Get(2).Style.FontSize; got != 30 {
		t.Errorf("fontSize = %d, want 30", got)
	}
	// untouched fields keep defaults
	if got := s.Get(2).Style.Color; got != "#FFFFFF" {
		t.Errorf("color = %q, want default", got)
	}
	if !s.Dirty() {
		t.Error("store should be dirty after SetStyle")
	}

	if s.SetStyle(99, Patch{FontSize: &size}) {
		t.Fatal("SetStyle returned true for unknown id")
	}
}

func TestStore_Snapshot_SendsFullCollection(t *testing.T) {
	s := loadedStore(t)
	x := 99.0
	s.SetStyle(1, Patch{X: &x})

	payload, rev, err := s.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload) != 3 {
		t.Fatalf("payload entries = %d, want full collection of 3", len(payload))
	}

	var style Style
	if err := json.Unmarshal(payload[0].StyleJSON, &style); err != nil {
		t.Fatalf("payload style not an object: %v", err)
	}
	if style.X != 99 {
		t.Errorf("payload x = %v, want 99", style.X)
	}

	s.MarkClean(rev)
	if s.Dirty() {
		t.Error("store should be clean after the snapshot is saved")
	}
}

func TestStore_Snapshot_DetachedFromLaterEdits(t *testing.T) {
	s := loadedStore(t)
	size := 30
	s.SetStyle(1, Patch{FontSize: &size})

	payload, _, err := s.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// edits while the save request is in flight must not leak into the
	// payload already handed to the transport
	later := 44
	s.SetStyle(1, Patch{FontSize: &later})

	var style Style
	if err := json.Unmarshal(payload[0].StyleJSON, &style); err != nil {
		t.Fatalf("payload style not an object: %v", err)
	}
	if style.FontSize != 30 {
		t.Errorf("payload fontSize = %d, want 30 (value at snapshot time)", style.FontSize)
	}
}

func TestStore_MarkClean_StaleRevisionKeepsDirty(t *testing.T) {
	s := loadedStore(t)
	size := 42
	s.SetStyle(3, Patch{FontSize: &size})

	_, rev, err := s.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// an edit lands while the save is in flight
	s.SetStyle(2, Patch{FontSize: &size})

	s.MarkClean(rev)
	if !s.Dirty() {
		t.Error("store marked clean despite edits after the snapshot")
	}

	// the next save settles it
	_, rev2, _ := s.Snapshot()
	s.MarkClean(rev2)
	if s.Dirty() {
		t.Error("store still dirty after saving the latest revision")
	}
}

func TestStore_FailedSaveRetainsEdits(t *testing.T) {
	s := loadedStore(t)
	size := 42
	s.SetStyle(3, Patch{FontSize: &size})
	before := append([]Entry(nil), s.Entries()...)

	// a failed save never reaches MarkClean; entries and the dirty flag
	// are untouched for a manual retry
	if _, _, err := s.Snapshot(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(before, s.Entries()) {
		t.Fatal("entries changed after snapshot")
	}
	if !s.Dirty() {
		t.Error("store should stay dirty until a save succeeds")
	}
}
