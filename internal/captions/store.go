// Package captions owns the working set of caption entries for one
// editing session: load-time style resolution, in-place style mutation,
// time-active lookup, and the atomic full-replace save.
package captions

import (
	"encoding/json"
	"fmt"

	"github.com/clipdeck/clipdeck/internal/cloud"
)

// Entry is a timed text overlay. Start and End are in seconds; End is
// expected to be greater than Start.
type Entry struct {
	ID    int64
	Start float64
	End   float64
	Text  string
	Style Style
}

// Contains reports whether t falls inside the entry's time window,
// boundaries included.
func (e Entry) Contains(t float64) bool {
	return t >= e.Start && t <= e.End
}

// Store holds the caption entries of the active editing session. It is
// owned by the editing view's update loop and must only be touched from
// there; a save runs against a detached Snapshot so editing can continue
// while the request is in flight.
type Store struct {
	entries []Entry
	dirty   bool
	rev     uint64
}

func NewStore() *Store {
	return &Store{}
}

// Load replaces the working set from raw remote captions, resolving
// each style payload. Never fails; malformed styles fall back to
// defaults.
func (s *Store) Load(raw []cloud.Caption) {
	entries := make([]Entry, 0, len(raw))
	for _, c := range raw {
		entries = append(entries, Entry{
			ID:    c.ID,
			Start: c.StartTime,
			End:   c.EndTime,
			Text:  c.Text,
			Style: ResolveStyle(c.StyleJSON),
		})
	}
	s.entries = entries
	s.dirty = false
	s.rev++
}

// Entries returns the working set in store order. The slice is shared;
// callers must mutate through SetStyle only.
func (s *Store) Entries() []Entry {
	return s.entries
}

func (s *Store) Len() int {
	return len(s.entries)
}

// Get returns the entry with the given id, or nil.
func (s *Store) Get(id int64) *Entry {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return &s.entries[i]
		}
	}
	return nil
}

// SetStyle merges a partial style update into the identified entry.
// Returns false if the id is unknown. No range validation happens here;
// inputs are clamped at the UI boundary.
func (s *Store) SetStyle(id int64, patch Patch) bool {
	e := s.Get(id)
	if e == nil {
		return false
	}
	patch.Apply(&e.Style)
	s.dirty = true
	s.rev++
	return true
}

// Dirty reports whether there are unsaved style edits.
func (s *Store) Dirty() bool {
	return s.dirty
}

// ActiveAt returns the caption whose time window contains t. Overlaps
// are resolved deterministically: earliest start wins, equal starts
// break by lowest id. Returns nil when no window contains t.
func (s *Store) ActiveAt(t float64) *Entry {
	var best *Entry
	for i := range s.entries {
		e := &s.entries[i]
		if !e.Contains(t) {
			continue
		}
		if best == nil || e.Start < best.Start || (e.Start == best.Start && e.ID < best.ID) {
			best = e
		}
	}
	return best
}

// Snapshot builds the wire payload for one atomic replace of the whole
// remote collection, plus a revision marker for MarkClean. The payload
// shares no memory with the store, so the request may run on another
// goroutine while editing continues.
func (s *Store) Snapshot() ([]cloud.CaptionUpdate, uint64, error) {
	payload := make([]cloud.CaptionUpdate, 0, len(s.entries))
	for _, e := range s.entries {
		styleJSON, err := json.Marshal(e.Style)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal style for caption %d: %w", e.ID, err)
		}
		payload = append(payload, cloud.CaptionUpdate{
			StartTime: e.Start,
			EndTime:   e.End,
			Text:      e.Text,
			StyleJSON: styleJSON,
		})
	}
	return payload, s.rev, nil
}

// MarkClean settles the dirty flag after a successful save of the
// snapshot taken at rev. Edits made while that save was in flight bump
// the revision and keep the store dirty; a failed save never marks
// clean, so the entries stay dirty for a manual retry.
func (s *Store) MarkClean(rev uint64) {
	if rev == s.rev {
		s.dirty = false
	}
}
