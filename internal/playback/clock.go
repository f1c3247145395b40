// Package playback tracks the media playback position for the editing
// session and serves cached media files to external players with HTTP
// range support.
package playback

// Clock models the media element's position signal. Position updates
// arrive many times per second; only the latest value matters, so the
// clock is plain state with no buffering.
type Clock struct {
	current  float64
	duration float64
	playing  bool
}

func NewClock(duration float64) *Clock {
	return &Clock{duration: duration}
}

func (c *Clock) CurrentTime() float64 { return c.current }
func (c *Clock) Duration() float64    { return c.duration }
func (c *Clock) Playing() bool        { return c.playing }

// SetDuration is called once media metadata is known. A zero duration
// puts dependents (timeline) into their placeholder state.
func (c *Clock) SetDuration(d float64) {
	if d < 0 {
		d = 0
	}
	c.duration = d
	if c.current > d {
		c.current = d
	}
}

// Seek moves the position, clamped to [0, duration].
func (c *Clock) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	if t > c.duration {
		t = c.duration
	}
	c.current = t
}

// Advance moves the position forward by dt seconds while playing,
// pausing at the end of media.
func (c *Clock) Advance(dt float64) {
	if !c.playing {
		return
	}
	c.current += dt
	if c.current >= c.duration {
		c.current = c.duration
		c.playing = false
	}
}

func (c *Clock) TogglePlay() {
	if !c.playing && c.duration > 0 && c.current >= c.duration {
		c.current = 0
	}
	c.playing = !c.playing
}

func (c *Clock) Pause() { c.playing = false }

// Fraction returns the position as a fraction of duration, or 0 when
// duration is unknown. Guards the division by zero for all consumers.
func (c *Clock) Fraction() float64 {
	if c.duration == 0 {
		return 0
	}
	return c.current / c.duration
}
