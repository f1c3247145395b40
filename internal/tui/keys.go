package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	NextTab     key.Binding
	PlayPause   key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	PrevCaption key.Binding
	NextCaption key.Binding
	Save        key.Binding
	FontBigger  key.Binding
	FontSmaller key.Binding
	NextFont    key.Binding
	NextColor   key.Binding
	Acquire     key.Binding
	Transcribe  key.Binding
	Highlight   key.Binding
	Render      key.Binding
	Toggle      key.Binding
	Preview     key.Binding
	Export      key.Binding
	CopyURL     key.Binding
}

var keys = keyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch tab")),
	PlayPause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	SeekBack:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "seek -5s")),
	SeekForward: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "seek +5s")),
	PrevCaption: key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "prev caption")),
	NextCaption: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "next caption")),
	Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save captions")),
	FontBigger:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "font size up")),
	FontSmaller: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "font size down")),
	NextFont:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle font")),
	NextColor:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle color")),
	Acquire:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "download source")),
	Transcribe:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "transcribe")),
	Highlight:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "find highlights")),
	Render:      key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "render")),
	Toggle:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle highlight")),
	Preview:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "open player")),
	Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export subtitles")),
	CopyURL:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy output url")),
}
