package tui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	TextStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	DimTextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	SpinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	ErrorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	SuccessStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	TabStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 2)
	ActiveTabStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")).Padding(0, 2)
	CanvasStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8"))
	ActiveGlyph     = lipgloss.NewStyle().Bold(true)
	SelectedGlyph   = lipgloss.NewStyle().Bold(true).Underline(true)
	TrackStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	BlockStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	SelBlockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	PlayheadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	DisabledStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	ProgressStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	TimestampStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2)
	ItemStyle       = lipgloss.NewStyle().PaddingLeft(2)
	SelectedItem    = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("3"))
	StatusBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	DirtyMarkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
)
