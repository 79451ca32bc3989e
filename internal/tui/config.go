package tui

import (
	"io"

	"github.com/Veraticus/sakhi/internal/i18n"
	"github.com/Veraticus/sakhi/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Input     io.Reader
	Output    io.Writer
	Localizer *i18n.Localizer
	Title     string
	Width     int
	Height    int
	ShowHelp  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Localizer: i18n.New("en"),
		Width:     96,
		Height:    24,
		ShowHelp:  true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithLanguage sets the display language.
func WithLanguage(lang string) Option {
	return func(c *Config) {
		c.Localizer = i18n.New(lang)
	}
}

// WithTitle sets the caption shown above the table, e.g. the merchant.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithIO sets the program's input and output.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
	}
}

// WithHelp toggles the key help line.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
