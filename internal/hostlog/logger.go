// Package hostlog implements [host.Logger] on top of log/slog.
//
// Leveled calls go straight to the wrapped [slog.Logger]. LogWithColor
// renders the message with ANSI colours via fatih/color and logs it at info
// level, so coloured banners still end up in structured output. Colours are
// dropped automatically when the output is not a terminal.
package hostlog

import (
	"context"
	"log/slog"

	"github.com/fatih/color"

	"github.com/MrWong99/tablepatch/pkg/host"
)

var _ host.Logger = (*Logger)(nil)

// Logger adapts an [slog.Logger] to [host.Logger].
type Logger struct {
	log *slog.Logger
}

// New returns a Logger writing through l. A nil l uses [slog.Default].
func New(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l}
}

func (l *Logger) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log.Error(msg, args...) }

// LogWithColor implements [host.Logger].
func (l *Logger) LogWithColor(msg string, text host.TextColor, bg host.BackgroundColor) {
	l.log.Log(context.Background(), slog.LevelInfo, Colorize(msg, text, bg))
}

var textAttrs = map[host.TextColor]color.Attribute{
	host.TextBlack:   color.FgBlack,
	host.TextRed:     color.FgRed,
	host.TextGreen:   color.FgGreen,
	host.TextYellow:  color.FgYellow,
	host.TextBlue:    color.FgBlue,
	host.TextMagenta: color.FgMagenta,
	host.TextCyan:    color.FgCyan,
	host.TextWhite:   color.FgWhite,
	host.TextGray:    color.FgHiBlack,
}

var backgroundAttrs = map[host.BackgroundColor]color.Attribute{
	host.BackgroundBlack:   color.BgBlack,
	host.BackgroundRed:     color.BgRed,
	host.BackgroundGreen:   color.BgGreen,
	host.BackgroundYellow:  color.BgYellow,
	host.BackgroundBlue:    color.BgBlue,
	host.BackgroundMagenta: color.BgMagenta,
	host.BackgroundCyan:    color.BgCyan,
	host.BackgroundWhite:   color.BgWhite,
}

// Colorize wraps msg in the escape sequences for text and bg. Unknown colours
// are ignored. When colour output is disabled msg is returned unchanged.
func Colorize(msg string, text host.TextColor, bg host.BackgroundColor) string {
	var attrs []color.Attribute
	if a, ok := textAttrs[text]; ok {
		attrs = append(attrs, a)
	}
	if a, ok := backgroundAttrs[bg]; ok {
		attrs = append(attrs, a)
	}
	if len(attrs) == 0 {
		return msg
	}
	return color.New(attrs...).Sprint(msg)
}
