package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps are "HH:MM:SS.cc" and level
// badges use the CLI palette so log lines match the status output.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	styles := log.DefaultStyles()
	styles.Timestamp = lipgloss.NewStyle().Foreground(colorDim)
	styles.Levels[log.DebugLevel] = levelBadge("DEBU", colorGray)
	styles.Levels[log.InfoLevel] = levelBadge("INFO", colorCyan)
	styles.Levels[log.WarnLevel] = levelBadge("WARN", colorYellow)
	styles.Levels[log.ErrorLevel] = levelBadge("ERRO", colorRed)
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(colorRed)
	styles.Values["err"] = lipgloss.NewStyle().Foreground(colorRed)
	logger.SetStyles(styles)
	return logger
}

func levelBadge(label string, color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().SetString(label).Bold(true).Foreground(color)
}

// progress times one command phase. It is safe for sequential use by a
// single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing now.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// elapsed is the time since start, rounded to the millisecond.
func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg with the elapsed time and any extra key/value pairs:
//
//	14:32:01.45 INFO Merged documents states=3 elapsed=1.234s
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", p.elapsed())...)
}
