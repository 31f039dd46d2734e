package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives progress of a batch run. Calls may come from
// several goroutines.
type ProgressCallback interface {
	OnStart(total int)
	OnProgress(current, total int)
	OnComplete()
	OnError(current int, err error)
}

// ConsoleProgress draws a progress bar on a terminal.
type ConsoleProgress struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration

	mu         sync.Mutex
	lastUpdate time.Time
	startTime  time.Time
}

// NewConsoleProgress creates a console progress reporter writing to w
// (stderr when nil).
func NewConsoleProgress(w io.Writer, prefix string) *ConsoleProgress {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleProgress{
		writer:         w,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

// WithUpdateInterval sets how frequently the bar is redrawn.
func (c *ConsoleProgress) WithUpdateInterval(interval time.Duration) *ConsoleProgress {
	c.updateInterval = interval
	return c
}

func (c *ConsoleProgress) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "%s0/%d (0.0%%)\n", c.prefix, total)
}

func (c *ConsoleProgress) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && current < total {
		return
	}
	c.lastUpdate = now
	if total == 0 {
		return
	}

	filled := c.width * current / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	status := fmt.Sprintf("\r%s[%s] %d/%d (%.1f%%)", c.prefix, bar, current, total,
		float64(current)/float64(total)*100)
	if elapsed := now.Sub(c.startTime); elapsed > 0 && current > 0 {
		status += fmt.Sprintf(" %.1f files/s", float64(current)/elapsed.Seconds())
	}
	_, _ = fmt.Fprint(c.writer, status)
}

func (c *ConsoleProgress) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.writer, "\n%sCompleted in %v\n", c.prefix, time.Since(c.startTime).Round(time.Millisecond))
}

func (c *ConsoleProgress) OnError(current int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.writer, "\n%sError at file %d: %v\n", c.prefix, current, err)
}

// LogProgress reports progress through slog every interval files.
type LogProgress struct {
	logger   *slog.Logger
	interval int

	mu        sync.Mutex
	lastLog   int
	startTime time.Time
}

// NewLogProgress creates a log based progress reporter.
func NewLogProgress(logger *slog.Logger, interval int) *LogProgress {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10
	}
	return &LogProgress{logger: logger, interval: interval}
}

func (l *LogProgress) OnStart(total int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.startTime = time.Now()
	l.lastLog = 0
	l.logger.Info("batch started", "files", total)
}

func (l *LogProgress) OnProgress(current, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if current-l.lastLog < l.interval && current != total {
		return
	}
	l.lastLog = current
	l.logger.Info("batch progress",
		"current", current,
		"total", total,
		"elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgress) OnComplete() {
	l.logger.Info("batch completed", "elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgress) OnError(current int, err error) {
	l.logger.Error("batch file failed", "current", current, "error", err)
}
