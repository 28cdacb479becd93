package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures the logrus instance behind a session
type Options struct {
	Dir     string    // log directory, "logs" when empty
	Level   string    // logrus level name, "info" when empty
	Format  string    // "text" or "json"
	Console io.Writer // mirror target, os.Stderr when nil
	Quiet   bool      // write to the file only
}

// Session is a per-run log file named after the analysed symbol and interval, with a
// session header and footer around the structured entries
type Session struct {
	symbol   string
	interval string
	path     string
	logFile  *os.File
	logger   *logrus.Logger
	started  time.Time
	mu       sync.Mutex
	closed   bool
}

// New creates a console-only logger
func New(opts Options) (*logrus.Logger, error) {
	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	if opts.Quiet {
		out = io.Discard
	}
	return build(out, opts)
}

// NewSession opens <dir>/<SYMBOL>_<interval>_<date>.log in append mode and writes the session header
func NewSession(symbol, interval string, opts Options) (*Session, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	started := time.Now()
	filename := fmt.Sprintf("%s_%s_%s.log", symbol, interval, started.Format("2006-01-02"))
	logPath := filepath.Join(dir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var out io.Writer = file
	if !opts.Quiet {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		out = io.MultiWriter(file, console)
	}

	l, err := build(out, opts)
	if err != nil {
		file.Close()
		return nil, err
	}

	s := &Session{
		symbol:   symbol,
		interval: interval,
		path:     logPath,
		logFile:  file,
		logger:   l,
		started:  started,
	}
	s.writeSessionHeader()
	return s, nil
}

func build(out io.Writer, opts Options) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(out)

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	l.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q (text, json)", opts.Format)
	}
	return l, nil
}

func (s *Session) writeSessionHeader() {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.logFile, `
================================================================================
🔎 DTW PATTERN SEARCH STARTED
================================================================================
Symbol: %s | Interval: %s
Started: %s
Log File: %s
================================================================================
`, s.symbol, s.interval, s.started.Format("2006-01-02 15:04:05"), filepath.Base(s.path))
}

// Logger returns the session logger tagged with symbol and interval
func (s *Session) Logger() logrus.FieldLogger {
	return s.logger.WithFields(logrus.Fields{
		"symbol":   s.symbol,
		"interval": s.interval,
	})
}

// Path returns the log file path
func (s *Session) Path() string {
	return s.path
}

// Close writes the session footer and closes the file. Calling it twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	fmt.Fprintf(s.logFile, `
================================================================================
🛑 DTW PATTERN SEARCH ENDED
================================================================================
Ended: %s | Duration: %s
================================================================================

`, time.Now().Format("2006-01-02 15:04:05"), time.Since(s.started).Round(time.Millisecond))

	return s.logFile.Close()
}
