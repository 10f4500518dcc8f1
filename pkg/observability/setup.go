package observability

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const logPrefix = "observability:setup"

// Log file names inside Options.Dir.
const (
	AllEventsFile = "assistant.log"
	ErrorsFile    = "assistant_errors.log"
)

// Options configures Setup.
type Options struct {
	Level      string
	Dir        string // empty disables the file streams
	BufferSize int
	Console    io.Writer
	Secrets    []string
}

// Logging owns the open log streams.
type Logging struct {
	Logger   *slog.Logger
	Redactor *Redactor
	writers  []*AsyncWriter
}

// ParseLevel maps LOG_LEVEL values to slog levels; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup opens the all-events and errors-only streams under opts.Dir and
// returns a Logging whose Logger should be installed with slog.SetDefault.
func Setup(opts Options) (*Logging, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	l := &Logging{Redactor: NewRedactor(opts.Secrets...)}

	hopts := HandlerOptions{
		Console:      console,
		ConsoleLevel: ParseLevel(opts.Level),
		Redactor:     l.Redactor,
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("%s - failed to create log dir %s: %w", logPrefix, opts.Dir, err)
		}
		all, err := openAppend(filepath.Join(opts.Dir, AllEventsFile))
		if err != nil {
			return nil, err
		}
		errs, err := openAppend(filepath.Join(opts.Dir, ErrorsFile))
		if err != nil {
			all.Close()
			return nil, err
		}
		allW := NewAsyncWriter(all, opts.BufferSize)
		errW := NewAsyncWriter(errs, opts.BufferSize)
		l.writers = append(l.writers, allW, errW)
		hopts.All = allW
		hopts.Errors = errW
	}

	l.Logger = slog.New(NewHandler(hopts))
	return l, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to open %s: %w", logPrefix, path, err)
	}
	return f, nil
}

// Dropped returns the total number of lines dropped across file streams.
func (l *Logging) Dropped() uint64 {
	var n uint64
	for _, w := range l.writers {
		n += w.Dropped()
	}
	return n
}

// Close drains and closes the file streams.
func (l *Logging) Close() error {
	var errs []error
	for _, w := range l.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
