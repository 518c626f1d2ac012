package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"lookout/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
	Development      bool
}

// New constructs a slog logger from the options. The console format writes
// one human-readable line per record; json emits machine-readable records
// with lowercase level names. Caller locations are recorded when Development
// is set or the level is debug.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))

	sink, err := openSink(
		fallbackPaths(opts.OutputPaths, "stdout"),
		fallbackPaths(opts.ErrorOutputPaths, "stderr"),
	)
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || level.Level() <= slog.LevelDebug

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		return slog.New(newConsoleHandler(sink, level, addSource)), nil
	case "json":
		return slog.New(newJSONHandler(sink, level, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates a logger using application config defaults. When a
// log directory is configured the daemon log file receives a copy of every
// record alongside the standard streams.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	opts := Options{Level: "info", Format: "console"}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
		if cfg.Daemon.LogDir != "" {
			if err := os.MkdirAll(cfg.Daemon.LogDir, 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			logPath := filepath.Join(cfg.Daemon.LogDir, "lookout.log")
			opts.OutputPaths = []string{"stdout", logPath}
			opts.ErrorOutputPaths = []string{"stderr", logPath}
		}
	}
	return New(opts)
}

var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// parseLevel maps a config string to a slog level, defaulting to info for
// anything it does not recognize.
func parseLevel(name string) slog.Level {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return slog.LevelInfo
}

func fallbackPaths(paths []string, name string) []string {
	if len(paths) == 0 {
		return []string{name}
	}
	return paths
}

// openSink opens each distinct path once and fans every record out to all
// of them. Output and error paths share one sink so interleaved writes stay
// ordered.
func openSink(groups ...[]string) (io.Writer, error) {
	seen := map[string]bool{}
	var writers []io.Writer
	for _, group := range groups {
		for _, path := range group {
			path = strings.TrimSpace(path)
			if path == "" || seen[path] {
				continue
			}
			seen[path] = true
			w, err := openWriter(path)
			if err != nil {
				return nil, err
			}
			writers = append(writers, w)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func openWriter(path string) (io.Writer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func newJSONHandler(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.TimeKey:
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.TimeValue(attr.Value.Time().UTC())
				}
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(filepath.Base(src.File) + ":" + strconv.Itoa(src.Line))
				}
			}
			return attr
		},
	})
}

// consoleHandler renders records as single lines: UTC timestamp, level, an
// optional component prefix folded into the message, the caller when source
// logging is on, then key=value attributes.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	addSource bool

	component string
	groups    string // dotted prefix applied to attribute keys
	preattrs  []byte // attributes bound via With, already rendered
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), out: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	line := make([]byte, 0, 160+len(h.preattrs))
	line = ts.UTC().AppendFormat(line, time.RFC3339)
	line = append(line, ' ')
	line = append(line, levelLabel(record.Level)...)
	line = append(line, ' ')

	component := h.component
	var tail []byte
	record.Attrs(func(attr slog.Attr) bool {
		if component == "" && h.groups == "" && attr.Key == FieldComponent {
			component = renderValue(attr.Value.Resolve())
			return true
		}
		tail = appendAttr(tail, h.groups, attr)
		return true
	})

	if component != "" {
		line = append(line, component...)
		line = append(line, ": "...)
	}
	line = append(line, record.Message...)

	if h.addSource {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		frame, _ := frames.Next()
		if frame.File != "" {
			line = append(line, " ["...)
			line = append(line, filepath.Base(frame.File)...)
			line = append(line, ':')
			line = strconv.AppendInt(line, int64(frame.Line), 10)
			line = append(line, ']')
		}
	}

	line = append(line, h.preattrs...)
	line = append(line, tail...)
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, attr := range attrs {
		if c.component == "" && c.groups == "" && attr.Key == FieldComponent {
			c.component = renderValue(attr.Value.Resolve())
			continue
		}
		c.preattrs = appendAttr(c.preattrs, c.groups, attr)
	}
	return c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.groups += name + "."
	return c
}

func (h *consoleHandler) clone() *consoleHandler {
	c := *h
	c.preattrs = append([]byte(nil), h.preattrs...)
	return &c
}

// appendAttr renders one attribute as " key=value", expanding groups into
// dotted keys and skipping empty attributes per the slog handler contract.
func appendAttr(buf []byte, prefix string, attr slog.Attr) []byte {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return buf
	}
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = prefix + attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			buf = appendAttr(buf, next, member)
		}
		return buf
	}
	key := prefix + attr.Key
	if key == "" {
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, key...)
	buf = append(buf, '=')
	return append(buf, quoteIfNeeded(renderValue(attr.Value))...)
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
