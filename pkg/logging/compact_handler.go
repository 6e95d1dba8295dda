package logging

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CompactHandler writes one line per record for a terminal:
//
//	[LEVEL] HH:MM:SS message | key=value key=value
//
// Request ids are cut to eight characters and "durationMs" prints as "duration=12ms".
type CompactHandler struct {
	level  slog.Leveler
	mu     *sync.Mutex // Shared by handlers derived with WithAttrs/WithGroup
	out    io.Writer
	prefix string // Open groups, e.g. "store.badger."
	attrs  []byte // Preformatted attributes from WithAttrs
}

// NewCompactHandler creates a handler writing to w. Only opts.Level is used.
func NewCompactHandler(w io.Writer, opts *slog.HandlerOptions) *CompactHandler {
	h := &CompactHandler{level: slog.LevelInfo, mu: &sync.Mutex{}, out: w}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func levelLabel(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "[TRACE] "
	case level < slog.LevelInfo:
		return "[DEBUG] "
	case level < slog.LevelWarn:
		return "[INFO]  "
	case level < slog.LevelError:
		return "[WARN]  "
	}
	return "[ERROR] "
}

func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, levelLabel(r.Level)...)
	buf = r.Time.AppendFormat(buf, "15:04:05")
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	// The separator is dropped again when there turn out to be no attributes
	bare := len(buf)
	buf = append(buf, " |"...)
	buf = append(buf, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, h.prefix, a)
		return true
	})
	if len(buf) == bare+2 {
		buf = buf[:bare]
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

// appendAttr appends " key=value", expanding groups into dotted keys
func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, member := range a.Value.Group() {
			buf = appendAttr(buf, prefix, member)
		}
		return buf
	}

	buf = append(buf, ' ')
	switch a.Key {
	case "requestID":
		if id := a.Value.String(); len(id) > 8 {
			return append(append(buf, "req="...), id[:8]...)
		}
	case "durationMs":
		buf = append(buf, prefix...)
		buf = append(buf, "duration="...)
		return append(appendValue(buf, a.Value), "ms"...)
	case "error":
		buf = append(buf, prefix...)
		buf = append(buf, "error="...)
		return strconv.AppendQuote(buf, a.Value.String())
	}

	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendString(buf, v.String())
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	}
	return appendString(buf, v.String())
}

func appendString(buf []byte, s string) []byte {
	if needsQuoting(s) {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

// needsQuoting is true for empty strings and anything that would split a key=value pair
func needsQuoting(s string) bool {
	return s == "" || strings.ContainsAny(s, " \t\n\"=|")
}

func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	derived := *h
	derived.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		derived.attrs = appendAttr(derived.attrs, h.prefix, a)
	}
	return &derived
}

func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	derived := *h
	derived.prefix = h.prefix + name + "."
	return &derived
}
