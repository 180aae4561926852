package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler renders operator-facing console output: a one-line header
// with timestamp, level, component, and generation subject, followed by
// indented bullet fields at info level or raw key/value dumps at debug.
type prettyHandler struct {
	mu        sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
	infoCache map[string]map[string]string
}

// lineHeader carries the fields every console line starts with.
type lineHeader struct {
	ts           time.Time
	level        slog.Level
	component    string
	generationID string
	variant      string
	message      string
	src          *slog.Source
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{writer: w, level: lvl, addSource: addSource, infoCache: make(map[string]map[string]string)}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	hdr := lineHeader{
		ts:      record.Time,
		level:   record.Level,
		message: strings.TrimSpace(record.Message),
	}
	if hdr.ts.IsZero() {
		hdr.ts = time.Now()
	}
	if hdr.message == "" {
		hdr.message = "(no message)"
	}
	if h.addSource {
		hdr.src = record.Source()
	}

	// The component moves into the header; generation id and variant stay in
	// the field list too so debug dumps remain complete.
	body := make([]kv, 0, len(kvs))
	for _, f := range kvs {
		switch f.key {
		case FieldComponent:
			if hdr.component == "" {
				hdr.component = attrString(f.value)
			}
			continue
		case FieldGenerationID:
			if hdr.generationID == "" {
				hdr.generationID = attrString(f.value)
			}
		case FieldVariant:
			if hdr.variant == "" {
				hdr.variant = attrString(f.value)
			}
		}
		body = append(body, f)
	}
	body = collapseDuplicateKeys(body)

	var buf bytes.Buffer
	buf.Grow(256 + len(body)*32)

	h.mu.Lock()
	defer h.mu.Unlock()
	if hdr.level < slog.LevelInfo {
		all := collapseDuplicateKeys(kvs)
		h.writeDebug(&buf, hdr, all)
	} else {
		h.writeInfo(&buf, hdr, body)
	}
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) writeInfo(buf *bytes.Buffer, hdr lineHeader, attrs []kv) {
	writeHeader(buf, hdr)
	fields, hidden := selectInfoFields(attrs, 0, true)
	summaryKey := infoSummaryKey(hdr.component, hdr.generationID, attrs)
	fields, hidden = h.filterRepeatedInfo(summaryKey, fields, hidden, hdr.level)
	buf.WriteByte('\n')
	for _, field := range fields {
		buf.WriteString("    - ")
		buf.WriteString(field.label)
		buf.WriteString(": ")
		buf.WriteString(field.value)
		buf.WriteByte('\n')
	}
	if hidden > 0 {
		buf.WriteString("    + ")
		buf.WriteString(strconv.Itoa(hidden))
		buf.WriteString(" more field")
		if hidden != 1 {
			buf.WriteByte('s')
		}
		buf.WriteString(" hidden\n")
	}
}

func (h *prettyHandler) writeDebug(buf *bytes.Buffer, hdr lineHeader, attrs []kv) {
	writeHeader(buf, hdr)
	buf.WriteByte('\n')
	for _, f := range attrs {
		if f.key == "" {
			continue
		}
		buf.WriteString("    ")
		buf.WriteString(f.key)
		buf.WriteString(": ")
		buf.WriteString(formatValue(f.value))
		buf.WriteByte('\n')
	}
}

func writeHeader(buf *bytes.Buffer, hdr lineHeader) {
	buf.WriteString(formatTimestamp(hdr.ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(hdr.level))
	if hdr.component != "" {
		buf.WriteString(" [")
		buf.WriteString(hdr.component)
		buf.WriteByte(']')
	}
	if subject := FormatSubject(hdr.generationID, hdr.variant); subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	if hdr.message != "" {
		buf.WriteString(" – ")
		buf.WriteString(hdr.message)
	}
	if hdr.src != nil {
		buf.WriteString(" [")
		buf.WriteString(filepath.Base(hdr.src.File))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(hdr.src.Line))
		buf.WriteByte(']')
	}
}

// filterRepeatedInfo suppresses bullet fields whose value has not changed
// since the last line for the same subject, keeping steady-state output
// short. Warnings and errors always show everything.
func (h *prettyHandler) filterRepeatedInfo(key string, fields []infoField, hidden int, level slog.Level) ([]infoField, int) {
	if key == "" || len(fields) == 0 {
		return fields, hidden
	}
	cache := h.infoCache[key]
	if cache == nil {
		cache = make(map[string]string)
		h.infoCache[key] = cache
	}
	if level > slog.LevelInfo {
		for _, field := range fields {
			cache[field.label] = field.value
		}
		return fields, hidden
	}
	kept := fields[:0]
	for _, field := range fields {
		if prev, ok := cache[field.label]; ok && prev == field.value {
			continue
		}
		cache[field.label] = field.value
		kept = append(kept, field)
	}
	return kept, hidden
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *prettyHandler) clone() *prettyHandler {
	clone := &prettyHandler{
		writer:    h.writer,
		level:     h.level,
		addSource: h.addSource,
		infoCache: h.infoCache,
	}
	clone.attrs = append(clone.attrs, h.attrs...)
	clone.groups = append(clone.groups, h.groups...)
	return clone
}

type kv struct {
	key   string
	value slog.Value
}

// collapseDuplicateKeys keeps the last value seen for each key while
// preserving first-seen ordering.
func collapseDuplicateKeys(attrs []kv) []kv {
	if len(attrs) < 2 {
		return attrs
	}
	positions := make(map[string]int, len(attrs))
	out := make([]kv, 0, len(attrs))
	for _, attr := range attrs {
		if attr.key == "" {
			continue
		}
		if pos, ok := positions[attr.key]; ok {
			out[pos].value = attr.value
			continue
		}
		positions[attr.key] = len(out)
		out = append(out, attr)
	}
	return out
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

// flattenAttr resolves attr and appends it to dst, expanding groups into
// dot-joined keys.
func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append(make([]string, 0, len(prefix)+1), prefix...), attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		if key != "" {
			key = strings.Join(prefix, ".") + "." + key
		} else {
			key = strings.Join(prefix, ".")
		}
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
