package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEvent represents a structured log line published to the streaming hub.
type LogEvent struct {
	Sequence      uint64            `json:"seq"`
	Timestamp     time.Time         `json:"ts"`
	Level         string            `json:"level"`
	Message       string            `json:"msg"`
	Component     string            `json:"component,omitempty"`
	GenerationID  int64             `json:"generation_id,omitempty"`
	Variant       string            `json:"variant,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	Details       []DetailField     `json:"details,omitempty"`
}

// DetailField mirrors the console handler's info bullet lines.
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LogEventSink receives published log events (for persistence, etc.).
type LogEventSink interface {
	Append(LogEvent)
}

// StreamHub keeps a bounded window of recent log events and wakes waiters
// when new ones arrive. Sequences are contiguous, so the ring always holds
// [FirstSequence, nextSeq].
type StreamHub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	ring     []LogEvent
	nextSeq  uint64
	sinks    []LogEventSink
}

// NewStreamHub constructs a bounded in-memory log fan-out buffer.
func NewStreamHub(capacity int) *StreamHub {
	if capacity <= 0 {
		capacity = 512
	}
	h := &StreamHub{capacity: capacity}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// AddSink wires an additional sink that receives every published event.
func (h *StreamHub) AddSink(sink LogEventSink) {
	if h == nil || sink == nil {
		return
	}
	h.mu.Lock()
	h.sinks = append(h.sinks, sink)
	h.mu.Unlock()
}

// Publish stamps the next sequence on evt, appends it to the ring, and wakes
// waiters. Sinks run outside the lock so a slow sink cannot stall logging.
func (h *StreamHub) Publish(evt LogEvent) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(h.ring) == h.capacity {
		copy(h.ring, h.ring[1:])
		h.ring = h.ring[:h.capacity-1]
	}
	h.ring = append(h.ring, evt)
	sinks := append([]LogEventSink(nil), h.sinks...)
	h.cond.Broadcast()
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Append(evt)
	}
}

// Fetch returns buffered events with sequence greater than since. When wait is
// true and nothing qualifies yet, Fetch blocks until an event arrives or the
// context ends.
func (h *StreamHub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]LogEvent, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	// cond.Wait cannot observe context cancellation, so a helper goroutine
	// broadcasts when the context ends.
	stop := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.cond.Broadcast()
			case <-stop:
			}
		}()
	}
	defer close(stop)

	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		events, next := h.collectLocked(since, limit)
		if len(events) > 0 || !wait {
			return events, next, contextError(ctx)
		}
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
		h.cond.Wait()
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
	}
}

// Tail returns the most recent limit events without blocking.
func (h *StreamHub) Tail(limit int) ([]LogEvent, uint64) {
	if h == nil {
		return nil, 0
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.ring) == 0 {
		return nil, h.nextSeq
	}
	start := len(h.ring) - limit
	if start < 0 {
		start = 0
	}
	out := make([]LogEvent, len(h.ring)-start)
	copy(out, h.ring[start:])
	return out, h.nextSeq
}

// FirstSequence reports the smallest sequence number still buffered.
func (h *StreamHub) FirstSequence() uint64 {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.ring) == 0 {
		return h.nextSeq
	}
	return h.ring[0].Sequence
}

func (h *StreamHub) collectLocked(since uint64, limit int) ([]LogEvent, uint64) {
	if len(h.ring) == 0 {
		return nil, h.nextSeq
	}
	first := h.ring[0].Sequence
	var start int
	if since >= first {
		start = int(since - first + 1)
	}
	if start >= len(h.ring) {
		return nil, h.nextSeq
	}
	end := start + limit
	if end > len(h.ring) {
		end = len(h.ring)
	}
	out := make([]LogEvent, end-start)
	copy(out, h.ring[start:end])
	return out, h.nextSeq
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

// streamHandler publishes every record to the hub before delegating to the
// wrapped handler. Attrs accumulated through With calls are carried along so
// events keep their generation and variant tags.
type streamHandler struct {
	next  slog.Handler
	hub   *StreamHub
	attrs []slog.Attr
}

func newStreamHandler(next slog.Handler, hub *StreamHub) slog.Handler {
	if hub == nil || next == nil {
		return next
	}
	return &streamHandler{next: next, hub: hub}
}

func (h *streamHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *streamHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.hub != nil {
		h.hub.Publish(buildEvent(record, h.attrs))
	}
	return h.next.Handle(ctx, record.Clone())
}

func (h *streamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	combined = append(combined, h.attrs...)
	combined = append(combined, attrs...)
	return &streamHandler{next: h.next.WithAttrs(attrs), hub: h.hub, attrs: combined}
}

func (h *streamHandler) WithGroup(name string) slog.Handler {
	return &streamHandler{next: h.next.WithGroup(name), hub: h.hub}
}

// absorb routes one attribute into the event's typed slots, or the generic
// Fields map for anything unrecognized. Later calls override earlier ones, so
// call-site attrs win over pre-accumulated ones.
func (e *LogEvent) absorb(attr slog.Attr) {
	key := strings.TrimSpace(attr.Key)
	if key == "" {
		return
	}
	switch key {
	case FieldGenerationID:
		e.GenerationID = attr.Value.Int64()
	case FieldVariant:
		e.Variant = attrString(attr.Value)
	case FieldCorrelationID:
		e.CorrelationID = attrString(attr.Value)
	case FieldComponent:
		e.Component = attrString(attr.Value)
	default:
		if e.Fields == nil {
			e.Fields = make(map[string]string)
		}
		e.Fields[key] = attrString(attr.Value)
	}
}

func buildEvent(record slog.Record, preAttrs []slog.Attr) LogEvent {
	event := LogEvent{
		Timestamp: record.Time,
		Level:     strings.ToUpper(record.Level.String()),
		Message:   strings.TrimSpace(record.Message),
	}

	for _, attr := range preAttrs {
		event.absorb(attr)
	}

	var attrs []kv
	record.Attrs(func(attr slog.Attr) bool {
		event.absorb(attr)
		if key := strings.TrimSpace(attr.Key); key != "" {
			attrs = append(attrs, kv{key: key, value: attr.Value})
		}
		return true
	})

	if len(attrs) > 0 {
		if info, _ := selectInfoFields(attrs, infoAttrLimit, false); len(info) > 0 {
			event.Details = make([]DetailField, 0, len(info))
			for _, field := range info {
				event.Details = append(event.Details, DetailField{Label: field.label, Value: field.value})
			}
		}
	}

	return event
}
