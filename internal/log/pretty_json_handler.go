package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

type PrettyJSONHandlerOptions struct {
	slog.HandlerOptions
	PrettyPrint bool
}

// NewPrettyJSONHandler returns a JSON handler that indents every record when PrettyPrint is set.
// Meant for reading logs in a terminal during local development.
func NewPrettyJSONHandler(w io.Writer, opts *PrettyJSONHandlerOptions) slog.Handler {
	if opts == nil {
		opts = &PrettyJSONHandlerOptions{}
	}
	if !opts.PrettyPrint {
		return slog.NewJSONHandler(w, &opts.HandlerOptions)
	}

	state := &prettyState{writer: w}
	return &prettyHandler{
		state: state,
		inner: slog.NewJSONHandler(&state.buf, &opts.HandlerOptions),
	}
}

// prettyState is shared by a handler and every handler derived from it through WithAttrs and
// WithGroup so that they all write through the same buffer and writer.
type prettyState struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	writer io.Writer
}

type prettyHandler struct {
	state *prettyState
	inner slog.Handler
}

func (h *prettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *prettyHandler) Handle(ctx context.Context, r slog.Record) error {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	h.state.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, h.state.buf.Bytes(), "", "  "); err != nil {
		// write the record as is rather than losing it
		_, err := h.state.writer.Write(h.state.buf.Bytes())
		return err
	}

	_, err := h.state.writer.Write(indented.Bytes())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyHandler{state: h.state, inner: h.inner.WithAttrs(attrs)}
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	return &prettyHandler{state: h.state, inner: h.inner.WithGroup(name)}
}
