package trace

import (
	"context"
	"errors"
)

// multiHandler fans out run events to multiple Handler implementations.
// Each handler receives its own isolated context so that, for example,
// two Recorders never see each other's current report.
type multiHandler struct {
	handlers []Handler
}

// Multi creates a Handler that forwards all events to the given handlers.
// Nil handlers are skipped.
func Multi(handlers ...Handler) Handler {
	hs := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return &multiHandler{handlers: hs}
}

// multiCtxKey is the context key for per-handler contexts.
type multiCtxKey struct{}

// getContexts retrieves per-handler contexts from the context.
// If not found, returns the base context for each handler.
func (m *multiHandler) getContexts(ctx context.Context) []context.Context {
	if v, ok := ctx.Value(multiCtxKey{}).([]context.Context); ok && len(v) == len(m.handlers) {
		return v
	}
	ctxs := make([]context.Context, len(m.handlers))
	for i := range ctxs {
		ctxs[i] = ctx
	}
	return ctxs
}

func (m *multiHandler) StartRun(ctx context.Context, info *RunInfo) context.Context {
	handlerCtxs := make([]context.Context, len(m.handlers))
	for i, h := range m.handlers {
		handlerCtxs[i] = h.StartRun(ctx, info)
	}
	return context.WithValue(ctx, multiCtxKey{}, handlerCtxs)
}

func (m *multiHandler) Checkpoint(ctx context.Context, cp *Checkpoint) {
	ctxs := m.getContexts(ctx)
	for i, h := range m.handlers {
		h.Checkpoint(ctxs[i], cp)
	}
}

func (m *multiHandler) EndRun(ctx context.Context, summary *Summary, err error) {
	ctxs := m.getContexts(ctx)
	for i, h := range m.handlers {
		h.EndRun(ctxs[i], summary, err)
	}
}

func (m *multiHandler) Finish(ctx context.Context) error {
	var errs []error
	for _, h := range m.handlers {
		if err := h.Finish(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
