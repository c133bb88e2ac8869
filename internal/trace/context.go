package trace

import "context"

type ctxKey struct{}

// FromContext extracts the Tracer from ctx, Nop if there is none.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext is what nested spans inherit: the parent span and the input
// being checked.
type SpanContext struct {
	SpanID uint64
	Path   string
}

type spanCtxKey struct{}

// CurrentSpan retrieves the active span context, zero if none.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	if sc, ok := ctx.Value(spanCtxKey{}).(SpanContext); ok {
		return sc
	}
	return SpanContext{}
}

// WithSpanContext attaches span context.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanCtxKey{}, sc)
}

// WithPath records the input being checked; spans started from the returned
// context report it.
func WithPath(ctx context.Context, path string) context.Context {
	sc := CurrentSpan(ctx)
	sc.Path = path
	return WithSpanContext(ctx, sc)
}

// Start begins a span under the tracer and span found in ctx and returns a
// context in which it is the parent. Nothing is allocated in the context when
// the span is filtered out by level.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	parent := CurrentSpan(ctx)
	span := Begin(FromContext(ctx), scope, name, parent)
	if span.id == 0 {
		return span, ctx
	}
	return span, WithSpanContext(ctx, SpanContext{SpanID: span.id, Path: parent.Path})
}

// Point emits an instant event under the span found in ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	parent := CurrentSpan(ctx)
	t.Emit(&Event{
		Time:     now(),
		Kind:     KindPoint,
		Scope:    scope,
		SpanID:   NextSpanID(),
		ParentID: parent.SpanID,
		GID:      getGoroutineID(),
		Name:     name,
		Detail:   detail,
		Attrs:    Attrs{Path: parent.Path},
	})
}
