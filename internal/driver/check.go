package driver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"voltaire/internal/diag"
	"voltaire/internal/diagfmt"
	"voltaire/internal/fix"
	"voltaire/internal/observ"
	"voltaire/internal/provider"
	"voltaire/internal/source"
	"voltaire/internal/trace"
)

// Options configures a Checker.
type Options struct {
	// Request carries language, level and disabled rules; its Text is ignored.
	Request        provider.Request
	Endpoint       string // часть ключа кэша
	Account        string // тоже часть ключа: ответы зависят от тарифа
	Units          provider.OffsetUnits
	MaxSuggestions int
	Rules          fix.RuleSet
	Render         diagfmt.RenderOptions
	Formatter      diagfmt.Formatter
	Timer          *observ.Timer // может быть nil
}

// Result is the outcome of checking one input.
type Result struct {
	Path  string
	Input *source.Input

	Raw              int // записей в ответе провайдера
	Dropped          int // отброшено нормализатором
	Annotations      []diag.Annotation
	Overlay          diagfmt.Overlay
	Cache            CacheTier
	DetectedLanguage string
	Warnings         []string
}

// HasIssues reports whether any annotation survived resolution.
func (r *Result) HasIssues() bool {
	return r != nil && len(r.Annotations) > 0
}

// Checker runs the pipeline fetch → normalize → resolve → render.
// It is safe for concurrent use when its provider is.
type Checker struct {
	provider provider.Provider
	cache    *ResponseCache
	opts     Options
}

// NewChecker creates a checker. cache may be nil.
func NewChecker(p provider.Provider, cache *ResponseCache, opts Options) *Checker {
	if opts.MaxSuggestions == 0 {
		opts.MaxSuggestions = diag.DefaultMaxSuggestions
	}
	if opts.Formatter == nil {
		opts.Formatter = diagfmt.PlainFormatter{}
	}
	return &Checker{provider: p, cache: cache, opts: opts}
}

// Check runs the whole pipeline on in.
func (c *Checker) Check(ctx context.Context, in *source.Input) (*Result, error) {
	return c.check(ctx, in, nopSink{})
}

func (c *Checker) check(ctx context.Context, in *source.Input, sink ProgressSink) (*Result, error) {
	span, ctx := trace.Start(trace.WithPath(ctx, in.Path), trace.ScopeDriver, "check")

	buf := in.Buffer
	res := &Result{Path: in.Path, Input: in}

	stageCtx, done := c.enterStage(ctx, sink, in.Path, StageFetch)
	raws, err := c.fetch(stageCtx, buf, res)
	if err != nil {
		done(err.Error())
		span.End(err.Error())
		return nil, err
	}
	done(fmt.Sprintf("%d records, cache %s", len(raws), res.Cache))

	stageCtx, done = c.enterStage(ctx, sink, in.Path, StageNormalize)
	anns := c.normalize(stageCtx, buf, raws, res)
	done(fmt.Sprintf("%d kept, %d dropped", len(anns), res.Dropped))

	_, done = c.enterStage(ctx, sink, in.Path, StageResolve)
	res.Annotations = fix.Resolve(buf, anns, c.opts.Rules)
	done(fmt.Sprintf("%d → %d", len(anns), len(res.Annotations)))

	_, done = c.enterStage(ctx, sink, in.Path, StageRender)
	res.Overlay = diagfmt.Render(buf, res.Annotations, c.opts.Render, c.opts.Formatter)
	done(strconv.Itoa(len(res.Overlay.Explanations)) + " explanation lines")

	span.Cache(res.Cache.String()).Counts(res.Raw, len(res.Annotations)).End("")
	return res, nil
}

// enterStage opens a trace span and a timer phase for one pipeline step and
// reports it as working. The returned func closes both with note.
func (c *Checker) enterStage(ctx context.Context, sink ProgressSink, file string, stage Stage) (context.Context, func(note string)) {
	sink.OnEvent(Event{File: file, Stage: stage, Status: StatusWorking})
	span, ctx := trace.Start(ctx, trace.ScopeStage, string(stage))
	idx := c.opts.Timer.Begin(string(stage))
	return ctx, func(note string) {
		c.opts.Timer.End(idx, note)
		span.End(note)
	}
}

func (c *Checker) fetch(ctx context.Context, buf *source.Buffer, res *Result) ([]diag.RawIssue, error) {
	if strings.TrimSpace(buf.Text()) == "" {
		return nil, nil
	}
	req := c.opts.Request
	req.Text = buf.Text()
	key := RequestDigest(c.opts.Endpoint, c.opts.Account, c.opts.Units, req)

	lookup, _ := trace.Start(ctx, trace.ScopeRequest, "cache.get")
	body, tier, err := c.cache.Get(key)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("ignoring cache entry: %v", err))
	}
	lookup.Cache(tier.String()).End(key.String()[:12])
	res.Cache = tier

	if tier == CacheMiss {
		body, err = c.provider.Fetch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", res.Path, err)
		}
		if err := c.cache.Put(key, c.opts.Endpoint, req.Normalized().Language, body); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("failed to store response in cache: %v", err))
		}
	}

	raws, err := provider.ParseMatches(body, buf, c.opts.Units)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", res.Path, err)
	}
	res.Raw = len(raws)
	res.DetectedLanguage = provider.DetectedLanguage(body)
	return raws, nil
}

func (c *Checker) normalize(ctx context.Context, buf *source.Buffer, raws []diag.RawIssue, res *Result) []diag.Annotation {
	anns := make([]diag.Annotation, 0, len(raws))
	for i, raw := range raws {
		a, ok := diag.NormalizeOne(buf, raw, c.opts.MaxSuggestions)
		if !ok {
			res.Dropped++
			trace.Point(ctx, trace.ScopeIssue, "normalize.drop", "record "+strconv.Itoa(i)+" "+raw.RuleID)
			continue
		}
		anns = append(anns, a)
	}
	return anns
}
