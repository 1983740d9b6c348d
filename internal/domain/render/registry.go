package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/memory"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// BrandSuggester supplies remembered brands for portion blocks.
type BrandSuggester interface {
	Suggestions(ctx context.Context, petID int64, category template.BrandCategory, query string, limit int) ([]memory.BrandSuggestion, error)
}

// Input is what a renderer sees for one block.
type Input struct {
	Def   template.BlockDef
	Value json.RawMessage
	PetID int64
	Now   time.Time
	Loc   *time.Location
}

// Renderer builds the widget model for one block type.
type Renderer interface {
	Render(ctx context.Context, in Input) (any, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, in Input) (any, error)

func (f RendererFunc) Render(ctx context.Context, in Input) (any, error) {
	return f(ctx, in)
}

// Factory creates a renderer on first use.
type Factory func() (Renderer, error)

type slot struct {
	mu      sync.Mutex
	factory Factory
	r       Renderer
}

// get instantiates the renderer once. A failed instantiation is retried on the next call.
func (s *slot) get() (Renderer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.r != nil {
		return s.r, nil
	}
	r, err := s.factory()
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("factory returned no renderer")
	}
	s.r = r
	return r, nil
}

// Registry dispatches block types to renderers and isolates their failures.
type Registry struct {
	validator *block.Validator
	brands    BrandSuggester
	logger    *slog.Logger

	mu    sync.RWMutex
	slots map[template.BlockType]*slot
}

// NewRegistry creates a Registry with a renderer for every block type.
// brands may be nil, in which case portion blocks carry no suggestions.
func NewRegistry(v *block.Validator, brands BrandSuggester, logger *slog.Logger) *Registry {
	if v == nil {
		v = block.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Registry{
		validator: v,
		brands:    brands,
		logger:    logger,
		slots:     make(map[template.BlockType]*slot),
	}
	for bt, f := range r.builtin() {
		r.Register(bt, f)
	}
	return r
}

// Register installs or replaces the factory for a block type.
func (r *Registry) Register(bt template.BlockType, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[bt] = &slot{factory: f}
}

// Unregister removes a block type; its blocks render as unsupported.
func (r *Registry) Unregister(bt template.BlockType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, bt)
}

// Validator returns the validator used for block values.
func (r *Registry) Validator() *block.Validator {
	return r.validator
}

// Options tune one render pass.
type Options struct {
	PetID int64
	// ShowErrors exposes messages; Invalid is computed either way.
	ShowErrors bool
}

// RenderBlock renders one block. It never panics and never returns an error:
// unknown types and failing renderers come back as fallback views.
func (r *Registry) RenderBlock(ctx context.Context, def template.BlockDef, value json.RawMessage, opts Options) BlockView {
	view := BlockView{
		BlockID:  def.ID,
		Type:     def.Type,
		Label:    def.Label,
		Required: def.Required,
		Value:    value,
	}

	res := r.validator.ValidateBlock(def, value)
	if !res.Success {
		view.Invalid = true
		view.RequiredHint = def.Required && block.IsEmpty(value)
		if opts.ShowErrors {
			view.Errors = res.Errors
		}
	}

	r.mu.RLock()
	s, ok := r.slots[def.Type]
	r.mu.RUnlock()
	if !ok {
		view.Status = StatusUnsupported
		view.Fallback = fmt.Sprintf("%s: %s", MsgUnsupported, def.Type)
		return view
	}

	widget, err := r.safeRender(ctx, s, Input{
		Def:   def,
		Value: value,
		PetID: opts.PetID,
		Now:   r.validator.Now(),
		Loc:   r.validator.Location(),
	})
	if err != nil {
		r.logger.Warn("block render failed", "block", def.ID, "type", def.Type, "error", err)
		view.Status = StatusFailed
		view.Fallback = MsgFailed
		view.Retryable = true
		return view
	}

	view.Status = StatusReady
	view.Widget = widget
	return view
}

func (r *Registry) safeRender(ctx context.Context, s *slot, in Input) (widget any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Debug("renderer panic", "block", in.Def.ID, "stack", string(debug.Stack()))
			err = fmt.Errorf("renderer panic: %v", rec)
		}
	}()
	rd, err := s.get()
	if err != nil {
		return nil, fmt.Errorf("instantiating renderer: %w", err)
	}
	return rd.Render(ctx, in)
}

// RenderForm renders every block in order. One block failing does not affect its siblings.
func (r *Registry) RenderForm(ctx context.Context, blocks []template.BlockDef, values map[string]json.RawMessage, opts Options) FormView {
	fv := FormView{Blocks: make([]BlockView, 0, len(blocks))}
	for _, def := range blocks {
		bv := r.RenderBlock(ctx, def, values[def.ID], opts)
		if bv.Invalid {
			fv.Invalid = true
		}
		if bv.Status == StatusFailed {
			fv.Failed = append(fv.Failed, def.ID)
		}
		fv.Blocks = append(fv.Blocks, bv)
	}
	return fv
}
