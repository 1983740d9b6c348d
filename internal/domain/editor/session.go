package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/memory"
	"github.com/pawdiary/pawdiary/internal/domain/render"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// DefaultBrandDelay is how long a portion brand must stay unchanged before it is remembered.
const DefaultBrandDelay = time.Second

// Saver persists a submitted form. A nil activityID creates a new activity.
type Saver interface {
	SaveActivity(ctx context.Context, activityID *int64, data form.ActivityFormData) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, activityID *int64, data form.ActivityFormData) error

func (f SaverFunc) SaveActivity(ctx context.Context, activityID *int64, data form.ActivityFormData) error {
	return f(ctx, activityID, data)
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Templates *template.Registry
	Renderer  *render.Registry
	Drafts    *draft.Service
	Brands    *memory.BrandMemory
	Recent    *memory.RecentTemplates
	Saver     Saver
	Logger    *slog.Logger

	AutosaveDelay     time.Duration
	BrandDelay        time.Duration
	WizardStepSize    int
	QuickLogThreshold int
}

func (d Deps) validate() error {
	if d.Templates == nil || d.Renderer == nil || d.Drafts == nil || d.Saver == nil {
		return fmt.Errorf("%w: templates, renderer, drafts and saver are required", ErrInvalidInput)
	}
	return nil
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.BrandDelay <= 0 {
		d.BrandDelay = DefaultBrandDelay
	}
	if d.WizardStepSize <= 0 {
		d.WizardStepSize = DefaultWizardStepSize
	}
	if d.QuickLogThreshold <= 0 {
		d.QuickLogThreshold = DefaultQuickLogThreshold
	}
	return d
}

// OpenOptions describe the editing situation.
type OpenOptions struct {
	Shell      Shell                  `json:"shell"`
	PetID      int64                  `json:"petId"`
	ActivityID *int64                 `json:"activityId,omitempty"`
	TemplateID string                 `json:"templateId,omitempty"`
	Initial    *form.ActivityFormData `json:"initial,omitempty"`
	// Owner is the tenant the session belongs to.
	Owner string `json:"-"`
}

// EventKind names a session notification.
type EventKind string

const (
	EventDraftSaved   EventKind = "draft_saved"
	EventStateChanged EventKind = "state_changed"
)

// Event is pushed to the session listener.
type Event struct {
	Kind      EventKind  `json:"kind"`
	SessionID string     `json:"sessionId"`
	State     State      `json:"state"`
	LastSaved *time.Time `json:"lastSaved,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Session is one editor instance. All shells share its state machine:
// selecting-template, editing, submitting, done. A failed submit returns to editing.
type Session struct {
	id         string
	owner      string
	deps       Deps
	shell      Shell
	petID      int64
	activityID *int64
	validator  *block.Validator
	logger     *slog.Logger

	mu           sync.Mutex
	state        State
	tpl          *template.ActivityTemplate
	data         form.ActivityFormData
	dirty        bool
	showErrors   bool
	lastErr      string
	wiz          *wizard
	interactions int
	resumed      bool
	lastSaved    *time.Time
	autosave     *draft.Autosaver
	brands       *debouncer
	listener     func(Event)
}

// Open starts a session. With no template and no existing activity the
// session waits in selecting-template. A stored draft for the same context
// replaces the initial data.
func Open(ctx context.Context, deps Deps, opts OpenOptions) (*Session, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	deps = deps.withDefaults()

	if opts.Shell == "" {
		opts.Shell = ShellPage
	}
	if !opts.Shell.Valid() {
		return nil, fmt.Errorf("%w: unknown shell %q", ErrInvalidInput, opts.Shell)
	}
	if opts.PetID <= 0 {
		return nil, fmt.Errorf("%w: pet id is required", ErrInvalidInput)
	}

	s := &Session{
		id:         uuid.NewString(),
		owner:      opts.Owner,
		deps:       deps,
		shell:      opts.Shell,
		petID:      opts.PetID,
		activityID: opts.ActivityID,
		validator:  deps.Renderer.Validator(),
		state:      StateSelectingTemplate,
		brands:     newDebouncer(deps.BrandDelay),
	}
	s.logger = deps.Logger.With("session", s.id, "shell", string(opts.Shell))

	if opts.Initial != nil {
		s.data = opts.Initial.Clone()
		if s.data.Blocks == nil {
			s.data.Blocks = map[string]json.RawMessage{}
		}
	} else {
		s.data = form.New(opts.PetID)
	}
	s.data.PetID = opts.PetID

	templateID := opts.TemplateID
	if templateID == "" {
		templateID = s.data.TemplateID
	}
	if templateID != "" {
		tpl, err := deps.Templates.Lookup(templateID)
		if err != nil {
			return nil, err
		}
		if opts.Shell == ShellQuick && !tpl.IsQuickLogEnabled {
			return nil, fmt.Errorf("%w: %s", ErrNotQuickLoggable, tpl.ID)
		}
		s.useTemplate(tpl)
		s.state = StateEditing
	} else if opts.ActivityID != nil {
		s.state = StateEditing
	}

	c := s.draftContext()
	s.autosave = draft.NewAutosaver(deps.Drafts, c, deps.AutosaveDelay, s.onDraftSaved)

	d, err := deps.Drafts.Load(ctx, c)
	if err != nil {
		// Drafts are recoverable; a broken store must not block editing.
		s.logger.Warn("failed to load draft", "key", c.Key(), "error", err)
	}
	if d != nil {
		s.data = d.Data.Clone()
		s.data.PetID = opts.PetID
		s.resumed = true
		saved := d.Metadata.LastSaved
		s.lastSaved = &saved
		s.logger.Debug("draft restored", "key", c.Key())
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Owner returns the tenant the session was opened for.
func (s *Session) Owner() string {
	return s.owner
}

// Shell returns the presentation this session was opened with.
func (s *Session) Shell() Shell {
	return s.shell
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Data returns a copy of the form data.
func (s *Session) Data() form.ActivityFormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// SetListener registers fn for session events. fn runs outside the session lock.
func (s *Session) SetListener(fn func(Event)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	fn := s.listener
	s.mu.Unlock()
	if fn == nil {
		return
	}
	ev.SessionID = s.id
	fn(ev)
}

func (s *Session) useTemplate(tpl template.ActivityTemplate) {
	s.tpl = &tpl
	s.data.ApplyTemplate(tpl)
	if s.shell == ShellGuided {
		s.wiz = newWizard(tpl, s.deps.WizardStepSize)
	}
}

func (s *Session) draftContext() draft.Context {
	c := draft.Context{PetID: s.petID, ActivityID: s.activityID, Mode: s.shell}
	if s.tpl != nil {
		c.TemplateID = s.tpl.ID
	}
	return c
}

func (s *Session) onDraftSaved(d draft.Draft) {
	s.mu.Lock()
	saved := d.Metadata.LastSaved
	s.lastSaved = &saved
	st := s.state
	s.mu.Unlock()

	if st == StateDone {
		// A save that raced a finished submit must not resurrect the draft.
		c := draft.Context{PetID: d.Metadata.PetID, ActivityID: d.Metadata.ActivityID, Mode: d.Metadata.Mode, TemplateID: d.Metadata.TemplateID}
		if err := s.deps.Drafts.Clear(context.Background(), c); err != nil {
			s.logger.Warn("failed to clear late draft", "error", err)
		}
		return
	}
	s.emit(Event{Kind: EventDraftSaved, State: st, LastSaved: &saved})
}

func (s *Session) requireEditing() error {
	if s.state != StateEditing {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}
	return nil
}

// touchLocked marks the form dirty and reschedules autosave. Autosave only
// runs while the form is dirty and valid; otherwise the pending save is dropped.
func (s *Session) touchLocked() {
	s.dirty = true
	if s.shell == ShellQuick {
		s.interactions++
	}
	if s.checkLocked().Empty() {
		s.autosave.Schedule(s.data)
	} else {
		s.autosave.Cancel()
	}
}

func (s *Session) checkLocked() form.Errors {
	if s.tpl == nil {
		return form.ValidateForm(s.data)
	}
	return form.Check(s.validator, s.data, *s.tpl)
}

// SelectTemplate picks or changes the template. Category, subcategory and
// template id follow the new template; entered block values are kept.
func (s *Session) SelectTemplate(ctx context.Context, templateID string) error {
	tpl, err := s.deps.Templates.Lookup(templateID)
	if err != nil {
		return err
	}
	if s.shell == ShellQuick && !tpl.IsQuickLogEnabled {
		return fmt.Errorf("%w: %s", ErrNotQuickLoggable, tpl.ID)
	}

	s.mu.Lock()
	if s.state != StateSelectingTemplate && s.state != StateEditing {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidState, st)
	}
	prev := s.draftContext()
	s.useTemplate(tpl)
	next := s.draftContext()
	s.autosave.SetContext(next)
	changed := s.state != StateEditing
	s.state = StateEditing
	s.touchLocked()
	s.mu.Unlock()

	if prev.Key() != next.Key() {
		if err := s.deps.Drafts.Clear(ctx, prev); err != nil {
			s.logger.Warn("failed to clear previous draft", "key", prev.Key(), "error", err)
		}
	}
	if changed {
		s.emit(Event{Kind: EventStateChanged, State: StateEditing})
	}
	return nil
}

// Form field names accepted by SetField.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldActivityDate = "activityDate"
)

// SetField sets a top-level form field from its JSON value.
func (s *Session) SetField(field string, raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEditing(); err != nil {
		return err
	}

	switch field {
	case FieldTitle:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%w: title must be a string", ErrInvalidInput)
		}
		s.data.Title = v
		if s.tpl != nil {
			if _, ok := s.tpl.Block("title"); ok {
				s.data.SetBlock("title", raw)
			}
		}
	case FieldDescription:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%w: description must be a string", ErrInvalidInput)
		}
		s.data.Description = v
	case FieldActivityDate:
		if block.IsEmpty(raw) {
			s.data.ActivityDate = nil
			break
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%w: activityDate must be a string", ErrInvalidInput)
		}
		t, err := block.ParseLocal(v, s.validator.Location(), s.validator.Now())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		s.data.ActivityDate = &t
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	s.touchLocked()
	return nil
}

// SetBlock binds a value to one of the template's blocks. The value is kept
// even when it fails validation.
func (s *Session) SetBlock(blockID string, raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEditing(); err != nil {
		return err
	}
	if s.tpl == nil {
		return fmt.Errorf("%w: %s", ErrUnknownBlock, blockID)
	}
	def, ok := s.tpl.Block(blockID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBlock, blockID)
	}

	s.data.SetBlock(blockID, raw)
	if def.Type == template.BlockPortion {
		s.rememberBrandLocked(def, raw)
	}
	s.touchLocked()
	return nil
}

// rememberBrandLocked debounces a brand memory write for a portion value.
func (s *Session) rememberBrandLocked(def template.BlockDef, raw json.RawMessage) {
	if s.deps.Brands == nil {
		return
	}
	cfg, ok := def.Config.(*template.PortionConfig)
	if !ok || cfg == nil || !cfg.BrandCategory.Valid() {
		return
	}
	var pv block.PortionValue
	if err := json.Unmarshal(raw, &pv); err != nil || strings.TrimSpace(pv.Brand) == "" {
		s.brands.stop()
		return
	}

	petID, category, brand, product := s.petID, cfg.BrandCategory, pv.Brand, pv.Product
	s.brands.trigger(func() {
		if err := s.deps.Brands.RecordUsage(context.Background(), petID, category, brand, product); err != nil {
			s.logger.Warn("failed to record brand usage", "brand", brand, "error", err)
		}
	})
}

// Interact records a discrete user interaction that does not change data and
// reports whether the quick-log nudge is now showing.
func (s *Session) Interact() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions++
	return s.nudgeLocked()
}

func (s *Session) nudgeLocked() bool {
	return s.shell == ShellQuick && s.interactions > s.deps.QuickLogThreshold
}

// NextStep validates only the current wizard step and advances.
func (s *Session) NextStep() (form.Errors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEditing(); err != nil {
		return nil, err
	}
	if s.wiz == nil {
		return nil, ErrNotWizard
	}
	if s.wiz.last() {
		return nil, fmt.Errorf("%w: already on the last step", ErrInvalidState)
	}

	errs := form.ValidateBlocks(s.validator, s.data, s.stepBlocksLocked())
	if !errs.Empty() {
		s.showErrors = true
		return errs, ErrStepInvalid
	}
	s.wiz.completed[s.wiz.current] = true
	s.wiz.current++
	return nil, nil
}

// PrevStep moves back one step. It is always allowed.
func (s *Session) PrevStep() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEditing(); err != nil {
		return err
	}
	if s.wiz == nil {
		return ErrNotWizard
	}
	if s.wiz.current > 0 {
		s.wiz.current--
	}
	return nil
}

func (s *Session) stepBlocksLocked() []template.BlockDef {
	step := s.wiz.steps[s.wiz.current]
	out := make([]template.BlockDef, 0, len(step.BlockIDs))
	for _, id := range step.BlockIDs {
		if def, ok := s.tpl.Block(id); ok {
			out = append(out, def)
		}
	}
	return out
}

// FlushDraft writes any pending autosave now.
func (s *Session) FlushDraft(ctx context.Context) error {
	return s.autosave.Flush(ctx)
}

// Submit validates the whole form and hands it to the Saver. On success the
// draft is cleared and the session is done. On failure the session returns to
// editing with its data untouched; there is no retry.
func (s *Session) Submit(ctx context.Context) (form.Errors, error) {
	s.mu.Lock()
	if err := s.requireEditing(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if errs := s.checkLocked(); !errs.Empty() {
		s.showErrors = true
		s.mu.Unlock()
		return errs, form.ErrInvalid
	}
	payload := s.payloadLocked()
	tpl := s.tpl
	c := s.autosave.Context()
	s.state = StateSubmitting
	s.lastErr = ""
	s.autosave.Cancel()
	s.mu.Unlock()
	s.emit(Event{Kind: EventStateChanged, State: StateSubmitting})

	if err := s.deps.Saver.SaveActivity(ctx, s.activityID, payload); err != nil {
		s.mu.Lock()
		s.state = StateEditing
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.logger.Error("failed to save activity", "error", err)
		s.emit(Event{Kind: EventStateChanged, State: StateEditing, Error: err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	s.mu.Lock()
	s.state = StateDone
	s.dirty = false
	s.mu.Unlock()
	s.autosave.Close()

	if err := s.deps.Drafts.Clear(ctx, c); err != nil {
		s.logger.Warn("failed to clear draft", "key", c.Key(), "error", err)
	}
	if tpl != nil && s.deps.Recent != nil {
		if err := s.deps.Recent.RecordUsage(ctx, s.petID, *tpl, payload.Title); err != nil {
			s.logger.Warn("failed to record recent template", "template", tpl.ID, "error", err)
		}
	}
	s.brands.flush()

	s.logger.Info("activity submitted", "template", payload.TemplateID)
	s.emit(Event{Kind: EventStateChanged, State: StateDone})
	return nil, nil
}

// payloadLocked builds the submitted form: only the template's blocks, and an
// activity date taken from the time block when one is set.
func (s *Session) payloadLocked() form.ActivityFormData {
	out := s.data.Clone()
	if s.tpl == nil {
		return out
	}
	out.Blocks = make(map[string]json.RawMessage, len(s.tpl.Blocks))
	for _, def := range s.tpl.Blocks {
		raw, ok := s.data.Blocks[def.ID]
		if !ok {
			continue
		}
		out.Blocks[def.ID] = append(json.RawMessage(nil), raw...)
		if def.Type != template.BlockTime || block.IsEmpty(raw) {
			continue
		}
		if res := s.validator.ValidateBlock(def, raw); res.Success {
			if t, ok := res.Data.(time.Time); ok {
				out.ActivityDate = &t
			}
		}
	}
	if out.ActivityDate == nil {
		now := s.validator.Now()
		out.ActivityDate = &now
	}
	return out
}

// Discard drops the draft and ends the session without saving.
func (s *Session) Discard(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}
	s.state = StateDone
	s.dirty = false
	c := s.autosave.Context()
	s.mu.Unlock()

	s.autosave.Close()
	s.brands.stop()
	if err := s.deps.Drafts.Clear(ctx, c); err != nil {
		return err
	}
	s.emit(Event{Kind: EventStateChanged, State: StateDone})
	return nil
}

// Close cancels pending timers. A saved draft is kept for the next session.
func (s *Session) Close() {
	s.autosave.Close()
	s.brands.stop()
}

// IsDone reports whether the session reached the done state.
func (s *Session) IsDone() bool {
	return s.State() == StateDone
}

// LastSubmitError returns the message of the last failed submit, if any.
func (s *Session) LastSubmitError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
