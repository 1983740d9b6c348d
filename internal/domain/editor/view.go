package editor

import (
	"context"
	"sort"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/render"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// SessionView is what a shell displays. Which of Blocks, Wizard and Tabs is
// set depends on the shell.
type SessionView struct {
	ID         string                `json:"id"`
	Shell      Shell                 `json:"shell"`
	State      State                 `json:"state"`
	Busy       bool                  `json:"busy"`
	TemplateID string                `json:"templateId,omitempty"`
	Data       form.ActivityFormData `json:"data"`
	Dirty      bool                  `json:"dirty"`
	Valid      bool                  `json:"valid"`
	Errors     form.Errors           `json:"errors,omitempty"`

	// Templates lists the choices while selecting a template.
	Templates []template.ActivityTemplate `json:"templates,omitempty"`

	Blocks []render.BlockView `json:"blocks,omitempty"`
	Wizard *WizardView        `json:"wizard,omitempty"`
	Tabs   []TabView          `json:"tabs,omitempty"`

	Interactions int  `json:"interactions,omitempty"`
	QuickNudge   bool `json:"quickNudge,omitempty"`
	WouldDiscard bool `json:"wouldDiscard,omitempty"`

	Resumed         bool        `json:"resumed"`
	LastSaved       *time.Time  `json:"lastSaved,omitempty"`
	DraftState      draft.State `json:"draftState"`
	AutosavePending bool        `json:"autosavePending"`
	LastSubmitError string      `json:"lastSubmitError,omitempty"`
}

// WizardView is the guided shell's step state.
type WizardView struct {
	Steps     []Step             `json:"steps"`
	Current   int                `json:"current"`
	Completed []int              `json:"completed"`
	IsLast    bool               `json:"isLast"`
	Blocks    []render.BlockView `json:"blocks"`
}

// TabView is one tab of the advanced shell.
type TabView struct {
	Tab
	Invalid bool               `json:"invalid"`
	Blocks  []render.BlockView `json:"blocks"`
}

// View renders the session for its shell.
func (s *Session) View(ctx context.Context) SessionView {
	s.mu.Lock()
	v := SessionView{
		ID:              s.id,
		Shell:           s.shell,
		State:           s.state,
		Busy:            s.state == StateSubmitting,
		Data:            s.data.Clone(),
		Dirty:           s.dirty,
		Resumed:         s.resumed,
		LastSubmitError: s.lastErr,
		Interactions:    s.interactions,
		QuickNudge:      s.nudgeLocked(),
	}
	if s.lastSaved != nil {
		t := *s.lastSaved
		v.LastSaved = &t
	}
	errs := s.checkLocked()
	v.Valid = errs.Empty()
	if s.showErrors && !v.Valid {
		v.Errors = errs
	}
	if s.shell == ShellModal {
		v.WouldDiscard = s.dirty && s.state == StateEditing
	}

	var tpl *template.ActivityTemplate
	if s.tpl != nil {
		t := *s.tpl
		tpl = &t
		v.TemplateID = t.ID
	}
	var wiz *WizardView
	var stepBlocks []template.BlockDef
	if s.wiz != nil && tpl != nil {
		wiz = &WizardView{
			Steps:   s.wiz.steps,
			Current: s.wiz.current,
			IsLast:  s.wiz.last(),
		}
		for i := range s.wiz.completed {
			wiz.Completed = append(wiz.Completed, i)
		}
		sort.Ints(wiz.Completed)
		stepBlocks = s.stepBlocksLocked()
	}
	opts := render.Options{PetID: s.petID, ShowErrors: s.showErrors}
	ctxDraft := s.autosave.Context()
	s.mu.Unlock()

	v.DraftState = s.deps.Drafts.State(ctxDraft)
	v.AutosavePending = s.autosave.Pending()

	if v.State == StateSelectingTemplate {
		if s.shell == ShellQuick {
			v.Templates = s.deps.Templates.QuickLog()
		} else {
			v.Templates = s.deps.Templates.All()
		}
		return v
	}
	if tpl == nil {
		return v
	}

	values := v.Data.Blocks
	switch s.shell {
	case ShellGuided:
		if wiz != nil {
			wiz.Blocks = s.deps.Renderer.RenderForm(ctx, stepBlocks, values, opts).Blocks
			v.Wizard = wiz
		}
	case ShellAdvanced:
		for _, g := range groupTabs(tpl.Blocks) {
			fv := s.deps.Renderer.RenderForm(ctx, g.blocks, values, opts)
			v.Tabs = append(v.Tabs, TabView{Tab: g.tab, Invalid: fv.Invalid, Blocks: fv.Blocks})
		}
	case ShellQuick:
		v.Blocks = s.deps.Renderer.RenderForm(ctx, tpl.RequiredBlocks(), values, opts).Blocks
	default:
		v.Blocks = s.deps.Renderer.RenderForm(ctx, tpl.Blocks, values, opts).Blocks
	}
	return v
}
