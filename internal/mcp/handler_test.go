package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/domain/attachment"
	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"github.com/pawdiary/pawdiary/internal/domain/editor"
	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/memory"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/domain/photo"
	"github.com/pawdiary/pawdiary/internal/domain/render"
	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/pawdiary/pawdiary/internal/domain/weight"
	"github.com/pawdiary/pawdiary/internal/storage"
	"github.com/pawdiary/pawdiary/internal/transport"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// petStub owns pet 1 for tenant1, pet 2 for tenant2 and pet 3 for the
// default tenant.
type petStub struct {
	deleted []int64
	photos  map[int64]string
}

func (p *petStub) owner(id int64) string {
	switch id {
	case 1:
		return "tenant1"
	case 2:
		return "tenant2"
	case 3:
		return transport.DefaultTenant
	}
	return ""
}

func (p *petStub) Create(_ context.Context, _ string, req pet.CreateRequest) (*pet.Pet, error) {
	return &pet.Pet{ID: 9, Name: req.Name}, nil
}
func (p *petStub) Get(_ context.Context, tenantID string, id int64) (*pet.Pet, error) {
	if p.owner(id) != tenantID {
		return nil, pet.ErrPetNotFound
	}
	p2 := &pet.Pet{ID: id, TenantID: tenantID, Name: "Miso"}
	if name, ok := p.photos[id]; ok {
		p2.PhotoPath = &name
	}
	return p2, nil
}
func (p *petStub) List(_ context.Context, tenantID string, _ pet.ListOptions) ([]pet.Pet, error) {
	var out []pet.Pet
	for id := int64(1); id <= 3; id++ {
		if p.owner(id) == tenantID {
			out = append(out, pet.Pet{ID: id, TenantID: tenantID, Name: "Miso"})
		}
	}
	return out, nil
}
func (p *petStub) Update(_ context.Context, _ string, id int64, req pet.UpdateRequest) (*pet.Pet, error) {
	return &pet.Pet{ID: id, Name: *req.Name}, nil
}
func (p *petStub) Archive(_ context.Context, _ string, id int64) (*pet.Pet, error) {
	return &pet.Pet{ID: id, IsArchived: true}, nil
}
func (p *petStub) Delete(_ context.Context, tenantID string, id int64) error {
	if p.owner(id) != tenantID {
		return pet.ErrPetNotFound
	}
	p.deleted = append(p.deleted, id)
	return nil
}
func (p *petStub) Reorder(context.Context, string, []int64) error { return nil }

type savedActivity struct {
	tenantID string
	id       *int64
	data     form.ActivityFormData
}

type activityStub struct {
	mu      sync.Mutex
	saved   []savedActivity
	saveErr error
	stored  map[int64]*activity.Activity
	listFn  func(activity.ListOptions) (*activity.Page, error)
}

func (a *activityStub) Save(_ context.Context, tenantID string, id *int64, data form.ActivityFormData) (*activity.Activity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, savedActivity{tenantID: tenantID, id: id, data: data})
	if a.saveErr != nil {
		return nil, a.saveErr
	}
	return &activity.Activity{ID: 100, TenantID: tenantID, PetID: data.PetID, Title: data.Title}, nil
}
func (a *activityStub) Get(_ context.Context, tenantID string, id int64) (*activity.Activity, error) {
	if act, ok := a.stored[id]; ok && (act.TenantID == "" || act.TenantID == tenantID) {
		return act, nil
	}
	return nil, activity.ErrActivityNotFound
}
func (a *activityStub) Delete(_ context.Context, _ string, id int64) error {
	delete(a.stored, id)
	return nil
}
func (a *activityStub) List(_ context.Context, _ string, opts activity.ListOptions) (*activity.Page, error) {
	if a.listFn != nil {
		return a.listFn(opts)
	}
	return &activity.Page{Activities: []activity.Activity{}}, nil
}
func (a *activityStub) Search(_ context.Context, _, query string, _ activity.SearchOptions) (*activity.Page, error) {
	if query == "" {
		return nil, activity.ErrInvalidInput
	}
	return &activity.Page{Activities: []activity.Activity{}}, nil
}
func (a *activityStub) Export(_ context.Context, _ string, petID *int64) (*activity.Export, error) {
	return &activity.Export{PetID: petID}, nil
}

func (a *activityStub) savedCalls() []savedActivity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]savedActivity(nil), a.saved...)
}

type weightStub struct{}

func (weightStub) Trend(_ context.Context, _ string, opts weight.Options) (*weight.Trend, error) {
	return &weight.Trend{PetID: opts.PetID, Unit: "kg", Points: []weight.Point{}}, nil
}

type fixture struct {
	h          *Handler
	pets       *petStub
	activities *activityStub
	brands     *memory.BrandMemory
	recent     *memory.RecentTemplates
	drafts     *draft.Service
	editors    *editor.Manager
	store      *storage.MemoryStore
	files      *storage.FileStore
	photoFiles *storage.FileStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	v, err := block.NewValidator(
		block.WithClock(func() time.Time { return fixedNow }),
		block.WithLocation(time.UTC),
	)
	require.NoError(t, err)

	now := func() time.Time { return fixedNow }
	store := storage.NewMemoryStore()
	brands := memory.NewBrandMemory(store, memory.Options{Now: now}, nil)
	recent := memory.NewRecentTemplates(store, memory.Options{Now: now}, nil)
	drafts := draft.NewService(store, now, nil)
	pets := &petStub{}
	activities := &activityStub{stored: map[int64]*activity.Activity{}}
	templates := template.Default()

	editors := editor.NewManager(editor.Deps{
		Templates:     templates,
		Renderer:      render.NewRegistry(v, brands, nil),
		Drafts:        drafts,
		Brands:        brands,
		Recent:        recent,
		Saver:         NewActivitySaver(activities),
		AutosaveDelay: time.Hour,
		BrandDelay:    time.Hour,
	}, time.Hour)
	t.Cleanup(editors.CloseAll)

	files := storage.NewFileStore(t.TempDir())
	photoFiles := storage.NewFileStore(t.TempDir())

	h := NewHandler(Services{
		Templates:   templates,
		Validator:   v,
		Editors:     editors,
		Brands:      brands,
		Recent:      recent,
		Drafts:      drafts,
		Pets:        pets,
		Activities:  activities,
		Weight:      weightStub{},
		Attachments: attachment.NewService(newAttachmentRepoStub(activities), activities, files, nil),
		Photos:      photo.NewService(photoFiles, nil),
	})
	return &fixture{
		h:          h,
		pets:       pets,
		activities: activities,
		brands:     brands,
		recent:     recent,
		drafts:     drafts,
		editors:    editors,
		store:      store,
		files:      files,
		photoFiles: photoFiles,
	}
}

func (f *fixture) call(t *testing.T, tenantID, method string, params any) (any, error) {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return f.h.Handle(context.Background(), tenantID, "", method, raw)
}

func requireCode(t *testing.T, err error, code string) *APIError {
	t.Helper()
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

func openEditor(t *testing.T, f *fixture, tenantID string, params OpenEditorParams) editor.SessionView {
	t.Helper()
	res, err := f.call(t, tenantID, "open_editor", params)
	require.NoError(t, err)
	return res.(*EditorResponse).Session
}

func TestHandler_UnknownMethod(t *testing.T) {
	f := newFixture(t)
	_, err := f.call(t, "tenant1", "list_projects", nil)
	requireCode(t, err, "METHOD_NOT_FOUND")
}

func TestHandler_InvalidParams(t *testing.T) {
	f := newFixture(t)
	_, err := f.h.Handle(context.Background(), "tenant1", "", "get_pet", json.RawMessage(`{"id":"one"}`))
	requireCode(t, err, "INVALID_PARAMS")
}

func TestHandler_ListTemplates(t *testing.T) {
	f := newFixture(t)

	res, err := f.call(t, "tenant1", "list_templates", ListTemplatesParams{QuickLog: true})
	require.NoError(t, err)
	quick := res.([]TemplateSummary)
	require.NotEmpty(t, quick)
	for _, tpl := range quick {
		require.True(t, tpl.IsQuickLogEnabled, tpl.ID)
	}

	res, err = f.call(t, "tenant1", "list_templates", ListTemplatesParams{Category: "diet"})
	require.NoError(t, err)
	for _, tpl := range res.([]TemplateSummary) {
		require.Equal(t, template.CategoryDiet, tpl.Category)
	}

	_, err = f.call(t, "tenant1", "list_templates", ListTemplatesParams{Category: "chores"})
	requireCode(t, err, "INVALID_PARAMS")

	_, err = f.call(t, "tenant1", "get_template", GetTemplateParams{ID: "diet.nope"})
	requireCode(t, err, "TEMPLATE_NOT_FOUND")
}

func TestHandler_ValidateBlock(t *testing.T) {
	f := newFixture(t)

	res, err := f.call(t, "tenant1", "validate_block", ValidateBlockParams{
		TemplateID: "growth.weight",
		BlockID:    "weight",
		Value:      json.RawMessage(`{"value":4.2,"unit":"kg"}`),
	})
	require.NoError(t, err)
	require.True(t, res.(block.Result).Success)

	res, err = f.call(t, "tenant1", "validate_block", ValidateBlockParams{
		TemplateID: "growth.weight",
		BlockID:    "weight",
		Value:      json.RawMessage(`{"value":4.2,"unit":"stone"}`),
	})
	require.NoError(t, err)
	require.False(t, res.(block.Result).Success)

	_, err = f.call(t, "tenant1", "validate_block", ValidateBlockParams{
		TemplateID: "growth.weight",
		BlockID:    "portion",
		Value:      json.RawMessage(`{}`),
	})
	requireCode(t, err, "UNKNOWN_BLOCK")

	_, err = f.call(t, "tenant1", "validate_block", ValidateBlockParams{Type: "hologram", Value: json.RawMessage(`1`)})
	requireCode(t, err, "INVALID_PARAMS")
}

func TestHandler_EditorSubmit(t *testing.T) {
	f := newFixture(t)

	view := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1, TemplateID: "diet.feeding", Shell: editor.ShellQuick})
	require.Equal(t, editor.StateEditing, view.State)
	require.Equal(t, "Feeding", view.Data.Title)

	_, err := f.call(t, "tenant1", "editor_set_block", SetBlockParams{
		SessionID: view.ID,
		BlockID:   "time",
		Value:     json.RawMessage(`"2024-06-15T08:30"`),
	})
	require.NoError(t, err)
	_, err = f.call(t, "tenant1", "editor_set_block", SetBlockParams{
		SessionID: view.ID,
		BlockID:   "portion",
		Value:     json.RawMessage(`{"amount":80,"unit":"g","brand":"Acme"}`),
	})
	require.NoError(t, err)

	res, err := f.call(t, "tenant1", "editor_submit", EditorParams{SessionID: view.ID})
	require.NoError(t, err)
	require.Equal(t, editor.StateDone, res.(*EditorResponse).Session.State)

	saved := f.activities.savedCalls()
	require.Len(t, saved, 1)
	require.Equal(t, "tenant1", saved[0].tenantID)
	require.Equal(t, "diet.feeding", saved[0].data.TemplateID)
	require.Equal(t, time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC), saved[0].data.ActivityDate.UTC())

	recent, err := f.call(t, "tenant1", "get_recent_templates", RecentTemplatesParams{PetID: 1})
	require.NoError(t, err)
	require.Len(t, recent.([]memory.RecentTemplate), 1)

	// Brand memory is flushed on submit.
	brands, err := f.call(t, "tenant1", "get_brand_suggestions", BrandSuggestionsParams{PetID: 1, Category: template.BrandFood})
	require.NoError(t, err)
	require.Len(t, brands.([]memory.BrandSuggestion), 1)
}

func TestHandler_EditorSubmitInvalid(t *testing.T) {
	f := newFixture(t)
	view := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1, TemplateID: "diet.feeding"})

	_, err := f.call(t, "tenant1", "editor_submit", EditorParams{SessionID: view.ID})
	apiErr := requireCode(t, err, "FORM_INVALID")
	errs := apiErr.Details.(form.Errors)
	require.Contains(t, errs, "portion")
	require.Empty(t, f.activities.savedCalls())

	res, err := f.call(t, "tenant1", "editor_view", EditorParams{SessionID: view.ID})
	require.NoError(t, err)
	require.Equal(t, editor.StateEditing, res.(*EditorResponse).Session.State)
	require.NotEmpty(t, res.(*EditorResponse).Session.Errors)
}

func TestHandler_EditorSaveFailure(t *testing.T) {
	f := newFixture(t)
	f.activities.saveErr = errors.New("disk full")
	view := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1, TemplateID: "growth.weight"})

	for id, v := range map[string]string{"time": `"2024-06-15T07:00"`, "weight": `{"value":4.2,"unit":"kg"}`} {
		_, err := f.call(t, "tenant1", "editor_set_block", SetBlockParams{SessionID: view.ID, BlockID: id, Value: json.RawMessage(v)})
		require.NoError(t, err)
	}

	_, err := f.call(t, "tenant1", "editor_submit", EditorParams{SessionID: view.ID})
	requireCode(t, err, "SAVE_FAILED")

	res, err := f.call(t, "tenant1", "editor_view", EditorParams{SessionID: view.ID})
	require.NoError(t, err)
	got := res.(*EditorResponse).Session
	require.Equal(t, editor.StateEditing, got.State)
	require.Contains(t, got.LastSubmitError, "disk full")
}

func TestHandler_EditorSessionHeader(t *testing.T) {
	f := newFixture(t)
	view := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1})
	require.Equal(t, editor.StateSelectingTemplate, view.State)
	require.NotEmpty(t, view.Templates)

	res, err := f.h.Handle(context.Background(), "tenant1", view.ID, "editor_select_template",
		json.RawMessage(`{"template_id":"lifestyle.walk"}`))
	require.NoError(t, err)
	require.Equal(t, "lifestyle.walk", res.(*EditorResponse).Session.TemplateID)

	_, err = f.call(t, "tenant1", "editor_view", EditorParams{})
	requireCode(t, err, "INVALID_PARAMS")
}

func TestHandler_EditorOwnership(t *testing.T) {
	f := newFixture(t)
	view := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1, TemplateID: "diet.feeding"})

	_, err := f.call(t, "tenant2", "editor_view", EditorParams{SessionID: view.ID})
	requireCode(t, err, "EDITOR_SESSION_NOT_FOUND")

	_, err = f.call(t, "tenant2", "open_editor", OpenEditorParams{PetID: 1})
	requireCode(t, err, "PET_NOT_FOUND")
}

func TestHandler_EditorWizard(t *testing.T) {
	f := newFixture(t)
	view := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1, Query: "template=health.vet-visit&mode=guided&utm=x"})
	require.Equal(t, editor.ShellGuided, view.Shell)
	require.NotNil(t, view.Wizard)
	require.Equal(t, 0, view.Wizard.Current)

	// Step one holds the empty required time block.
	_, err := f.call(t, "tenant1", "editor_next_step", EditorParams{SessionID: view.ID})
	requireCode(t, err, "STEP_INVALID")

	_, err = f.call(t, "tenant1", "editor_set_block", SetBlockParams{SessionID: view.ID, BlockID: "time", Value: json.RawMessage(`"2024-06-14T10:00"`)})
	require.NoError(t, err)
	res, err := f.call(t, "tenant1", "editor_next_step", EditorParams{SessionID: view.ID})
	require.NoError(t, err)
	require.Equal(t, 1, res.(*EditorResponse).Session.Wizard.Current)

	res, err = f.call(t, "tenant1", "editor_prev_step", EditorParams{SessionID: view.ID})
	require.NoError(t, err)
	require.Equal(t, 0, res.(*EditorResponse).Session.Wizard.Current)
}

func TestHandler_EditorInteractNudge(t *testing.T) {
	f := newFixture(t)
	view := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1, Shell: editor.ShellQuick, TemplateID: "diet.treat"})

	var last editor.SessionView
	for i := 0; i < 4; i++ {
		res, err := f.call(t, "tenant1", "editor_interact", EditorParams{SessionID: view.ID})
		require.NoError(t, err)
		last = res.(*EditorResponse).Session
	}
	require.True(t, last.QuickNudge)
}

func TestHandler_EditorCloseKeepsDraft(t *testing.T) {
	f := newFixture(t)
	view := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1, TemplateID: "diet.feeding"})
	for id, v := range map[string]string{"time": `"2024-06-15T18:00"`, "portion": `{"amount":120,"unit":"g"}`} {
		_, err := f.call(t, "tenant1", "editor_set_block", SetBlockParams{SessionID: view.ID, BlockID: id, Value: json.RawMessage(v)})
		require.NoError(t, err)
	}
	// Autosave only schedules once the form is valid.
	_, err := f.call(t, "tenant1", "editor_set_field", SetFieldParams{SessionID: view.ID, Field: "title", Value: json.RawMessage(`"Dinner"`)})
	require.NoError(t, err)

	_, err = f.call(t, "tenant1", "editor_close", EditorParams{SessionID: view.ID})
	require.NoError(t, err)
	require.Equal(t, 0, f.editors.Len())

	res, err := f.call(t, "tenant1", "load_draft", DraftParams{PetID: 1, Mode: editor.ShellPage, TemplateID: "diet.feeding"})
	require.NoError(t, err)
	d := res.(*draft.Draft)
	require.NotNil(t, d)
	require.Equal(t, "Dinner", d.Data.Title)

	reopened := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1, TemplateID: "diet.feeding"})
	require.True(t, reopened.Resumed)
	require.Equal(t, "Dinner", reopened.Data.Title)

	_, err = f.call(t, "tenant1", "editor_discard", EditorParams{SessionID: reopened.ID})
	require.NoError(t, err)
	res, err = f.call(t, "tenant1", "load_draft", DraftParams{PetID: 1, Mode: editor.ShellPage, TemplateID: "diet.feeding"})
	require.NoError(t, err)
	require.Nil(t, res.(*draft.Draft))
}

func TestHandler_OpenEditorForActivity(t *testing.T) {
	f := newFixture(t)
	id := int64(55)
	f.activities.stored[id] = &activity.Activity{
		ID:           id,
		PetID:        1,
		Category:     template.CategoryGrowth,
		Subcategory:  "Weight",
		TemplateID:   "growth.weight",
		Title:        "Monthly weigh-in",
		ActivityDate: fixedNow.Add(-time.Hour),
		Blocks:       map[string]json.RawMessage{"weight": json.RawMessage(`{"value":4,"unit":"kg"}`)},
	}

	view := openEditor(t, f, "tenant1", OpenEditorParams{PetID: 1, ActivityID: &id})
	require.Equal(t, editor.StateEditing, view.State)
	require.Equal(t, "Monthly weigh-in", view.Data.Title)
	require.JSONEq(t, `{"value":4,"unit":"kg"}`, string(view.Data.Blocks["weight"]))

	_, err := f.call(t, "tenant1", "open_editor", OpenEditorParams{PetID: 1, ActivityID: int64Ptr(56)})
	requireCode(t, err, "ACTIVITY_NOT_FOUND")
}

func TestHandler_QuickLog(t *testing.T) {
	f := newFixture(t)

	res, err := f.call(t, "tenant1", "quick_log", QuickLogParams{
		PetID:      1,
		TemplateID: "growth.weight",
		Blocks:     map[string]any{"weight": map[string]any{"value": 4.5, "unit": "kg"}},
	})
	require.NoError(t, err)
	require.Equal(t, editor.StateDone, res.(*EditorResponse).Session.State)
	require.Equal(t, 0, f.editors.Len())

	saved := f.activities.savedCalls()
	require.Len(t, saved, 1)
	require.Equal(t, "Weight", saved[0].data.Title)
	require.Equal(t, fixedNow, saved[0].data.ActivityDate.UTC())
	require.Contains(t, saved[0].data.Blocks, "time")

	_, err = f.call(t, "tenant1", "quick_log", QuickLogParams{PetID: 1, TemplateID: "health.vet-visit"})
	requireCode(t, err, "NOT_QUICK_LOGGABLE")

	_, err = f.call(t, "tenant1", "quick_log", QuickLogParams{PetID: 1, TemplateID: "growth.weight"})
	requireCode(t, err, "FORM_INVALID")
	require.Equal(t, 0, f.editors.Len())
	d, err := f.drafts.Load(context.Background(), draft.Context{PetID: 1, Mode: editor.ShellQuick, TemplateID: "growth.weight"})
	require.NoError(t, err)
	require.Nil(t, d)
}

func TestHandler_PetScopedMemory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.brands.RecordUsage(context.Background(), 2, template.BrandFood, "Acme", ""))

	_, err := f.call(t, "tenant1", "get_brand_suggestions", BrandSuggestionsParams{PetID: 2, Category: template.BrandFood})
	requireCode(t, err, "PET_NOT_FOUND")

	_, err = f.call(t, "tenant1", "record_brand_usage", RecordBrandParams{PetID: 2, Category: template.BrandFood, Brand: "Acme"})
	requireCode(t, err, "PET_NOT_FOUND")

	_, err = f.call(t, "tenant1", "get_recent_templates", RecentTemplatesParams{})
	requireCode(t, err, "INVALID_PARAMS")
}

func TestHandler_DeletePetForgetsMemory(t *testing.T) {
	f := newFixture(t)
	_, err := f.call(t, "tenant1", "record_brand_usage", RecordBrandParams{PetID: 1, Category: template.BrandTreats, Brand: "Chewy"})
	require.NoError(t, err)
	_, err = f.drafts.Save(context.Background(), draft.Context{PetID: 1, Mode: draft.ModePage}, form.New(1))
	require.NoError(t, err)

	_, err = f.call(t, "tenant1", "delete_pet", PetIDParams{ID: 1})
	require.NoError(t, err)
	require.Equal(t, []int64{1}, f.pets.deleted)

	got, err := f.brands.Suggestions(context.Background(), 1, template.BrandTreats, "", 10)
	require.NoError(t, err)
	require.Empty(t, got)

	drafts, err := f.drafts.List(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, drafts)
}

func TestHandler_SweepDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// Drafts saved two days before the fixture clock.
	stale := draft.NewService(f.store, func() time.Time { return fixedNow.Add(-48 * time.Hour) }, nil)
	for _, petID := range []int64{1, 2} {
		_, err := stale.Save(ctx, draft.Context{PetID: petID, Mode: draft.ModePage}, form.New(petID))
		require.NoError(t, err)
	}
	_, err := f.drafts.Save(ctx, draft.Context{PetID: 1, Mode: draft.ModeQuick}, form.New(1))
	require.NoError(t, err)

	_, err = f.call(t, "tenant1", "sweep_drafts", SweepDraftsParams{MaxAge: "soon"})
	requireCode(t, err, "INVALID_PARAMS")

	res, err := f.call(t, "tenant1", "sweep_drafts", SweepDraftsParams{})
	require.NoError(t, err)
	require.Equal(t, SweepResponse{Removed: 1}, res)

	mine, err := f.drafts.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, draft.ModeQuick, mine[0].Metadata.Mode)

	// Another tenant's pet keeps its stale draft.
	theirs, err := f.drafts.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
}

func TestHandler_Activities(t *testing.T) {
	f := newFixture(t)
	var got activity.ListOptions
	f.activities.listFn = func(opts activity.ListOptions) (*activity.Page, error) {
		got = opts
		return &activity.Page{Activities: []activity.Activity{}}, nil
	}

	_, err := f.h.Handle(context.Background(), "tenant1", "", "list_activities",
		json.RawMessage(`{"pet_id":1,"categories":["diet","health"],"from":"2024-01-01T00:00:00Z","limit":5}`))
	require.NoError(t, err)
	require.Equal(t, int64(1), *got.PetID)
	require.Equal(t, []template.Category{template.CategoryDiet, template.CategoryHealth}, got.Categories)
	require.Equal(t, 5, got.Limit)
	require.Equal(t, 2024, got.From.Year())

	_, err = f.call(t, "tenant1", "list_activities", ListActivitiesParams{Categories: []string{"chores"}})
	requireCode(t, err, "INVALID_PARAMS")

	_, err = f.call(t, "tenant1", "search_activities", SearchActivitiesParams{})
	requireCode(t, err, "INVALID_INPUT")

	_, err = f.call(t, "tenant1", "export_activities", ExportActivitiesParams{PetID: int64Ptr(2)})
	requireCode(t, err, "PET_NOT_FOUND")

	res, err := f.call(t, "tenant1", "weight_trend", WeightTrendParams{PetID: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.(*weight.Trend).PetID)
}

func TestActivitySaver_RequiresTenant(t *testing.T) {
	s := NewActivitySaver(&activityStub{})
	err := s.SaveActivity(context.Background(), nil, form.New(1))
	require.ErrorIs(t, err, ErrNoTenant)

	ctx := transport.WithTenant(context.Background(), "tenant1")
	require.NoError(t, s.SaveActivity(ctx, nil, form.New(1)))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{pet.ErrPetNotFound, "PET_NOT_FOUND"},
		{activity.ErrPetNotFound, "PET_NOT_FOUND"},
		{&activity.ValidationError{Errors: form.Errors{}}, "VALIDATION_FAILED"},
		{activity.ErrInvalidInput, "INVALID_INPUT"},
		{draft.ErrInvalidContext, "INVALID_INPUT"},
		{editor.ErrInvalidState, "INVALID_STATE"},
		{attachment.ErrAttachmentNotFound, "ATTACHMENT_NOT_FOUND"},
		{attachment.ErrInvalidInput, "INVALID_INPUT"},
		{photo.ErrPhotoNotFound, "PHOTO_NOT_FOUND"},
		{photo.ErrInvalidInput, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		got := MapError(tt.err)
		require.NotNil(t, got, tt.err)
		require.Equal(t, tt.code, got.Code)
	}
	require.Nil(t, MapError(errors.New("boom")))
	require.Nil(t, MapError(nil))
}

func int64Ptr(v int64) *int64 {
	return &v
}
