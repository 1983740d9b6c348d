package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/domain/attachment"
	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"github.com/pawdiary/pawdiary/internal/domain/editor"
	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/domain/photo"
	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/pawdiary/pawdiary/internal/domain/weight"
	"github.com/pawdiary/pawdiary/internal/transport"
)

// Handler dispatches JSON-RPC methods to domain services.
type Handler struct {
	svc    Services
	logger *slog.Logger
}

// NewHandler creates a new method handler.
func NewHandler(svc Services) *Handler {
	logger := svc.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{svc: svc, logger: logger}
}

// Handle dispatches a request. sessionID is the editor session named by the
// request header; editor methods fall back to it when params omit session_id.
func (h *Handler) Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	ctx = transport.WithTenant(ctx, tenantID)
	result, err := h.dispatch(ctx, tenantID, sessionID, method, params)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (h *Handler) dispatch(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	switch method {
	// Templates and validation
	case "list_templates":
		var req ListTemplatesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.listTemplates(req)
	case "get_template":
		var req GetTemplateParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Templates.Lookup(req.ID)
	case "validate_block":
		var req ValidateBlockParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.validateBlock(req)

	// Editor sessions
	case "open_editor":
		var req OpenEditorParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.openEditor(ctx, tenantID, req)
	case "quick_log":
		var req QuickLogParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.quickLog(ctx, tenantID, req)
	case "editor_view":
		var req EditorParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		s, err := h.editorSession(tenantID, sessionID, req.SessionID)
		if err != nil {
			return nil, err
		}
		return editorResponse(ctx, s), nil
	case "editor_select_template":
		var req SelectTemplateParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		s, err := h.editorSession(tenantID, sessionID, req.SessionID)
		if err != nil {
			return nil, err
		}
		if err := s.SelectTemplate(ctx, req.TemplateID); err != nil {
			return nil, err
		}
		return editorResponse(ctx, s), nil
	case "editor_set_field":
		var req SetFieldParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		s, err := h.editorSession(tenantID, sessionID, req.SessionID)
		if err != nil {
			return nil, err
		}
		if err := s.SetField(req.Field, req.Value); err != nil {
			return nil, err
		}
		return editorResponse(ctx, s), nil
	case "editor_set_block":
		var req SetBlockParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		s, err := h.editorSession(tenantID, sessionID, req.SessionID)
		if err != nil {
			return nil, err
		}
		if err := s.SetBlock(req.BlockID, req.Value); err != nil {
			return nil, err
		}
		return editorResponse(ctx, s), nil
	case "editor_next_step":
		s, err := h.editorFromParams(tenantID, sessionID, params)
		if err != nil {
			return nil, err
		}
		errs, err := s.NextStep()
		if err != nil {
			if errors.Is(err, editor.ErrStepInvalid) {
				return nil, formErrors(err, errs)
			}
			return nil, err
		}
		return editorResponse(ctx, s), nil
	case "editor_prev_step":
		s, err := h.editorFromParams(tenantID, sessionID, params)
		if err != nil {
			return nil, err
		}
		if err := s.PrevStep(); err != nil {
			return nil, err
		}
		return editorResponse(ctx, s), nil
	case "editor_interact":
		s, err := h.editorFromParams(tenantID, sessionID, params)
		if err != nil {
			return nil, err
		}
		s.Interact()
		return editorResponse(ctx, s), nil
	case "editor_submit":
		s, err := h.editorFromParams(tenantID, sessionID, params)
		if err != nil {
			return nil, err
		}
		errs, err := s.Submit(ctx)
		if err != nil {
			if errors.Is(err, form.ErrInvalid) {
				return nil, formErrors(err, errs)
			}
			return nil, err
		}
		return editorResponse(ctx, s), nil
	case "editor_discard":
		s, err := h.editorFromParams(tenantID, sessionID, params)
		if err != nil {
			return nil, err
		}
		if err := s.Discard(ctx); err != nil {
			return nil, err
		}
		return editorResponse(ctx, s), nil
	case "editor_close":
		s, err := h.editorFromParams(tenantID, sessionID, params)
		if err != nil {
			return nil, err
		}
		if err := s.FlushDraft(ctx); err != nil {
			h.logger.Warn("failed to flush draft on close", "session", s.ID(), "error", err)
		}
		if err := h.svc.Editors.Close(s.ID()); err != nil {
			return nil, err
		}
		return OKResponse{OK: true}, nil

	// Memory
	case "get_brand_suggestions":
		var req BrandSuggestionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.requirePet(ctx, tenantID, req.PetID); err != nil {
			return nil, err
		}
		return h.svc.Brands.Suggestions(ctx, req.PetID, req.Category, req.Query, req.Limit)
	case "record_brand_usage":
		var req RecordBrandParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.requirePet(ctx, tenantID, req.PetID); err != nil {
			return nil, err
		}
		if err := h.svc.Brands.RecordUsage(ctx, req.PetID, req.Category, req.Brand, req.Product); err != nil {
			return nil, err
		}
		return OKResponse{OK: true}, nil
	case "get_recent_templates":
		var req RecentTemplatesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.requirePet(ctx, tenantID, req.PetID); err != nil {
			return nil, err
		}
		return h.svc.Recent.List(ctx, req.PetID, req.Limit)

	// Drafts
	case "load_draft":
		var req DraftParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.requirePet(ctx, tenantID, req.PetID); err != nil {
			return nil, err
		}
		return h.svc.Drafts.Load(ctx, req.context())
	case "clear_draft":
		var req DraftParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.requirePet(ctx, tenantID, req.PetID); err != nil {
			return nil, err
		}
		if err := h.svc.Drafts.Clear(ctx, req.context()); err != nil {
			return nil, err
		}
		return OKResponse{OK: true}, nil
	case "list_drafts":
		var req ListDraftsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.requirePet(ctx, tenantID, req.PetID); err != nil {
			return nil, err
		}
		return h.svc.Drafts.List(ctx, req.PetID)
	case "sweep_drafts":
		var req SweepDraftsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		maxAge := h.svc.DraftMaxAge
		if req.MaxAge != "" {
			d, err := time.ParseDuration(req.MaxAge)
			if err != nil || d <= 0 {
				return nil, fmt.Errorf("%w: max_age must be a positive duration", ErrInvalidParams)
			}
			maxAge = d
		}
		// kv_store keys carry no tenant, so sweep pet by pet.
		pets, err := h.svc.Pets.List(ctx, tenantID, pet.ListOptions{IncludeArchived: true})
		if err != nil {
			return nil, err
		}
		removed := 0
		for _, p := range pets {
			n, err := h.svc.Drafts.SweepPet(ctx, p.ID, maxAge)
			if err != nil {
				return nil, err
			}
			removed += n
		}
		return SweepResponse{Removed: removed}, nil

	// Pets
	case "create_pet":
		var req pet.CreateRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Pets.Create(ctx, tenantID, req)
	case "list_pets":
		var req ListPetsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Pets.List(ctx, tenantID, pet.ListOptions{IncludeArchived: req.IncludeArchived})
	case "get_pet":
		var req PetIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Pets.Get(ctx, tenantID, req.ID)
	case "update_pet":
		var req UpdatePetParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Pets.Update(ctx, tenantID, req.ID, req.UpdateRequest)
	case "archive_pet":
		var req PetIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Pets.Archive(ctx, tenantID, req.ID)
	case "delete_pet":
		var req PetIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		p, err := h.svc.Pets.Get(ctx, tenantID, req.ID)
		if err != nil {
			return nil, err
		}
		var files []attachment.Attachment
		if h.svc.Attachments != nil {
			files, err = h.svc.Attachments.ListForPet(ctx, tenantID, req.ID)
			if err != nil {
				return nil, err
			}
		}
		if err := h.svc.Pets.Delete(ctx, tenantID, req.ID); err != nil {
			return nil, err
		}
		h.forgetPet(ctx, req.ID)
		h.removePetFiles(tenantID, p, files)
		return OKResponse{OK: true}, nil
	case "reorder_pets":
		var req ReorderPetsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.svc.Pets.Reorder(ctx, tenantID, req.IDs); err != nil {
			return nil, err
		}
		return h.svc.Pets.List(ctx, tenantID, pet.ListOptions{IncludeArchived: true})

	// Activities
	case "save_activity":
		var req SaveActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Activities.Save(ctx, tenantID, req.ID, req.Data)
	case "get_activity":
		var req ActivityIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Activities.Get(ctx, tenantID, req.ID)
	case "delete_activity":
		var req ActivityIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		files := h.attachmentsOf(ctx, tenantID, req.ID)
		if err := h.svc.Activities.Delete(ctx, tenantID, req.ID); err != nil {
			return nil, err
		}
		if h.svc.Attachments != nil {
			h.svc.Attachments.RemoveFiles(tenantID, files)
		}
		return OKResponse{OK: true}, nil
	case "list_activities":
		var req ListActivitiesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts, err := req.options()
		if err != nil {
			return nil, err
		}
		return h.svc.Activities.List(ctx, tenantID, opts)
	case "search_activities":
		var req SearchActivitiesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Activities.Search(ctx, tenantID, req.Query, activity.SearchOptions{
			PetID:  req.PetID,
			Limit:  req.Limit,
			Offset: req.Offset,
		})
	case "export_activities":
		var req ExportActivitiesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.PetID != nil {
			if err := h.requirePet(ctx, tenantID, *req.PetID); err != nil {
				return nil, err
			}
		}
		return h.svc.Activities.Export(ctx, tenantID, req.PetID)
	case "weight_trend":
		var req WeightTrendParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.requirePet(ctx, tenantID, req.PetID); err != nil {
			return nil, err
		}
		return h.svc.Weight.Trend(ctx, tenantID, weight.Options{
			PetID: req.PetID,
			From:  req.From,
			To:    req.To,
			Unit:  req.Unit,
		})

	// Attachments
	case "upload_activity_attachment":
		if h.svc.Attachments == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		var req attachment.UploadRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Attachments.Upload(ctx, tenantID, req)
	case "get_activity_attachments":
		if h.svc.Attachments == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		var req ActivityAttachmentsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Attachments.List(ctx, tenantID, req.ActivityID)
	case "get_activity_attachment":
		if h.svc.Attachments == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		var req AttachmentIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Attachments.Get(ctx, tenantID, req.ID)
	case "delete_activity_attachment":
		if h.svc.Attachments == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		var req AttachmentIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.svc.Attachments.Delete(ctx, tenantID, req.ID); err != nil {
			return nil, err
		}
		return OKResponse{OK: true}, nil

	// Photos
	case "upload_pet_photo":
		if h.svc.Photos == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		var req UploadPhotoParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id, err := h.svc.Photos.Upload(tenantID, req.Filename, req.PhotoBytes)
		if err != nil {
			return nil, err
		}
		return PhotoResponse{PhotoID: id}, nil
	case "delete_pet_photo":
		if h.svc.Photos == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		var req PhotoIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.svc.Photos.Delete(tenantID, req.PhotoID); err != nil {
			return nil, err
		}
		return OKResponse{OK: true}, nil
	case "get_pet_photo_info":
		if h.svc.Photos == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		var req PhotoIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Photos.Info(tenantID, req.PhotoID)
	case "list_pet_photos":
		if h.svc.Photos == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		return h.svc.Photos.List(tenantID)
	case "get_photo_storage_stats":
		if h.svc.Photos == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		return h.svc.Photos.Stats(tenantID)
	case "get_app_statistics":
		return h.appStatistics(ctx, tenantID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// appStatistics counts the tenant's pets, activities and stored files.
func (h *Handler) appStatistics(ctx context.Context, tenantID string) (*AppStatistics, error) {
	pets, err := h.svc.Pets.List(ctx, tenantID, pet.ListOptions{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	st := &AppStatistics{TotalPets: len(pets)}
	for _, p := range pets {
		if p.IsArchived {
			st.ArchivedPets++
		} else {
			st.ActivePets++
		}
	}
	page, err := h.svc.Activities.List(ctx, tenantID, activity.ListOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	st.TotalActivities = page.Total
	if h.svc.Attachments != nil {
		if st.TotalAttachments, err = h.svc.Attachments.Count(ctx, tenantID); err != nil {
			return nil, err
		}
	}
	if h.svc.Photos != nil {
		ps, err := h.svc.Photos.Stats(tenantID)
		if err != nil {
			return nil, err
		}
		st.TotalPhotos = ps.PhotoCount
		st.TotalPhotoSize = ps.TotalSize
	}
	return st, nil
}

// attachmentsOf lists an activity's attachments so their files can be
// removed once the delete cascades. Errors leave the files in place.
func (h *Handler) attachmentsOf(ctx context.Context, tenantID string, activityID int64) []attachment.Attachment {
	if h.svc.Attachments == nil {
		return nil
	}
	list, err := h.svc.Attachments.List(ctx, tenantID, activityID)
	if err != nil {
		return nil
	}
	return list
}

// removePetFiles deletes the attachment files and profile photo of a deleted pet.
func (h *Handler) removePetFiles(tenantID string, p *pet.Pet, files []attachment.Attachment) {
	if h.svc.Attachments != nil {
		h.svc.Attachments.RemoveFiles(tenantID, files)
	}
	if h.svc.Photos == nil || p.PhotoPath == nil || *p.PhotoPath == "" {
		return
	}
	// photo_path may name a file this store never held.
	err := h.svc.Photos.Delete(tenantID, *p.PhotoPath)
	if err != nil && !errors.Is(err, photo.ErrPhotoNotFound) && !errors.Is(err, photo.ErrInvalidInput) {
		h.logger.Warn("failed to delete pet photo", "pet", p.ID, "photo", *p.PhotoPath, "error", err)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

func (h *Handler) listTemplates(req ListTemplatesParams) ([]TemplateSummary, error) {
	var list []template.ActivityTemplate
	switch {
	case req.Category != "":
		c, ok := template.ParseCategory(req.Category)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidParams, req.Category)
		}
		list = h.svc.Templates.ByCategory(c)
	case req.QuickLog:
		list = h.svc.Templates.QuickLog()
	default:
		list = h.svc.Templates.All()
	}

	out := make([]TemplateSummary, 0, len(list))
	for _, t := range list {
		if req.QuickLog && !t.IsQuickLogEnabled {
			continue
		}
		out = append(out, TemplateSummary{
			ID:                t.ID,
			Category:          t.Category,
			Subcategory:       t.Subcategory,
			Label:             t.Label,
			Icon:              t.Icon,
			IsQuickLogEnabled: t.IsQuickLogEnabled,
			BlockCount:        len(t.Blocks),
		})
	}
	return out, nil
}

func (h *Handler) validateBlock(req ValidateBlockParams) (any, error) {
	if req.TemplateID != "" {
		tpl, err := h.svc.Templates.Lookup(req.TemplateID)
		if err != nil {
			return nil, err
		}
		def, ok := tpl.Block(req.BlockID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", editor.ErrUnknownBlock, req.BlockID)
		}
		return h.svc.Validator.ValidateBlock(def, req.Value), nil
	}
	bt := template.BlockType(req.Type)
	if !bt.Known() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidParams, req.Type)
	}
	return h.svc.Validator.SafeParse(bt, req.Value), nil
}

func (h *Handler) openEditor(ctx context.Context, tenantID string, req OpenEditorParams) (*EditorResponse, error) {
	if err := h.requirePet(ctx, tenantID, req.PetID); err != nil {
		return nil, err
	}
	if req.Query != "" {
		values, err := url.ParseQuery(req.Query)
		if err != nil {
			h.logger.Warn("ignoring malformed editor query", "query", req.Query, "error", err)
		} else {
			q := editor.ParseQuery(values, h.svc.Templates, h.logger)
			if req.TemplateID == "" {
				req.TemplateID = q.TemplateID
			}
			if req.Shell == "" {
				req.Shell = q.Shell
			}
		}
	}
	initial := req.Initial
	if req.ActivityID != nil && initial == nil {
		a, err := h.svc.Activities.Get(ctx, tenantID, *req.ActivityID)
		if err != nil {
			return nil, err
		}
		if a.PetID != req.PetID {
			return nil, activity.ErrActivityNotFound
		}
		data := a.FormData()
		initial = &data
	}

	s, err := h.svc.Editors.Open(ctx, editor.OpenOptions{
		Shell:      req.Shell,
		PetID:      req.PetID,
		ActivityID: req.ActivityID,
		TemplateID: req.TemplateID,
		Initial:    initial,
		Owner:      tenantID,
	})
	if err != nil {
		return nil, err
	}
	return editorResponse(ctx, s), nil
}

// quickLog opens a quick-log editor, fills it and submits. The time block
// defaults to now. A failed submit discards the session and its draft.
func (h *Handler) quickLog(ctx context.Context, tenantID string, req QuickLogParams) (*EditorResponse, error) {
	if req.TemplateID == "" {
		return nil, fmt.Errorf("%w: template_id is required", ErrInvalidParams)
	}
	opened, err := h.openEditor(ctx, tenantID, OpenEditorParams{
		Shell:      editor.ShellQuick,
		PetID:      req.PetID,
		TemplateID: req.TemplateID,
	})
	if err != nil {
		return nil, err
	}
	s, err := h.svc.Editors.GetOwned(opened.Session.ID, tenantID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = h.svc.Editors.Close(s.ID())
	}()

	if err := h.fillQuickLog(s, req); err != nil {
		h.discard(ctx, s)
		return nil, err
	}
	errs, err := s.Submit(ctx)
	if err != nil {
		h.discard(ctx, s)
		if errors.Is(err, form.ErrInvalid) {
			return nil, formErrors(err, errs)
		}
		return nil, err
	}
	return editorResponse(ctx, s), nil
}

func (h *Handler) fillQuickLog(s *editor.Session, req QuickLogParams) error {
	if req.Title != "" {
		if err := s.SetField(editor.FieldTitle, mustJSON(req.Title)); err != nil {
			return err
		}
	}
	if req.Description != "" {
		if err := s.SetField(editor.FieldDescription, mustJSON(req.Description)); err != nil {
			return err
		}
	}
	for id, v := range req.Blocks {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: block %s: %v", ErrInvalidParams, id, err)
		}
		if err := s.SetBlock(id, raw); err != nil {
			return err
		}
	}

	tpl, err := h.svc.Templates.Lookup(req.TemplateID)
	if err != nil {
		return err
	}
	def, ok := tpl.Block("time")
	if _, given := req.Blocks["time"]; !ok || given {
		return nil
	}
	mode := template.TimeModeDateTime
	if cfg, ok := def.Config.(*template.TimeConfig); ok && cfg != nil && cfg.Mode != "" {
		mode = cfg.Mode
	}
	v := h.svc.Validator
	return s.SetBlock(def.ID, mustJSON(block.FormatLocal(v.Now(), mode, v.Location())))
}

func (h *Handler) discard(ctx context.Context, s *editor.Session) {
	if err := s.Discard(ctx); err != nil {
		h.logger.Warn("failed to discard quick log", "session", s.ID(), "error", err)
	}
}

func mustJSON(v string) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}

func (h *Handler) editorSession(tenantID, headerID, paramID string) (*editor.Session, error) {
	id := paramID
	if id == "" {
		id = headerID
	}
	if id == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrInvalidParams)
	}
	return h.svc.Editors.GetOwned(id, tenantID)
}

func (h *Handler) editorFromParams(tenantID, headerID string, params json.RawMessage) (*editor.Session, error) {
	var req EditorParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.editorSession(tenantID, headerID, req.SessionID)
}

func editorResponse(ctx context.Context, s *editor.Session) *EditorResponse {
	return &EditorResponse{Session: s.View(ctx)}
}

// requirePet scopes pet-keyed local storage to the caller's pets.
func (h *Handler) requirePet(ctx context.Context, tenantID string, petID int64) error {
	if petID <= 0 {
		return fmt.Errorf("%w: pet_id is required", ErrInvalidParams)
	}
	_, err := h.svc.Pets.Get(ctx, tenantID, petID)
	return err
}

// forgetPet drops remembered brands and templates of a deleted pet.
func (h *Handler) forgetPet(ctx context.Context, petID int64) {
	if h.svc.Brands != nil {
		if err := h.svc.Brands.ClearPet(ctx, petID); err != nil {
			h.logger.Warn("failed to clear brand memory", "pet", petID, "error", err)
		}
	}
	if h.svc.Recent != nil {
		if err := h.svc.Recent.ClearPet(ctx, petID); err != nil {
			h.logger.Warn("failed to clear recent templates", "pet", petID, "error", err)
		}
	}
	if h.svc.Drafts != nil {
		if err := h.svc.Drafts.ClearPet(ctx, petID); err != nil {
			h.logger.Warn("failed to clear drafts", "pet", petID, "error", err)
		}
	}
}

func (p DraftParams) context() draft.Context {
	return draft.Context{
		PetID:      p.PetID,
		ActivityID: p.ActivityID,
		Mode:       p.Mode,
		TemplateID: p.TemplateID,
	}
}

func (p ListActivitiesParams) options() (activity.ListOptions, error) {
	opts := activity.ListOptions{
		PetID:  p.PetID,
		From:   p.From,
		To:     p.To,
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	for _, raw := range p.Categories {
		c, ok := template.ParseCategory(raw)
		if !ok {
			return activity.ListOptions{}, fmt.Errorf("%w: unknown category %q", ErrInvalidParams, raw)
		}
		opts.Categories = append(opts.Categories, c)
	}
	return opts, nil
}
