package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool inputs. Times are RFC3339 strings; block values are free-form JSON.

type listTemplatesInput struct {
	Category string `json:"category,omitempty" jsonschema:"health, growth, diet, lifestyle or expense"`
	QuickLog bool   `json:"quick_log,omitempty" jsonschema:"only templates available for quick log"`
}

type getTemplateInput struct {
	ID string `json:"id" jsonschema:"template id such as diet.feeding"`
}

type validateBlockInput struct {
	TemplateID string `json:"template_id,omitempty" jsonschema:"template holding the block"`
	BlockID    string `json:"block_id,omitempty" jsonschema:"block id inside the template"`
	Type       string `json:"type,omitempty" jsonschema:"bare block type, used when no template is given"`
	Value      any    `json:"value" jsonschema:"block value to validate"`
}

type petInput struct {
	PetID int64 `json:"pet_id" jsonschema:"pet id from list_pets"`
}

type createPetInput struct {
	Name      string   `json:"name"`
	BirthDate string   `json:"birth_date" jsonschema:"RFC3339 date of birth"`
	Species   string   `json:"species" jsonschema:"cat or dog"`
	Gender    string   `json:"gender" jsonschema:"male, female or unknown"`
	Breed     string   `json:"breed,omitempty"`
	WeightKg  *float64 `json:"weight_kg,omitempty"`
}

type listPetsInput struct {
	IncludeArchived bool `json:"include_archived,omitempty"`
}

type brandSuggestionsInput struct {
	PetID    int64  `json:"pet_id"`
	Category string `json:"category" jsonschema:"food, treats, medication, grooming or toys"`
	Query    string `json:"query,omitempty" jsonschema:"brand or product prefix"`
	Limit    int    `json:"limit,omitempty"`
}

type recentTemplatesInput struct {
	PetID int64 `json:"pet_id"`
	Limit int   `json:"limit,omitempty"`
}

type quickLogInput struct {
	PetID       int64          `json:"pet_id"`
	TemplateID  string         `json:"template_id" jsonschema:"a quick-log template id"`
	Title       string         `json:"title,omitempty" jsonschema:"defaults to the template label"`
	Description string         `json:"description,omitempty"`
	Blocks      map[string]any `json:"blocks,omitempty" jsonschema:"block values keyed by block id; time defaults to now"`
}

type listActivitiesInput struct {
	PetID      int64    `json:"pet_id,omitempty"`
	Categories []string `json:"categories,omitempty"`
	From       string   `json:"from,omitempty" jsonschema:"RFC3339 lower bound"`
	To         string   `json:"to,omitempty" jsonschema:"RFC3339 upper bound"`
	Limit      int      `json:"limit,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}

type searchActivitiesInput struct {
	Query  string `json:"query" jsonschema:"words to match in title, description, category or subcategory"`
	PetID  int64  `json:"pet_id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type weightTrendInput struct {
	PetID int64  `json:"pet_id"`
	From  string `json:"from,omitempty" jsonschema:"RFC3339 lower bound"`
	To    string `json:"to,omitempty" jsonschema:"RFC3339 upper bound"`
	Unit  string `json:"unit,omitempty" jsonschema:"kg, lb, g or oz; default kg"`
}

type activityAttachmentsInput struct {
	ActivityID int64 `json:"activity_id" jsonschema:"activity id from list_activities"`
}

type noInput struct{}

// registerTools exposes the read and quick-log methods of h as MCP tools.
func registerTools(server *sdkmcp.Server, h *Handler) {
	addTool[listTemplatesInput](server, h, "list_templates",
		"List activity templates, optionally by category or quick-log availability")
	addTool[getTemplateInput](server, h, "get_template",
		"Get one activity template with its block definitions")
	addTool[validateBlockInput](server, h, "validate_block",
		"Validate a block value against a template block or a bare block type")
	addTool[createPetInput](server, h, "create_pet",
		"Add a pet")
	addTool[listPetsInput](server, h, "list_pets",
		"List pets in display order")
	addTool[petInput](server, h, "list_drafts",
		"List unsaved editor drafts for a pet")
	addTool[brandSuggestionsInput](server, h, "get_brand_suggestions",
		"Rank remembered brands for a pet by recency and frequency")
	addTool[recentTemplatesInput](server, h, "get_recent_templates",
		"Rank the templates a pet was recently logged with")
	addTool[quickLogInput](server, h, "quick_log",
		"Log an activity in one step with a quick-log template")
	addTool[listActivitiesInput](server, h, "list_activities",
		"List activities newest first with optional pet, category and date filters")
	addTool[searchActivitiesInput](server, h, "search_activities",
		"Full-text search over activities")
	addTool[weightTrendInput](server, h, "weight_trend",
		"Weight points and summary statistics for a pet")
	addTool[activityAttachmentsInput](server, h, "get_activity_attachments",
		"List files attached to an activity, newest first")
	addTool[noInput](server, h, "get_app_statistics",
		"Count pets, activities, attachments and stored photos")
}

// addTool registers a tool that forwards its input to the handler method of
// the same name. Handler errors become tool errors carrying the API error.
func addTool[In any](server *sdkmcp.Server, h *Handler, method, description string) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        method,
		Description: description,
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
		params, err := json.Marshal(toParams(in))
		if err != nil {
			return nil, nil, err
		}
		result, err := h.Handle(ctx, getTenantID(ctx), getEditorSession(ctx), method, params)
		if err != nil {
			return toolError(err), nil, nil
		}
		return textResult(result), nil, nil
	})
}

// toParams drops zero and empty optional fields so they stay unset.
func toParams(in any) any {
	switch v := in.(type) {
	case listActivitiesInput:
		out := map[string]any{
			"categories": v.Categories,
			"limit":      v.Limit,
			"offset":     v.Offset,
		}
		if v.PetID > 0 {
			out["pet_id"] = v.PetID
		}
		if v.From != "" {
			out["from"] = v.From
		}
		if v.To != "" {
			out["to"] = v.To
		}
		return out
	case createPetInput:
		out := map[string]any{
			"name":       v.Name,
			"birth_date": v.BirthDate,
			"species":    v.Species,
			"gender":     v.Gender,
		}
		if v.Breed != "" {
			out["breed"] = v.Breed
		}
		if v.WeightKg != nil {
			out["weight_kg"] = *v.WeightKg
		}
		return out
	case searchActivitiesInput:
		out := map[string]any{"query": v.Query, "limit": v.Limit, "offset": v.Offset}
		if v.PetID > 0 {
			out["pet_id"] = v.PetID
		}
		return out
	case weightTrendInput:
		out := map[string]any{"pet_id": v.PetID, "unit": v.Unit}
		if v.From != "" {
			out["from"] = v.From
		}
		if v.To != "" {
			out["to"] = v.To
		}
		return out
	}
	return in
}

func textResult(v any) *sdkmcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}

func toolError(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
