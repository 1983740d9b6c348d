package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `pawdiary keeps an activity log for pets. Every activity is created from a template.

Core concepts:
- Pet: the subject of every activity. Most tools take a pet_id; call list_pets first.
- Template: a fixed recipe of blocks for one kind of activity (diet.feeding, growth.weight, ...).
  Categories are health, growth, diet, lifestyle and expense.
- Block: one typed field of a template (title, time, portion, measurement, cost, ...).
  Values are JSON; validate_block shows the accepted shape and errors.
- Draft: unsaved editor state kept per pet, template and editor mode.

Default workflow:
1) list_pets to find the pet.
2) get_recent_templates or list_templates(quick_log=true) to pick a template.
3) quick_log with the pet, the template and the block values. The time block defaults to now.
   For portion blocks, get_brand_suggestions returns brands this pet used before.
4) list_activities, search_activities and weight_trend read the log back.

Errors come back as tool errors whose text is JSON with code, message, details and recovery_hint.

Docs:
- pawdiary://docs/index
- pawdiary://docs/blocks
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "pawdiary://docs/index",
		Name:        "docs_index",
		Title:       "pawdiary docs index",
		Description: "What the server stores and which tool to call for what.",
		Content: `# pawdiary: Agent Docs Index

## Reading
- list_pets, list_activities, search_activities, weight_trend
- list_templates, get_template: what can be logged and with which blocks
- list_drafts: editor work a person left unsaved

## Writing
- quick_log: the only write tool. It runs the same validation as the app's quick-log editor and
  records template and brand usage for the pet.

## Limits
- Titles up to 255 characters, descriptions up to 2000.
- Activity dates within the last ten years and at most one year ahead.
- Weight measurements on growth activities update the pet's current weight unless a later weigh-in exists.
`,
	},
	{
		URI:         "pawdiary://docs/blocks",
		Name:        "docs_blocks",
		Title:       "Block value shapes",
		Description: "JSON shape of every block type.",
		Content: `# Block values

- title: "string"
- notes: "string"
- time: "2006-01-02T15:04", "2006-01-02", "15:04" or RFC3339
- subcategory: one of the block's options
- measurement: {"value": 4.2, "unit": "kg"}
- rating: {"rating": 1..5, "notes": "..."}
- portion: {"amount": 100, "unit": "g", "brand": "...", "product": "...", "consumedPercent": 0..100}
  amount requires unit; allergicReaction requires symptoms or severity
- timer: {"durationMinutes": 30}
- location: {"name": "Park", "latitude": 52.1, "longitude": 4.3}
- weather: {"condition": "sunny", "temperature": 18, "temperatureUnit": "C"}
- checklist: {"items": [{"label": "Brush", "checked": true}]}
- attachment: {"files": [{"name": "x.pdf", "size": 1024, "mimeType": "application/pdf"}]}
- cost: {"amount": 12.5, "currency": "EUR"}
- reminder: {"date": "2025-01-31", "repeat": "monthly"}
- people: {"people": [{"name": "Dr. Vos", "role": "vet"}]}
- recurrence: {"frequency": "weekly", "interval": 1}
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
