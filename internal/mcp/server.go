package mcp

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/domain/attachment"
	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"github.com/pawdiary/pawdiary/internal/domain/editor"
	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/memory"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/domain/photo"
	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/pawdiary/pawdiary/internal/domain/weight"
	"github.com/pawdiary/pawdiary/internal/storage"
)

// PetService defines pet operations.
type PetService interface {
	Create(ctx context.Context, tenantID string, req pet.CreateRequest) (*pet.Pet, error)
	Get(ctx context.Context, tenantID string, id int64) (*pet.Pet, error)
	List(ctx context.Context, tenantID string, opts pet.ListOptions) ([]pet.Pet, error)
	Update(ctx context.Context, tenantID string, id int64, req pet.UpdateRequest) (*pet.Pet, error)
	Archive(ctx context.Context, tenantID string, id int64) (*pet.Pet, error)
	Delete(ctx context.Context, tenantID string, id int64) error
	Reorder(ctx context.Context, tenantID string, ids []int64) error
}

// ActivityService defines activity operations.
type ActivityService interface {
	Save(ctx context.Context, tenantID string, id *int64, data form.ActivityFormData) (*activity.Activity, error)
	Get(ctx context.Context, tenantID string, id int64) (*activity.Activity, error)
	Delete(ctx context.Context, tenantID string, id int64) error
	List(ctx context.Context, tenantID string, opts activity.ListOptions) (*activity.Page, error)
	Search(ctx context.Context, tenantID, query string, opts activity.SearchOptions) (*activity.Page, error)
	Export(ctx context.Context, tenantID string, petID *int64) (*activity.Export, error)
}

// WeightService computes weight trends.
type WeightService interface {
	Trend(ctx context.Context, tenantID string, opts weight.Options) (*weight.Trend, error)
}

// AttachmentService defines activity attachment operations.
type AttachmentService interface {
	Upload(ctx context.Context, tenantID string, req attachment.UploadRequest) (*attachment.Attachment, error)
	List(ctx context.Context, tenantID string, activityID int64) ([]attachment.Attachment, error)
	ListForPet(ctx context.Context, tenantID string, petID int64) ([]attachment.Attachment, error)
	Get(ctx context.Context, tenantID string, id int64) (*attachment.Attachment, error)
	Delete(ctx context.Context, tenantID string, id int64) error
	Count(ctx context.Context, tenantID string) (int, error)
	RemoveFiles(tenantID string, list []attachment.Attachment)
}

// PhotoService defines pet photo file operations.
type PhotoService interface {
	Upload(tenantID, filename string, data []byte) (string, error)
	Info(tenantID, id string) (storage.FileInfo, error)
	Delete(tenantID, id string) error
	List(tenantID string) ([]string, error)
	Stats(tenantID string) (photo.Stats, error)
}

// Services contains everything the handler and the tool server call.
type Services struct {
	Templates  *template.Registry
	Validator  *block.Validator
	Editors    *editor.Manager
	Brands     *memory.BrandMemory
	Recent     *memory.RecentTemplates
	Drafts     *draft.Service
	Pets       PetService
	Activities ActivityService
	Weight     WeightService
	// Attachments and Photos are optional; their methods report
	// METHOD_NOT_FOUND when unset.
	Attachments AttachmentService
	Photos      PhotoService

	// DraftMaxAge is the default age for sweep_drafts; zero uses draft.DefaultMaxAge.
	DraftMaxAge time.Duration
	Logger      *slog.Logger
}

// Config contains server configuration.
type Config struct {
	Handler       *Handler
	Resolver      TenantResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates an MCP server whose tools call into the method handler.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "pawdiary",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only and never authenticates.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(defaultTenant))
	}
	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Handler)

	return server
}
