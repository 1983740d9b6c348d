// Package app wires the storage, domain services and transports together.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pawdiary/pawdiary/internal/config"
	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/domain/attachment"
	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"github.com/pawdiary/pawdiary/internal/domain/editor"
	"github.com/pawdiary/pawdiary/internal/domain/memory"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/domain/photo"
	"github.com/pawdiary/pawdiary/internal/domain/render"
	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/pawdiary/pawdiary/internal/domain/weight"
	"github.com/pawdiary/pawdiary/internal/mcp"
	"github.com/pawdiary/pawdiary/internal/sqlite"
	"github.com/pawdiary/pawdiary/internal/storage"
	"github.com/pawdiary/pawdiary/internal/transport"
	"github.com/pawdiary/pawdiary/internal/wire"
)

// App holds every long-lived service of a running server.
type App struct {
	Config config.Config
	Logger *slog.Logger
	DB     *sqlite.DB

	Templates   *template.Registry
	Validator   *block.Validator
	Drafts      *draft.Service
	Brands      *memory.BrandMemory
	Recent      *memory.RecentTemplates
	Pets        *pet.Service
	Activities  *activity.Service
	Weight      *weight.Service
	Attachments *attachment.Service
	Photos      *photo.Service
	Editors     *editor.Manager
	APIKeys     *sqlite.APIKeyRepository
	Handler     *mcp.Handler
}

// New builds the services over an open, migrated database.
func New(db *sqlite.DB, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	validator, err := block.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("building block validator: %w", err)
	}

	store := sqlite.NewKVStore(db)
	memOpts := memory.Options{
		MaxBrandEntries:    cfg.Memory.MaxBrandEntries,
		MaxRecentTemplates: cfg.Memory.MaxRecentTemplates,
	}
	templates := template.Default()
	brands := memory.NewBrandMemory(store, memOpts, logger)
	recent := memory.NewRecentTemplates(store, memOpts, logger)
	drafts := draft.NewService(store, nil, logger)

	pets := pet.NewService(sqlite.NewPetRepository(db), logger)
	activities := activity.NewService(
		sqlite.NewActivityRepository(db),
		sqlite.NewSearchRepository(db),
		pets,
		templates,
		validator,
		logger,
	)

	filesDir := cfg.FilesDir()
	attachments := attachment.NewService(
		sqlite.NewAttachmentRepository(db),
		activities,
		storage.NewFileStore(filepath.Join(filesDir, "attachments")),
		logger,
	)
	photos := photo.NewService(storage.NewFileStore(filepath.Join(filesDir, "photos")), logger)

	editors := editor.NewManager(editor.Deps{
		Templates:         templates,
		Renderer:          render.NewRegistry(validator, brands, logger),
		Drafts:            drafts,
		Brands:            brands,
		Recent:            recent,
		Saver:             mcp.NewActivitySaver(activities),
		Logger:            logger,
		AutosaveDelay:     cfg.Drafts.AutosaveDelay,
		WizardStepSize:    cfg.Editor.WizardStepSize,
		QuickLogThreshold: cfg.Editor.QuickLogThreshold,
	}, cfg.Editor.SessionTTL)

	a := &App{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Templates:   templates,
		Validator:   validator,
		Drafts:      drafts,
		Brands:      brands,
		Recent:      recent,
		Pets:        pets,
		Activities:  activities,
		Weight:      weight.NewService(activities),
		Attachments: attachments,
		Photos:      photos,
		Editors:     editors,
		APIKeys:     sqlite.NewAPIKeyRepository(db),
	}
	a.Handler = mcp.NewHandler(mcp.Services{
		Templates:   templates,
		Validator:   validator,
		Editors:     editors,
		Brands:      brands,
		Recent:      recent,
		Drafts:      drafts,
		Pets:        pets,
		Activities:  activities,
		Weight:      a.Weight,
		Attachments: attachments,
		Photos:      photos,
		DraftMaxAge: cfg.Drafts.MaxAge,
		Logger:      logger,
	})
	return a, nil
}

// MCPServer creates the MCP tool server for a transport mode.
func (a *App) MCPServer(mode string) *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Handler:       a.Handler,
		Resolver:      a.APIKeys,
		AuthEnabled:   a.Config.Auth.Enabled,
		TransportMode: mode,
		Logger:        a.Logger,
	})
}

// Router serves JSON-RPC, the editor websocket and MCP over HTTP.
func (a *App) Router() http.Handler {
	server := a.MCPServer("http")
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: a.Config.Editor.SessionTTL},
	)

	auth := transport.StaticTenant(transport.DefaultTenant)
	if a.Config.Auth.Enabled {
		auth = transport.AuthMiddleware(a.APIKeys)
	}
	return transport.NewServer(a.Handler, transport.Options{
		Auth:           auth,
		AllowedOrigins: a.Config.CORS.AllowedOrigins,
		Editor:         wire.NewHandler(a.Handler, a.Editors, a.Config.CORS.AllowedOrigins, a.Logger),
		MCP:            mcpHandler,
		Logger:         a.Logger,
	})
}

// Run expires idle editor sessions and sweeps stale drafts until ctx is done.
func (a *App) Run(ctx context.Context) {
	go a.Editors.Run(ctx, time.Minute)

	ticker := time.NewTicker(a.Config.Drafts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.SweepDrafts(ctx, 0); err != nil {
				a.Logger.Warn("draft sweep failed", "error", err)
			}
		}
	}
}

// SweepDrafts removes drafts older than maxAge, or the configured age when
// maxAge is not positive.
func (a *App) SweepDrafts(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = a.Config.Drafts.MaxAge
	}
	removed, err := a.Drafts.Sweep(ctx, maxAge)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		a.Logger.Info("stale drafts removed", "count", removed)
	}
	return removed, nil
}

// OpenDB opens and migrates the database at path, creating its directory.
func OpenDB(path string) (*sqlite.DB, error) {
	if err := EnsureDBDir(path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureDBDir creates the directory holding a file database.
func EnsureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
