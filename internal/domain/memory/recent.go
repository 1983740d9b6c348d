package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/pawdiary/pawdiary/internal/storage"
)

const (
	// RecentStorageKey holds every pet's recent templates in one JSON object.
	RecentStorageKey = "pawdiary.recent-templates"
	// DefaultMaxRecentTemplates caps entries per pet.
	DefaultMaxRecentTemplates = 20
)

// RecentTemplateEntry is one remembered template use.
type RecentTemplateEntry struct {
	TemplateID  string            `json:"templateId"`
	Category    template.Category `json:"category"`
	Subcategory string            `json:"subcategory"`
	PetID       int64             `json:"petId"`
	Title       string            `json:"title"`
	Usage
}

// RecentTemplate is a ranked template entry.
type RecentTemplate struct {
	RecentTemplateEntry
	Rank
}

// RecentKey is the storage map key for a pet.
func RecentKey(petID int64) string {
	return fmt.Sprintf("pet-%d", petID)
}

// RecentTemplates tracks which templates each pet is logged with.
type RecentTemplates struct {
	mu         sync.Mutex
	blob       blob[RecentTemplateEntry]
	maxEntries int
	now        func() time.Time
}

// NewRecentTemplates creates a RecentTemplates over store.
func NewRecentTemplates(store storage.Store, opts Options, logger *slog.Logger) *RecentTemplates {
	opts = opts.withDefaults()
	return &RecentTemplates{
		blob:       blob[RecentTemplateEntry]{store: store, key: RecentStorageKey, logger: orDiscard(logger)},
		maxEntries: opts.MaxRecentTemplates,
		now:        opts.Now,
	}
}

// RecordUsage bumps the template for the pet and keeps the last title used with it.
func (r *RecentTemplates) RecordUsage(ctx context.Context, petID int64, tpl template.ActivityTemplate, title string) error {
	if petID <= 0 || tpl.ID == "" {
		return ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.blob.load(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	key := RecentKey(petID)
	entries := all[key]

	found := false
	for i := range entries {
		if entries[i].TemplateID == tpl.ID {
			entries[i].UsageCount++
			entries[i].LastUsed = now
			if title != "" {
				entries[i].Title = title
			}
			found = true
			break
		}
	}
	if !found {
		if title == "" {
			title = tpl.Label
		}
		entries = append(entries, RecentTemplateEntry{
			TemplateID:  tpl.ID,
			Category:    tpl.Category,
			Subcategory: tpl.Subcategory,
			PetID:       petID,
			Title:       title,
			Usage:       Usage{LastUsed: now, UsageCount: 1},
		})
	}

	sortByScore(entries, func(e RecentTemplateEntry) Usage { return e.Usage }, now)
	if len(entries) > r.maxEntries {
		entries = entries[:r.maxEntries]
	}
	all[key] = entries

	return r.blob.save(ctx, all)
}

// List returns the pet's templates ranked by score. limit <= 0 returns all.
func (r *RecentTemplates) List(ctx context.Context, petID int64, limit int) ([]RecentTemplate, error) {
	r.mu.Lock()
	all, err := r.blob.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	now := r.now()
	entries := all[RecentKey(petID)]
	out := make([]RecentTemplate, 0, len(entries))
	for _, e := range entries {
		out = append(out, RecentTemplate{RecentTemplateEntry: e, Rank: rank(e.Usage, now)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ClearPet forgets the pet's template history.
func (r *RecentTemplates) ClearPet(ctx context.Context, petID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.blob.load(ctx)
	if err != nil {
		return err
	}
	delete(all, RecentKey(petID))
	return r.blob.save(ctx, all)
}

// Reset drops all template history.
func (r *RecentTemplates) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blob.store.Delete(ctx, RecentStorageKey)
}
