package memory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/pawdiary/pawdiary/internal/storage"
)

const (
	// BrandStorageKey holds every pet's brand memory in one JSON object.
	BrandStorageKey = "pawdiary.brand-memory"
	// DefaultMaxBrandEntries caps entries per pet and category.
	DefaultMaxBrandEntries = 50
)

// BrandEntry is one remembered brand/product pair.
type BrandEntry struct {
	Brand    string                 `json:"brand"`
	Product  string                 `json:"product,omitempty"`
	Category template.BrandCategory `json:"category"`
	PetID    int64                  `json:"petId"`
	Usage
}

// BrandSuggestion is a ranked brand entry.
type BrandSuggestion struct {
	BrandEntry
	Rank
}

// BrandKey is the storage map key for a pet and category.
func BrandKey(petID int64, category template.BrandCategory) string {
	return fmt.Sprintf("%d-%s", petID, category)
}

// BrandMemory records and ranks brand usage per pet and category.
type BrandMemory struct {
	mu         sync.Mutex
	blob       blob[BrandEntry]
	maxEntries int
	now        func() time.Time
}

// Options configures the memory services.
type Options struct {
	MaxBrandEntries    int
	MaxRecentTemplates int
	Now                func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxBrandEntries <= 0 {
		o.MaxBrandEntries = DefaultMaxBrandEntries
	}
	if o.MaxRecentTemplates <= 0 {
		o.MaxRecentTemplates = DefaultMaxRecentTemplates
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// NewBrandMemory creates a BrandMemory over store.
func NewBrandMemory(store storage.Store, opts Options, logger *slog.Logger) *BrandMemory {
	opts = opts.withDefaults()
	return &BrandMemory{
		blob:       blob[BrandEntry]{store: store, key: BrandStorageKey, logger: orDiscard(logger)},
		maxEntries: opts.MaxBrandEntries,
		now:        opts.Now,
	}
}

// RecordUsage bumps or inserts the brand/product pair, then re-ranks and
// truncates the pet's list for the category.
func (m *BrandMemory) RecordUsage(ctx context.Context, petID int64, category template.BrandCategory, brand, product string) error {
	brand, product = strings.TrimSpace(brand), strings.TrimSpace(product)
	if petID <= 0 || !category.Valid() || brand == "" {
		return ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.blob.load(ctx)
	if err != nil {
		return err
	}

	now := m.now()
	key := BrandKey(petID, category)
	entries := all[key]

	found := false
	for i := range entries {
		if strings.EqualFold(entries[i].Brand, brand) && strings.EqualFold(entries[i].Product, product) {
			entries[i].UsageCount++
			entries[i].LastUsed = now
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, BrandEntry{
			Brand:    brand,
			Product:  product,
			Category: category,
			PetID:    petID,
			Usage:    Usage{LastUsed: now, UsageCount: 1},
		})
	}

	sortByScore(entries, func(e BrandEntry) Usage { return e.Usage }, now)
	if len(entries) > m.maxEntries {
		entries = entries[:m.maxEntries]
	}
	all[key] = entries

	return m.blob.save(ctx, all)
}

// Suggestions returns the pet's entries for category ranked by score.
// A non-empty query keeps entries whose brand or product contains it.
// limit <= 0 returns every match. Suggestions never writes.
func (m *BrandMemory) Suggestions(ctx context.Context, petID int64, category template.BrandCategory, query string, limit int) ([]BrandSuggestion, error) {
	m.mu.Lock()
	all, err := m.blob.load(ctx)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	now := m.now()
	query = strings.ToLower(strings.TrimSpace(query))
	var out []BrandSuggestion
	for _, e := range all[BrandKey(petID, category)] {
		if query != "" && !strings.Contains(strings.ToLower(e.Brand), query) && !strings.Contains(strings.ToLower(e.Product), query) {
			continue
		}
		out = append(out, BrandSuggestion{BrandEntry: e, Rank: rank(e.Usage, now)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Clear removes the pet's entries for category.
func (m *BrandMemory) Clear(ctx context.Context, petID int64, category template.BrandCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.blob.load(ctx)
	if err != nil {
		return err
	}
	delete(all, BrandKey(petID, category))
	return m.blob.save(ctx, all)
}

// ClearPet removes every category for the pet.
func (m *BrandMemory) ClearPet(ctx context.Context, petID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.blob.load(ctx)
	if err != nil {
		return err
	}
	prefix := fmt.Sprintf("%d-", petID)
	for k := range all {
		if strings.HasPrefix(k, prefix) {
			delete(all, k)
		}
	}
	return m.blob.save(ctx, all)
}

// Reset drops all brand memory.
func (m *BrandMemory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blob.store.Delete(ctx, BrandStorageKey)
}

func sortByScore[T any](entries []T, usage func(T) Usage, now time.Time) {
	sort.SliceStable(entries, func(i, j int) bool {
		return usage(entries[i]).Score(now) > usage(entries[j]).Score(now)
	})
}
