package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/storage"
)

// ErrInvalidContext indicates a draft context without a pet or a known mode.
var ErrInvalidContext = errors.New("invalid draft context")

// Service persists drafts. Saves to the same key run one at a time.
type Service struct {
	store  storage.Store
	now    func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu      sync.Mutex
	waiters int
	state   State
}

// NewService creates a draft Service. A nil now uses time.Now.
func NewService(store storage.Store, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:  store,
		now:    now,
		logger: logger,
		locks:  make(map[string]*keyLock),
	}
}

func (s *Service) acquire(key string) *keyLock {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{state: StateIdle}
		s.locks[key] = l
	}
	l.waiters++
	s.mu.Unlock()

	l.mu.Lock()
	return l
}

func (s *Service) release(key string, l *keyLock) {
	l.mu.Unlock()

	s.mu.Lock()
	l.waiters--
	if l.waiters == 0 {
		delete(s.locks, key)
	}
	s.mu.Unlock()
}

func (s *Service) setState(l *keyLock, st State) {
	s.mu.Lock()
	l.state = st
	s.mu.Unlock()
}

// State reports whether a save is in flight for c.
func (s *Service) State(c Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[c.Key()]; ok {
		return l.state
	}
	return StateIdle
}

// Save writes data under c's key, replacing any earlier draft. A save that
// arrives while another is writing the same key waits for it to finish.
func (s *Service) Save(ctx context.Context, c Context, data form.ActivityFormData) (Draft, error) {
	if c.PetID <= 0 || !c.Mode.Valid() {
		return Draft{}, ErrInvalidContext
	}
	key := c.Key()

	l := s.acquire(key)
	defer s.release(key, l)
	s.setState(l, StateSaving)
	defer s.setState(l, StateIdle)

	d := Draft{
		Data: data.Clone(),
		Metadata: Metadata{
			LastSaved:  s.now(),
			PetID:      c.PetID,
			ActivityID: c.ActivityID,
			Mode:       c.Mode,
			TemplateID: c.TemplateID,
		},
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return Draft{}, fmt.Errorf("encoding draft: %w", err)
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		return Draft{}, fmt.Errorf("saving draft %s: %w", key, err)
	}
	s.logger.Debug("draft saved", "key", key)
	return d, nil
}

// Load returns the draft for c, or nil when none exists or the stored
// metadata belongs to a different context. Corrupted entries are deleted.
func (s *Service) Load(ctx context.Context, c Context) (*Draft, error) {
	key := c.Key()
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft %s: %w", key, err)
	}

	d, ok := s.decode(ctx, key, raw)
	if !ok {
		return nil, nil
	}
	if !c.Matches(d.Metadata) {
		s.logger.Debug("draft context mismatch", "key", key)
		return nil, nil
	}
	return &d, nil
}

// Clear deletes the draft for c.
func (s *Service) Clear(ctx context.Context, c Context) error {
	key := c.Key()
	l := s.acquire(key)
	defer s.release(key, l)

	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("clearing draft %s: %w", key, err)
	}
	return nil
}

// Sweep deletes drafts last saved more than maxAge ago, plus any that cannot
// be decoded. It returns the number deleted. maxAge <= 0 uses DefaultMaxAge.
func (s *Service) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	return s.sweep(ctx, KeyPrefix, maxAge)
}

// SweepPet is Sweep limited to one pet's drafts.
func (s *Service) SweepPet(ctx context.Context, petID int64, maxAge time.Duration) (int, error) {
	return s.sweep(ctx, fmt.Sprintf("%s%d-", KeyPrefix, petID), maxAge)
}

func (s *Service) sweep(ctx context.Context, prefix string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("listing drafts: %w", err)
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		deleted, err := s.sweepKey(ctx, key, cutoff)
		if err != nil {
			s.logger.Warn("draft sweep failed", "key", key, "error", err)
			continue
		}
		if deleted {
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("swept stale drafts", "prefix", prefix, "removed", removed)
	}
	return removed, nil
}

func (s *Service) sweepKey(ctx context.Context, key string, cutoff time.Time) (bool, error) {
	l := s.acquire(key)
	defer s.release(key, l)

	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	d, ok := s.decode(ctx, key, raw)
	if !ok {
		return true, nil
	}
	if !d.Metadata.LastSaved.Before(cutoff) {
		return false, nil
	}
	return true, s.store.Delete(ctx, key)
}

// List returns every decodable draft for a pet.
func (s *Service) List(ctx context.Context, petID int64) ([]Draft, error) {
	prefix := fmt.Sprintf("%s%d-", KeyPrefix, petID)
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	var out []Draft
	for _, key := range keys {
		raw, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}
		if d, ok := s.decode(ctx, key, raw); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// ClearPet deletes every draft stored for a pet.
func (s *Service) ClearPet(ctx context.Context, petID int64) error {
	keys, err := s.store.Keys(ctx, fmt.Sprintf("%s%d-", KeyPrefix, petID))
	if err != nil {
		return fmt.Errorf("listing drafts: %w", err)
	}
	for _, key := range keys {
		l := s.acquire(key)
		err := s.store.Delete(ctx, key)
		s.release(key, l)
		if err != nil {
			return fmt.Errorf("clearing draft %s: %w", key, err)
		}
	}
	return nil
}

// decode parses a stored draft. A corrupted entry is logged and deleted.
func (s *Service) decode(ctx context.Context, key string, raw []byte) (Draft, bool) {
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		s.logger.Warn("discarding corrupted draft", "key", key, "error", err)
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Warn("failed to delete corrupted draft", "key", key, "error", derr)
		}
		return Draft{}, false
	}
	return d, true
}
