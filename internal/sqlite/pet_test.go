package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/repository"
	"github.com/stretchr/testify/require"
)

func newPet(name string) *pet.Pet {
	now := time.Now().UTC()
	return &pet.Pet{
		Name:      name,
		BirthDate: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		Species:   pet.SpeciesCat,
		Gender:    pet.GenderFemale,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func insertPet(t *testing.T, db *DB, tenantID, name string) *pet.Pet {
	t.Helper()
	p := newPet(name)
	require.NoError(t, NewPetRepository(db).Create(context.Background(), tenantID, p))
	return p
}

func stringPtr(val string) *string {
	return &val
}

func TestPetRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewPetRepository(db)

	p := newPet("Mochi")
	p.Breed = stringPtr("Siamese")
	w := 4.2
	p.WeightKg = &w
	require.NoError(t, repo.Create(ctx, "tenant1", p))
	require.NotZero(t, p.ID)
	require.Equal(t, int64(0), p.DisplayOrder)

	got, err := repo.Get(ctx, "tenant1", p.ID)
	require.NoError(t, err)
	require.Equal(t, "Mochi", got.Name)
	require.Equal(t, pet.SpeciesCat, got.Species)
	require.Equal(t, "Siamese", *got.Breed)
	require.Nil(t, got.Color)
	require.InDelta(t, 4.2, *got.WeightKg, 1e-9)
	require.True(t, got.BirthDate.Equal(p.BirthDate))

	_, err = repo.Get(ctx, "tenant2", p.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPetRepository_ListOrderAndArchive(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewPetRepository(db)

	a := insertPet(t, db, "tenant1", "A")
	b := insertPet(t, db, "tenant1", "B")
	c := insertPet(t, db, "tenant1", "C")
	insertPet(t, db, "tenant2", "Other")
	require.Equal(t, int64(2), c.DisplayOrder)

	require.NoError(t, repo.Reorder(ctx, "tenant1", []int64{c.ID, a.ID, b.ID}))

	a.IsArchived = true
	require.NoError(t, repo.Update(ctx, "tenant1", a))

	pets, err := repo.List(ctx, "tenant1", pet.ListOptions{})
	require.NoError(t, err)
	require.Len(t, pets, 2)
	require.Equal(t, "C", pets[0].Name)
	require.Equal(t, "B", pets[1].Name)

	pets, err = repo.List(ctx, "tenant1", pet.ListOptions{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, pets, 3)
	require.Equal(t, "A", pets[2].Name)
}

func TestPetRepository_ReorderUnknownIsAtomic(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewPetRepository(db)

	a := insertPet(t, db, "tenant1", "A")
	b := insertPet(t, db, "tenant1", "B")
	other := insertPet(t, db, "tenant2", "Other")

	err := repo.Reorder(ctx, "tenant1", []int64{b.ID, other.ID, a.ID})
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.Get(ctx, "tenant1", b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.DisplayOrder)
}

func TestPetRepository_UpdateDelete(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewPetRepository(db)

	p := insertPet(t, db, "tenant1", "Rex")
	p.Name = "Rexy"
	p.Color = stringPtr("brown")
	require.NoError(t, repo.Update(ctx, "tenant1", p))

	got, err := repo.Get(ctx, "tenant1", p.ID)
	require.NoError(t, err)
	require.Equal(t, "Rexy", got.Name)
	require.Equal(t, "brown", *got.Color)

	require.ErrorIs(t, repo.Update(ctx, "tenant2", p), repository.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "tenant2", p.ID), repository.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "tenant1", p.ID))
	_, err = repo.Get(ctx, "tenant1", p.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
