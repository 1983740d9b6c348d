package sqlite

import (
	"context"
	"testing"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/stretchr/testify/require"
)

func TestFTSQuery(t *testing.T) {
	require.Equal(t, `"vet"*`, ftsQuery("vet"))
	require.Equal(t, `"morning" "walk"*`, ftsQuery(`  morning  walk`))
	require.Equal(t, `"a" "OR" "b"*`, ftsQuery(`a" OR b*`))
	require.Equal(t, "", ftsQuery(`"-*()`))
}

func TestSearchRepository_Search(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	mochi := insertPet(t, db, "tenant1", "Mochi")
	rex := insertPet(t, db, "tenant1", "Rex")
	other := insertPet(t, db, "tenant2", "Other")
	repo := NewActivityRepository(db)

	walk := newActivity(rex.ID, template.CategoryLifestyle, "Riverside walk", baseDate)
	walk.Subcategory = "Walk"
	require.NoError(t, repo.Create(ctx, "tenant1", walk))

	vet := newActivity(mochi.ID, template.CategoryHealth, "Checkup", baseDate)
	vet.Description = "Walked in calmly, vaccines up to date"
	require.NoError(t, repo.Create(ctx, "tenant1", vet))

	require.NoError(t, repo.Create(ctx, "tenant2", newActivity(other.ID, template.CategoryLifestyle, "Walk", baseDate)))

	search := NewSearchRepository(db)

	page, err := search.Search(ctx, "tenant1", "walk", activity.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total, "prefix match hits walk and walked")

	petID := mochi.ID
	page, err = search.Search(ctx, "tenant1", "walk", activity.SearchOptions{PetID: &petID})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "Checkup", page.Activities[0].Title)

	page, err = search.Search(ctx, "tenant1", "health", activity.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total, "category is indexed")

	page, err = search.Search(ctx, "tenant1", "walk", activity.SearchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Activities, 1)
	require.True(t, page.HasMore)

	page, err = search.Search(ctx, "tenant1", "()", activity.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, 0, page.Total)
}
