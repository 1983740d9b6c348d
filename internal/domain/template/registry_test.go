package template_test

import (
	"strings"
	"testing"

	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AllTemplatesResolve(t *testing.T) {
	reg := template.Default()
	all := reg.All()
	require.NotEmpty(t, all)

	for _, tmpl := range all {
		got, ok := reg.Get(tmpl.ID)
		require.True(t, ok, tmpl.ID)
		require.NotEmpty(t, got.Blocks, tmpl.ID)
		require.Equal(t, tmpl.Category, got.Category)
		require.Equal(t, tmpl.Subcategory, got.Subcategory)
		require.True(t, strings.HasPrefix(got.ID, string(got.Category)+"."), got.ID)
		require.True(t, got.Category.Valid())
		require.NotEmpty(t, got.Subcategory)
	}
}

func TestRegistry_BlockIDsUniqueAndTypesKnown(t *testing.T) {
	for _, tmpl := range template.Default().All() {
		seen := map[string]bool{}
		for _, b := range tmpl.Blocks {
			require.False(t, seen[b.ID], "%s: duplicate block %s", tmpl.ID, b.ID)
			seen[b.ID] = true
			require.True(t, b.Type.Known(), "%s: unknown type %s", tmpl.ID, b.Type)
		}
	}
}

func TestRegistry_EveryBlockTypeUsed(t *testing.T) {
	used := map[template.BlockType]bool{}
	for _, tmpl := range template.Default().All() {
		for _, b := range tmpl.Blocks {
			used[b.Type] = true
		}
	}
	for _, bt := range template.BlockTypes() {
		require.True(t, used[bt], "block type %s not used by any template", bt)
	}
}

func TestRegistry_NotFound(t *testing.T) {
	reg := template.Default()
	_, ok := reg.Get("diet.unknown")
	require.False(t, ok)

	_, err := reg.Lookup("diet.unknown")
	require.ErrorIs(t, err, template.ErrTemplateNotFound)
}

func TestRegistry_Feeding(t *testing.T) {
	tmpl, ok := template.Default().Get("diet.feeding")
	require.True(t, ok)
	require.Equal(t, template.CategoryDiet, tmpl.Category)
	require.Equal(t, "Feeding", tmpl.Subcategory)
	require.True(t, tmpl.IsQuickLogEnabled)

	required := tmpl.RequiredBlocks()
	ids := make([]string, 0, len(required))
	for _, b := range required {
		ids = append(ids, b.ID)
	}
	require.Equal(t, []string{"title", "time", "portion"}, ids)
}

func TestRegistry_ByCategoryAndQuickLog(t *testing.T) {
	reg := template.Default()
	for _, c := range template.Categories() {
		list := reg.ByCategory(c)
		require.NotEmpty(t, list, c)
		for _, tmpl := range list {
			require.Equal(t, c, tmpl.Category)
		}
	}
	for _, tmpl := range reg.QuickLog() {
		require.True(t, tmpl.IsQuickLogEnabled)
	}
}

func TestCategory_ParseAndLabel(t *testing.T) {
	c, ok := template.ParseCategory(" Diet ")
	require.True(t, ok)
	require.Equal(t, template.CategoryDiet, c)
	require.Equal(t, "Diet", c.Label())

	_, ok = template.ParseCategory("hobby")
	require.False(t, ok)
}

func TestRegistry_DuplicateIgnored(t *testing.T) {
	a := template.ActivityTemplate{ID: "x.a", Label: "first"}
	b := template.ActivityTemplate{ID: "x.a", Label: "second"}
	reg := template.NewRegistry([]template.ActivityTemplate{a, b})
	got, ok := reg.Get("x.a")
	require.True(t, ok)
	require.Equal(t, "first", got.Label)
	require.Len(t, reg.All(), 1)
}
