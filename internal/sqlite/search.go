package sqlite

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
)

// SearchRepository implements activity.SearchRepository for SQLite
type SearchRepository struct {
	db *DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// ftsQuery turns free text into an FTS5 expression: every word becomes a
// quoted term, all terms must match, and the last one matches as a prefix.
// Operators and punctuation in the input are dropped.
func ftsQuery(input string) string {
	words := strings.FieldsFunc(input, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(words) == 0 {
		return ""
	}
	terms := make([]string, len(words))
	for i, w := range words {
		terms[i] = `"` + w + `"`
	}
	terms[len(terms)-1] += "*"
	return strings.Join(terms, " ")
}

// Search performs a full-text search over activity title, description,
// category and subcategory, best matches first.
func (r *SearchRepository) Search(ctx context.Context, tenantID, query string, opts activity.SearchOptions) (*activity.Page, error) {
	match := ftsQuery(query)
	if match == "" {
		return &activity.Page{Activities: []activity.Activity{}}, nil
	}

	from := `
		FROM activities_fts
		JOIN activities a ON a.id = activities_fts.rowid
		WHERE a.tenant_id = ? AND activities_fts MATCH ?
	`
	args := []interface{}{tenantID, match}
	if opts.PetID != nil {
		from += " AND a.pet_id = ?"
		args = append(args, *opts.PetID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	sqlQuery := `SELECT ` + activityColumns + from + " ORDER BY activities_fts.rank, a.activity_date DESC"
	sqlQuery, args = paginate(sqlQuery, args, opts.Limit, opts.Offset)

	activities, err := queryActivities(ctx, r.db, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search activities: %w", err)
	}
	return &activity.Page{
		Activities: activities,
		Total:      total,
		HasMore:    opts.Offset+len(activities) < total,
	}, nil
}
