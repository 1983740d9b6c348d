package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/repository"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `
	a.id, a.tenant_id, a.pet_id, a.category, a.subcategory, COALESCE(a.template_id, ''),
	a.title, COALESCE(a.description, ''), a.activity_date, a.blocks, a.created_at, a.updated_at
`

func scanActivity(row rowScanner) (*activity.Activity, error) {
	var a activity.Activity
	var blocks sql.NullString
	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.PetID,
		&a.Category,
		&a.Subcategory,
		&a.TemplateID,
		&a.Title,
		&a.Description,
		&a.ActivityDate,
		&blocks,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if blocks.Valid && blocks.String != "" {
		if err := json.Unmarshal([]byte(blocks.String), &a.Blocks); err != nil {
			return nil, fmt.Errorf("failed to decode blocks for activity %d: %w", a.ID, err)
		}
	}
	return &a, nil
}

func encodeBlocks(a *activity.Activity) (any, error) {
	if len(a.Blocks) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(a.Blocks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blocks: %w", err)
	}
	return string(b), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts a new activity. The pet must exist for the tenant.
func (r *ActivityRepository) Create(ctx context.Context, tenantID string, a *activity.Activity) error {
	blocks, err := encodeBlocks(a)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO activities (
			tenant_id, pet_id, category, subcategory, template_id, title,
			description, activity_date, blocks, created_at, updated_at
		)
		SELECT ?, p.id, ?, ?, ?, ?, ?, ?, ?, ?, ?
		FROM pets p WHERE p.id = ? AND p.tenant_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		tenantID,
		a.Category,
		a.Subcategory,
		nullString(a.TemplateID),
		a.Title,
		nullString(a.Description),
		a.ActivityDate.UTC(),
		blocks,
		a.CreatedAt.UTC(),
		a.UpdatedAt.UTC(),
		a.PetID,
		tenantID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create activity: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return repository.ErrForeignKeyViolation
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get activity id: %w", err)
	}
	a.ID = id
	a.TenantID = tenantID
	return nil
}

// Get retrieves an activity by ID
func (r *ActivityRepository) Get(ctx context.Context, tenantID string, id int64) (*activity.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities a WHERE a.id = ? AND a.tenant_id = ?`

	a, err := scanActivity(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// Update writes every mutable field of a.
func (r *ActivityRepository) Update(ctx context.Context, tenantID string, a *activity.Activity) error {
	blocks, err := encodeBlocks(a)
	if err != nil {
		return err
	}

	query := `
		UPDATE activities
		SET pet_id = ?, category = ?, subcategory = ?, template_id = ?, title = ?,
		    description = ?, activity_date = ?, blocks = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		a.PetID,
		a.Category,
		a.Subcategory,
		nullString(a.TemplateID),
		a.Title,
		nullString(a.Description),
		a.ActivityDate.UTC(),
		blocks,
		a.UpdatedAt.UTC(),
		a.ID,
		tenantID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return requireAffected(result)
}

// Delete deletes an activity
func (r *ActivityRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return requireAffected(result)
}

// List returns one page of activities, newest first, with the total match count.
func (r *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListOptions) (*activity.Page, error) {
	where := " WHERE a.tenant_id = ?"
	args := []interface{}{tenantID}
	conditions := []string{}

	if opts.PetID != nil {
		conditions = append(conditions, "a.pet_id = ?")
		args = append(args, *opts.PetID)
	}
	if len(opts.Categories) > 0 {
		placeholders := make([]string, len(opts.Categories))
		for i, c := range opts.Categories {
			placeholders[i] = "?"
			args = append(args, c)
		}
		conditions = append(conditions, fmt.Sprintf("a.category IN (%s)", strings.Join(placeholders, ",")))
	}
	if opts.From != nil {
		conditions = append(conditions, "a.activity_date >= ?")
		args = append(args, opts.From.UTC())
	}
	if opts.To != nil {
		conditions = append(conditions, "a.activity_date <= ?")
		args = append(args, opts.To.UTC())
	}
	if len(conditions) > 0 {
		where += " AND " + joinConditions(conditions)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities a`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}

	query := `SELECT ` + activityColumns + ` FROM activities a` + where +
		" ORDER BY a.activity_date DESC, a.id DESC"
	query, args = paginate(query, args, opts.Limit, opts.Offset)

	activities, err := queryActivities(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	return &activity.Page{
		Activities: activities,
		Total:      total,
		HasMore:    opts.Offset+len(activities) < total,
	}, nil
}

func queryActivities(ctx context.Context, db *DB, query string, args ...interface{}) ([]activity.Activity, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []activity.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}
	return activities, nil
}

func paginate(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}
	return query, args
}

func joinConditions(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	joined := conditions[0]
	for i := 1; i < len(conditions); i++ {
		joined += " AND " + conditions[i]
	}
	return joined
}
