package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/repository"
)

// PetRepository implements pet.Repository for SQLite
type PetRepository struct {
	db *DB
}

// NewPetRepository creates a new PetRepository
func NewPetRepository(db *DB) *PetRepository {
	return &PetRepository{db: db}
}

const petColumns = `
	id, tenant_id, name, birth_date, species, gender, breed, color,
	weight_kg, photo_path, notes, display_order, is_archived, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (*pet.Pet, error) {
	var p pet.Pet
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.BirthDate,
		&p.Species,
		&p.Gender,
		&p.Breed,
		&p.Color,
		&p.WeightKg,
		&p.PhotoPath,
		&p.Notes,
		&p.DisplayOrder,
		&p.IsArchived,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a pet at the end of the tenant's display order.
func (r *PetRepository) Create(ctx context.Context, tenantID string, p *pet.Pet) error {
	var next int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), -1) + 1 FROM pets WHERE tenant_id = ?`,
		tenantID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to get next display order: %w", err)
	}

	query := `
		INSERT INTO pets (
			tenant_id, name, birth_date, species, gender, breed, color,
			weight_kg, photo_path, notes, display_order, is_archived, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		tenantID,
		p.Name,
		p.BirthDate.UTC(),
		p.Species,
		p.Gender,
		p.Breed,
		p.Color,
		p.WeightKg,
		p.PhotoPath,
		p.Notes,
		next,
		p.IsArchived,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get pet id: %w", err)
	}
	p.ID = id
	p.TenantID = tenantID
	p.DisplayOrder = next
	return nil
}

// Get retrieves a pet by ID
func (r *PetRepository) Get(ctx context.Context, tenantID string, id int64) (*pet.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE id = ? AND tenant_id = ?`

	p, err := scanPet(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return p, nil
}

// List returns pets in display order. Archived pets sort last when included.
func (r *PetRepository) List(ctx context.Context, tenantID string, opts pet.ListOptions) ([]pet.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE tenant_id = ?`
	if !opts.IncludeArchived {
		query += " AND is_archived = FALSE"
	}
	query += " ORDER BY is_archived ASC, display_order ASC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	defer rows.Close()

	pets := []pet.Pet{}
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pet rows: %w", err)
	}
	return pets, nil
}

// Update writes every mutable field of p.
func (r *PetRepository) Update(ctx context.Context, tenantID string, p *pet.Pet) error {
	query := `
		UPDATE pets
		SET name = ?, birth_date = ?, species = ?, gender = ?, breed = ?, color = ?,
		    weight_kg = ?, photo_path = ?, notes = ?, is_archived = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.BirthDate.UTC(),
		p.Species,
		p.Gender,
		p.Breed,
		p.Color,
		p.WeightKg,
		p.PhotoPath,
		p.Notes,
		p.IsArchived,
		p.UpdatedAt.UTC(),
		p.ID,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a pet. Its activities go with it.
func (r *PetRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	return requireAffected(result)
}

// Reorder assigns display_order by position in ids inside one transaction.
// An id that does not belong to the tenant aborts the whole reorder.
func (r *PetRepository) Reorder(ctx context.Context, tenantID string, ids []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		result, err := tx.ExecContext(ctx,
			`UPDATE pets SET display_order = ? WHERE id = ? AND tenant_id = ?`,
			i, id, tenantID,
		)
		if err != nil {
			return fmt.Errorf("failed to reorder pet %d: %w", id, err)
		}
		if err := requireAffected(result); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
