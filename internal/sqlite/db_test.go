package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"pets",
		"activities",
		"activities_fts",
		"kv_store",
		"api_keys",
		"activity_attachments",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Safe to run again on an existing database.
	require.NoError(t, db.RunMigrations())
}

func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestActivitiesTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO pets (tenant_id, name, birth_date, species, gender) VALUES (?, ?, ?, ?, ?)`,
		"tenant1", "Mochi", "2021-03-01", "cat", "female")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO activities (tenant_id, pet_id, category, subcategory, title, activity_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"tenant1", 1, "diet", "Feeding", "Breakfast", "2024-06-15 08:00:00+00:00")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO activities (tenant_id, pet_id, category, subcategory, title, activity_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"tenant1", 99, "diet", "Feeding", "Breakfast", "2024-06-15 08:00:00+00:00")
	require.Error(t, err, "should fail with unknown pet")

	_, err = db.ExecContext(ctx,
		`INSERT INTO activities (tenant_id, pet_id, category, subcategory, title, activity_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"tenant1", 1, "party", "Feeding", "Breakfast", "2024-06-15 08:00:00+00:00")
	require.Error(t, err, "should fail with invalid category")

	// Deleting the pet takes its activities along.
	_, err = db.ExecContext(ctx, `DELETE FROM pets WHERE id = 1`)
	require.NoError(t, err)
	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count))
	require.Equal(t, 0, count)
}

func TestFTSIndex(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO pets (tenant_id, name, birth_date, species, gender) VALUES (?, ?, ?, ?, ?)`,
		"tenant1", "Rex", "2020-01-01", "dog", "male")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO activities (id, tenant_id, pet_id, category, subcategory, title, description, activity_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		1, "tenant1", 1, "lifestyle", "Walk", "Riverside stroll", "Met a heron", "2024-06-15 08:00:00+00:00")
	require.NoError(t, err)

	var count int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities_fts WHERE activities_fts MATCH ?`, "heron").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = db.ExecContext(ctx, `UPDATE activities SET description = ? WHERE id = ?`, "Met a swan", 1)
	require.NoError(t, err)

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities_fts WHERE activities_fts MATCH ?`, "heron").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count, "old description should leave the index")

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities_fts WHERE activities_fts MATCH ?`, "swan").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, 1)
	require.NoError(t, err)
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities_fts WHERE activities_fts MATCH ?`, "swan").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
