package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pawdiary/pawdiary/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyRepository(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewAPIKeyRepository(db)

	require.NoError(t, repo.Add(ctx, "secret", "tenant1", "desktop"))
	require.ErrorIs(t, repo.Add(ctx, "secret", "tenant2", ""), repository.ErrConflict)

	tenantID, err := repo.ResolveTenant(ctx, "secret")
	require.NoError(t, err)
	require.Equal(t, "tenant1", tenantID)

	var lastUsed sql.NullTime
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT last_used FROM api_keys WHERE key_hash = ?`, HashToken("secret")).Scan(&lastUsed))
	require.True(t, lastUsed.Valid)

	_, err = repo.ResolveTenant(ctx, "wrong")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
