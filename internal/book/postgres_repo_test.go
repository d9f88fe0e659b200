package book

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchQuery(t *testing.T) {
	query, args, err := buildSearchQuery(`50%_off\`)
	require.NoError(t, err)

	assert.Contains(t, query, `"title" ILIKE $1`)
	assert.Contains(t, query, `"author" ILIKE $2`)
	assert.Contains(t, query, ` OR `)
	assert.Contains(t, query, `ORDER BY "seq" ASC`)
	assert.Equal(t, []any{`%50\%\_off\\%`, `%50\%\_off\\%`}, args)
}

func TestBuildListQuery(t *testing.T) {
	query, args, err := buildListQuery(20, 10)
	require.NoError(t, err)

	assert.Contains(t, query, `FROM "books"`)
	assert.Contains(t, query, `ORDER BY "seq" ASC`)
	assert.Contains(t, query, `LIMIT $1`)
	assert.Contains(t, query, `OFFSET $2`)
	assert.Equal(t, []any{int64(10), int64(20)}, args)

	_, _, err = buildListQuery(-1, 10)
	assert.Error(t, err)
}

func TestBuildInsertQuery(t *testing.T) {
	id := NewID()
	query, args, err := buildInsertQuery(id, Input{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965})
	require.NoError(t, err)

	assert.Contains(t, query, `INSERT INTO "books"`)
	assert.Contains(t, query, `RETURNING "id", "title", "author", "publication_year"`)
	assert.ElementsMatch(t, []any{id, "Dune", "Frank Herbert", int64(1965)}, args)
}

func TestBuildUpdateQuery(t *testing.T) {
	id := NewID()
	query, args, err := buildUpdateQuery(id, Input{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965})
	require.NoError(t, err)

	assert.Contains(t, query, `UPDATE "books" SET`)
	assert.Contains(t, query, `"updated_at"=NOW()`)
	assert.Contains(t, query, `WHERE ("id" = $`)
	assert.Contains(t, args, id)
}

// setupPostgresRepo connects to TEST_DB_DSN, which must point at a database
// migrated with cmd/migrate. The books table is truncated.
func setupPostgresRepo(t *testing.T) *PostgresRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "TRUNCATE books")
	require.NoError(t, err)
	return NewPostgresRepo(pool, 5*time.Second)
}

func TestPostgresRepo_Lifecycle(t *testing.T) {
	repo := setupPostgresRepo(t)
	ctx := context.Background()
	svc := NewService(repo, WithClock(fixedClock))

	created, err := svc.Create(ctx, Input{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Title: "At Swim-Two-Birds", Author: "Flann OBrien", PublicationYear: 1939})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created, *got)

	books, err := svc.Search(ctx, `O"BRIEN`)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "At Swim-Two-Birds", books[0].Title)

	page, err := svc.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", page.Data[0].Title)
	assert.NotNil(t, page.Next)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Oldest: 1939, Newest: 1965}, st)

	require.NoError(t, svc.Update(ctx, created.ID, Input{Title: "Dune Messiah", Author: "Frank Herbert", PublicationYear: 1969}))
	assert.ErrorIs(t, svc.Update(ctx, NewID(), Input{Title: "x", Author: "y", PublicationYear: 1}), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)

	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)
}
