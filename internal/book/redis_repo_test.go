package book

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRepo_Keys(t *testing.T) {
	repo := NewRedisRepo(nil, "bookstore", time.Second)
	assert.Equal(t, "bookstore:book:abc", repo.bookKey("abc"))
	assert.Equal(t, "bookstore:books:order", repo.orderKey())
	assert.Equal(t, "bookstore:books:seq", repo.seqKey())

	repo = NewRedisRepo(nil, "", time.Second)
	assert.Equal(t, "book:abc", repo.bookKey("abc"))
}

func TestRedisRepo_MalformedIDNeverReachesRedis(t *testing.T) {
	repo := NewRedisRepo(nil, "bookstore", time.Second)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = repo.Update(ctx, "nope", Input{})
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = repo.Delete(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestRedisRepo_ListRejectsNegativeWindow(t *testing.T) {
	repo := NewRedisRepo(nil, "bookstore", time.Second)

	_, err := repo.List(context.Background(), -1, 10)
	assert.Error(t, err)
	_, err = repo.List(context.Background(), 0, -5)
	assert.Error(t, err)
}

// setupRedisRepo uses TEST_REDIS_ADDR with a per-test key prefix.
func setupRedisRepo(t *testing.T) *RedisRepo {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	prefix := "booktest:" + NewID()
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})
	return NewRedisRepo(client, prefix, 5*time.Second)
}

func TestRedisRepo_Lifecycle(t *testing.T) {
	repo := setupRedisRepo(t)
	ctx := context.Background()
	svc := NewService(repo, WithClock(fixedClock))

	var ids []string
	for _, in := range []Input{
		{Title: "A", Author: "Ann", PublicationYear: 1990},
		{Title: "B", Author: "Bob", PublicationYear: 2005},
		{Title: "C", Author: "Cy", PublicationYear: 1978},
	} {
		b, err := svc.Create(ctx, in)
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	page, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "C", page.Data[0].Title)
	assert.Nil(t, page.Next)
	assert.Equal(t, &Page{Page: 1, Limit: 2}, page.Previous)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Oldest: 1978, Newest: 2005}, st)

	books, err := svc.Search(ctx, "BOB")
	require.NoError(t, err)
	require.Len(t, books, 1)

	require.NoError(t, svc.Update(ctx, ids[1], Input{Title: "B2", Author: "Bob", PublicationYear: 2006}))
	assert.ErrorIs(t, svc.Update(ctx, NewID(), Input{Title: "x", Author: "y", PublicationYear: 1}), ErrNotFound)

	got, err := svc.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "B2", got.Title)

	require.NoError(t, svc.Delete(ctx, ids[0]))
	assert.ErrorIs(t, svc.Delete(ctx, ids[0]), ErrNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
