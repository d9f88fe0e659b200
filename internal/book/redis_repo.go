package book

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisRepo stores each book as a JSON document under its own key and keeps
// insertion order in a sorted set scored by a monotonically increasing sequence.
type RedisRepo struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

func NewRedisRepo(client redis.UniversalClient, prefix string, timeout time.Duration) *RedisRepo {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisRepo{client: client, prefix: prefix, timeout: timeout}
}

func (r *RedisRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *RedisRepo) bookKey(id string) string { return r.prefix + "book:" + id }
func (r *RedisRepo) orderKey() string         { return r.prefix + "books:order" }
func (r *RedisRepo) seqKey() string           { return r.prefix + "books:seq" }

func (r *RedisRepo) Insert(ctx context.Context, in Input) (Book, error) {
	b := Book{
		ID:              NewID(),
		Title:           in.Title,
		Author:          in.Author,
		PublicationYear: int(in.PublicationYear),
	}
	doc, err := codec.Marshal(b)
	if err != nil {
		return Book{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	seq, err := r.client.Incr(timeoutCtx, r.seqKey()).Result()
	if err != nil {
		return Book{}, err
	}
	_, err = r.client.TxPipelined(timeoutCtx, func(pipe redis.Pipeliner) error {
		pipe.Set(timeoutCtx, r.bookKey(b.ID), doc, 0)
		pipe.ZAdd(timeoutCtx, r.orderKey(), redis.Z{Score: float64(seq), Member: b.ID})
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

func (r *RedisRepo) FindByID(ctx context.Context, id string) (*Book, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	doc, err := r.client.Get(timeoutCtx, r.bookKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var b Book
	if err := codec.Unmarshal(doc, &b); err != nil {
		return nil, fmt.Errorf("decode book %s: %w", id, err)
	}
	return &b, nil
}

func (r *RedisRepo) List(ctx context.Context, offset, limit int) ([]Book, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid page window offset=%d limit=%d", offset, limit)
	}
	if limit == 0 {
		return []Book{}, nil
	}
	// -1 is the last member of the sorted set.
	stop := int64(-1)
	if limit <= math.MaxInt-offset {
		stop = int64(offset + limit - 1)
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	ids, err := r.client.ZRange(timeoutCtx, r.orderKey(), int64(offset), stop).Result()
	if err != nil {
		return nil, err
	}
	return r.load(timeoutCtx, ids)
}

func (r *RedisRepo) Count(ctx context.Context) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	n, err := r.client.ZCard(timeoutCtx, r.orderKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Search scans the whole collection; Redis has no substring index for plain values.
func (r *RedisRepo) Search(ctx context.Context, term string) ([]Book, error) {
	books, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	out := []Book{}
	for _, b := range books {
		if b.matches(needle) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *RedisRepo) All(ctx context.Context) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	ids, err := r.client.ZRange(timeoutCtx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return r.load(timeoutCtx, ids)
}

func (r *RedisRepo) Update(ctx context.Context, id string, in Input) (bool, error) {
	id, err := ParseID(id)
	if err != nil {
		return false, err
	}
	doc, err := codec.Marshal(Book{
		ID:              id,
		Title:           in.Title,
		Author:          in.Author,
		PublicationYear: int(in.PublicationYear),
	})
	if err != nil {
		return false, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.client.SetXX(timeoutCtx, r.bookKey(id), doc, 0).Result()
}

func (r *RedisRepo) Delete(ctx context.Context, id string) (bool, error) {
	id, err := ParseID(id)
	if err != nil {
		return false, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var del *redis.IntCmd
	_, err = r.client.TxPipelined(timeoutCtx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(timeoutCtx, r.bookKey(id))
		pipe.ZRem(timeoutCtx, r.orderKey(), id)
		return nil
	})
	if err != nil {
		return false, err
	}
	return del.Val() > 0, nil
}

func (r *RedisRepo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.client.Ping(timeoutCtx).Err()
}

// load fetches documents for ids in order, skipping ids whose document is gone.
func (r *RedisRepo) load(ctx context.Context, ids []string) ([]Book, error) {
	out := make([]Book, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.bookKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var b Book
		if err := codec.UnmarshalFromString(s, &b); err != nil {
			return nil, fmt.Errorf("decode book %s: %w", ids[i], err)
		}
		out = append(out, b)
	}
	return out, nil
}
