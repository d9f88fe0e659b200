package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	tableBooks    = "books"
	colSeq        = "seq"
	colID         = "id"
	colTitle      = "title"
	colAuthor     = "author"
	colYear       = "publication_year"
	colUpdatedAt  = "updated_at"
	dialectPgName = "postgres"
)

var (
	pg          = goqu.Dialect(dialectPgName)
	bookColumns = []any{colID, colTitle, colAuthor, colYear}
	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Insert(ctx context.Context, in Input) (Book, error) {
	query, args, err := buildInsertQuery(NewID(), in)
	if err != nil {
		return Book{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Book
	if err := scanBook(r.db.QueryRow(timeoutCtx, query, args...), &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (*Book, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	query, args, err := pg.From(tableBooks).Prepared(true).
		Select(bookColumns...).
		Where(goqu.C(colID).Eq(id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Book
	if err := scanBook(r.db.QueryRow(timeoutCtx, query, args...), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *PostgresRepo) List(ctx context.Context, offset, limit int) ([]Book, error) {
	query, args, err := buildListQuery(offset, limit)
	if err != nil {
		return nil, err
	}
	return r.queryBooks(ctx, query, args)
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	query, args, err := pg.From(tableBooks).Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		ToSQL()
	if err != nil {
		return 0, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var total int
	if err := r.db.QueryRow(timeoutCtx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostgresRepo) Search(ctx context.Context, term string) ([]Book, error) {
	query, args, err := buildSearchQuery(term)
	if err != nil {
		return nil, err
	}
	return r.queryBooks(ctx, query, args)
}

func (r *PostgresRepo) All(ctx context.Context) ([]Book, error) {
	query, args, err := pg.From(tableBooks).Prepared(true).
		Select(bookColumns...).
		Order(goqu.C(colSeq).Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}
	return r.queryBooks(ctx, query, args)
}

func (r *PostgresRepo) Update(ctx context.Context, id string, in Input) (bool, error) {
	id, err := ParseID(id)
	if err != nil {
		return false, err
	}
	query, args, err := buildUpdateQuery(id, in)
	if err != nil {
		return false, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) (bool, error) {
	id, err := ParseID(id)
	if err != nil {
		return false, err
	}
	query, args, err := pg.Delete(tableBooks).Prepared(true).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if err != nil {
		return false, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(timeoutCtx)
}

func (r *PostgresRepo) queryBooks(ctx context.Context, query string, args []any) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBook(row pgx.Row, b *Book) error {
	return row.Scan(&b.ID, &b.Title, &b.Author, &b.PublicationYear)
}

func buildInsertQuery(id string, in Input) (string, []any, error) {
	return pg.Insert(tableBooks).Prepared(true).
		Rows(goqu.Record{
			colID:     id,
			colTitle:  in.Title,
			colAuthor: in.Author,
			colYear:   int(in.PublicationYear),
		}).
		Returning(bookColumns...).
		ToSQL()
}

func buildListQuery(offset, limit int) (string, []any, error) {
	if offset < 0 || limit < 0 {
		return "", nil, fmt.Errorf("invalid page window offset=%d limit=%d", offset, limit)
	}
	return pg.From(tableBooks).Prepared(true).
		Select(bookColumns...).
		Order(goqu.C(colSeq).Asc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		ToSQL()
}

func buildSearchQuery(term string) (string, []any, error) {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	return pg.From(tableBooks).Prepared(true).
		Select(bookColumns...).
		Where(goqu.Or(
			goqu.C(colTitle).ILike(pattern),
			goqu.C(colAuthor).ILike(pattern),
		)).
		Order(goqu.C(colSeq).Asc()).
		ToSQL()
}

func buildUpdateQuery(id string, in Input) (string, []any, error) {
	return pg.Update(tableBooks).Prepared(true).
		Set(goqu.Record{
			colTitle:     in.Title,
			colAuthor:    in.Author,
			colYear:      int(in.PublicationYear),
			colUpdatedAt: goqu.L("NOW()"),
		}).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
}
