package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codefreela/userhub/internal/apperr"
	"github.com/codefreela/userhub/internal/domain/user"
	"github.com/codefreela/userhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersRepo is the production-grade backend. Unlike the in-memory
// reference store it enforces email uniqueness with a constraint and
// reports violations as Conflict instead of relying on the service's
// check-then-act lookup.
type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveStore(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// sortColumns maps the allow-listed query field names onto columns. The
// query layer never interpolates caller input directly.
var sortColumns = map[user.Field]string{
	user.FieldID:        "id",
	user.FieldName:      "name",
	user.FieldEmail:     "email",
	user.FieldCreatedAt: "created_at",
	user.FieldUpdatedAt: "updated_at",
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	now := time.Now().UTC()

	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users(id, name, email, password_hash, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, apperr.Conflict("email already registered")
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) FindAll(ctx context.Context, q user.Query) ([]user.User, error) {
	q = q.Normalized()

	query := `SELECT id, name, email, password_hash, created_at, updated_at FROM users`

	var args []interface{}

	if q.Search != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+q.Search+"%")
	}

	order := "created_at ASC, id ASC"

	if q.SortBy != "" {
		col, ok := sortColumns[user.Field(q.SortBy)]
		if !ok {
			return nil, apperr.BadRequest(fmt.Sprintf("unknown sort field %q", q.SortBy))
		}

		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}

		// id tie-break keeps the order total for pagination
		order = col + " " + dir + ", id ASC"
	}

	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", order, len(args)+1, len(args)+2)
	args = append(args, q.Take, q.Skip)

	var out []user.User

	err := r.observe("users.find_all", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]user.User, 0, q.Take)

		for rows.Next() {
			var u user.User

			err = rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) Count(ctx context.Context, search string) (int, error) {
	query := `SELECT COUNT(*) FROM users`

	var args []interface{}

	if search != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int

	err := r.observe("users.count", func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(&total)
	})

	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id string, fields ...user.Field) (user.User, bool, error) {
	cols := selectColumns(fields)

	var (
		u     user.User
		found bool
	)

	err := r.observe("users.find_by_id", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+strings.Join(cols, ", ")+` FROM users WHERE id = $1`, id)

		err := row.Scan(scanTargets(&u, fields)...)

		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}

		if err != nil {
			return err
		}

		found = true
		return nil
	})

	if err != nil {
		return user.User{}, false, err
	}

	return u, found, nil
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (user.User, bool, error) {
	var (
		u     user.User
		found bool
	)

	err := r.observe("users.find_by_email", func() error {
		err := r.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash, created_at, updated_at
			 FROM users WHERE email = $1`, email,
		).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)

		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}

		if err != nil {
			return err
		}

		found = true
		return nil
	})

	if err != nil {
		return user.User{}, false, err
	}

	return u, found, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.update", func() error {
		row := r.pool.QueryRow(ctx,
			`UPDATE users
			 SET name = $2, email = $3, updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, name, email, password_hash, created_at, updated_at`,
			u.ID, u.Name, u.Email,
		)

		return row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		if IsUniqueViolation(err) {
			return user.User{}, apperr.Conflict("email already registered")
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	// idempotent: zero rows affected is fine
	return r.observe("users.delete", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
}

func selectColumns(fields []user.Field) []string {
	if len(fields) == 0 {
		return []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}
	}

	cols := []string{"id"}

	for _, f := range fields {
		if f == user.FieldID {
			continue
		}
		if col, ok := sortColumns[f]; ok {
			cols = append(cols, col)
		}
	}

	return cols
}

func scanTargets(u *user.User, fields []user.Field) []interface{} {
	if len(fields) == 0 {
		return []interface{}{&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt}
	}

	targets := []interface{}{&u.ID}

	for _, f := range fields {
		switch f {
		case user.FieldName:
			targets = append(targets, &u.Name)
		case user.FieldEmail:
			targets = append(targets, &u.Email)
		case user.FieldCreatedAt:
			targets = append(targets, &u.CreatedAt)
		case user.FieldUpdatedAt:
			targets = append(targets, &u.UpdatedAt)
		}
	}

	return targets
}
