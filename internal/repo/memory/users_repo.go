package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codefreela/userhub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo is the reference store: a map guarded by a mutex, with an
// extra id slice so iteration keeps insertion order.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
	order []string
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	now := time.Now().UTC()

	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	r.mu.Lock()
	r.items[u.ID] = u
	r.order = append(r.order, u.ID)
	r.mu.Unlock()

	return u, nil
}

func (r *UsersRepo) FindAll(ctx context.Context, q user.Query) ([]user.User, error) {
	q = q.Normalized()

	r.mu.RLock()
	users := r.snapshot(q.Search)
	r.mu.RUnlock()

	if q.SortBy != "" {
		sortUsers(users, user.Field(q.SortBy), q.SortDesc)
	}

	// out-of-range bounds truncate, never error
	if q.Skip >= len(users) {
		return []user.User{}, nil
	}

	end := q.Skip + q.Take
	if end > len(users) {
		end = len(users)
	}

	return users[q.Skip:end], nil
}

func (r *UsersRepo) Count(ctx context.Context, search string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.snapshot(search)), nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id string, fields ...user.Field) (user.User, bool, error) {
	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, false, nil
	}

	if len(fields) > 0 {
		u = selectFields(u, fields)
	}

	return u, true, nil
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if u := r.items[id]; u.Email == email {
			return u, true, nil
		}
	}

	return user.User{}, false, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[u.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}

	u.UpdatedAt = time.Now().UTC()
	r.items[u.ID] = u

	return u, nil
}

// Delete is idempotent: removing an absent id is not an error.
func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return nil
	}

	delete(r.items, id)

	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

// snapshot copies matching users in insertion order. Callers must hold
// at least the read lock.
func (r *UsersRepo) snapshot(search string) []user.User {
	out := make([]user.User, 0, len(r.order))

	needle := strings.ToLower(search)

	for _, id := range r.order {
		u := r.items[id]

		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}

		out = append(out, u)
	}

	return out
}

// sortUsers orders by the named field; desc flips the comparison so ties
// keep insertion order either way.
func sortUsers(users []user.User, field user.Field, desc bool) {
	less := func(a, b user.User) bool {
		switch field {
		case user.FieldID:
			return a.ID < b.ID
		case user.FieldName:
			return a.Name < b.Name
		case user.FieldEmail:
			return a.Email < b.Email
		case user.FieldCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case user.FieldUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return false
		}
	}

	sort.SliceStable(users, func(i, j int) bool {
		if desc {
			return less(users[j], users[i])
		}
		return less(users[i], users[j])
	})
}

// selectFields populates only the requested fields; the id is always kept
// so the caller can still address the record.
func selectFields(u user.User, fields []user.Field) user.User {
	out := user.User{ID: u.ID}

	for _, f := range fields {
		switch f {
		case user.FieldName:
			out.Name = u.Name
		case user.FieldEmail:
			out.Email = u.Email
		case user.FieldCreatedAt:
			out.CreatedAt = u.CreatedAt
		case user.FieldUpdatedAt:
			out.UpdatedAt = u.UpdatedAt
		}
	}

	return out
}
