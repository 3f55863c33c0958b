package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/codefreela/userhub/internal/apperr"
	"github.com/codefreela/userhub/internal/domain/user"
	"github.com/codefreela/userhub/internal/security"
)

// Repository is the capability contract any user storage backend must
// implement. Absent records on reads are reported via the bool, not an
// error; Update returns user.ErrNotFound for an unknown id; Delete is
// idempotent.
type Repository interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	FindAll(ctx context.Context, q user.Query) ([]user.User, error)
	Count(ctx context.Context, search string) (int, error)
	FindByID(ctx context.Context, id string, fields ...user.Field) (user.User, bool, error)
	FindByEmail(ctx context.Context, email string) (user.User, bool, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// Users implements the five account use cases on top of a Repository.
// It holds no mutable state; every call is reentrant.
type Users struct {
	repo Repository
}

func NewUsers(repo Repository) *Users {
	return &Users{repo: repo}
}

// ListResult pairs one page of users with the total matching count.
type ListResult struct {
	Data  []user.Response `json:"data"`
	Total int             `json:"total"`
}

func (s *Users) Create(ctx context.Context, in user.CreateInput) (user.Response, error) {
	if err := validateInput(in); err != nil {
		return user.Response{}, err
	}

	_, exists, err := s.repo.FindByEmail(ctx, in.Email)

	if err != nil {
		return user.Response{}, err
	}

	if exists {
		return user.Response{}, apperr.Conflict("email already registered")
	}

	hash, err := security.HashPassword(in.Password)

	if err != nil {
		return user.Response{}, err
	}

	created, err := s.repo.Create(ctx, user.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})

	if err != nil {
		return user.Response{}, err
	}

	return created.ToResponse(), nil
}

func (s *Users) FindOne(ctx context.Context, id string, fields ...user.Field) (user.Response, error) {
	for _, f := range fields {
		if !user.IsSelectable(string(f)) {
			return user.Response{}, apperr.BadRequest(fmt.Sprintf("unknown field %q", f))
		}
	}

	u, ok, err := s.repo.FindByID(ctx, id, fields...)

	if err != nil {
		return user.Response{}, err
	}

	if !ok {
		return user.Response{}, apperr.NotFound("user not found")
	}

	return u.ToResponse(), nil
}

func (s *Users) FindAll(ctx context.Context, q user.Query) (ListResult, error) {
	if q.SortBy != "" && !user.IsSortable(q.SortBy) {
		return ListResult{}, apperr.BadRequest(fmt.Sprintf("unknown sort field %q", q.SortBy))
	}

	users, err := s.repo.FindAll(ctx, q)

	if err != nil {
		return ListResult{}, err
	}

	// total reflects the full matching set, independent of the page
	total, err := s.repo.Count(ctx, q.Search)

	if err != nil {
		return ListResult{}, err
	}

	data := make([]user.Response, 0, len(users))

	for _, u := range users {
		data = append(data, u.ToResponse())
	}

	return ListResult{Data: data, Total: total}, nil
}

func (s *Users) Update(ctx context.Context, id string, in user.UpdateInput) (user.Response, error) {
	if err := validateInput(in); err != nil {
		return user.Response{}, err
	}

	u, ok, err := s.repo.FindByID(ctx, id)

	if err != nil {
		return user.Response{}, err
	}

	if !ok {
		return user.Response{}, apperr.NotFound("user not found")
	}

	// email change needs a uniqueness check; keeping the current email is a no-op
	if in.Email != nil && *in.Email != u.Email {
		other, taken, err := s.repo.FindByEmail(ctx, *in.Email)

		if err != nil {
			return user.Response{}, err
		}

		if taken && other.ID != u.ID {
			return user.Response{}, apperr.Conflict("email already registered")
		}

		u.Email = *in.Email
	}

	if in.Name != nil {
		u.Name = *in.Name
	}

	updated, err := s.repo.Update(ctx, u)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Response{}, apperr.NotFound("user not found")
		}
		return user.Response{}, err
	}

	return updated.ToResponse(), nil
}

func (s *Users) Delete(ctx context.Context, id string) error {
	_, ok, err := s.repo.FindByID(ctx, id)

	if err != nil {
		return err
	}

	if !ok {
		return apperr.NotFound("user not found")
	}

	return s.repo.Delete(ctx, id)
}
