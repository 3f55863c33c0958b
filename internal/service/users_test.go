package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/codefreela/userhub/internal/apperr"
	"github.com/codefreela/userhub/internal/domain/user"
	"github.com/codefreela/userhub/internal/repo/memory"
	"github.com/codefreela/userhub/internal/service"
)

func newService() *service.Users {
	return service.NewUsers(memory.NewUsersRepo())
}

func strptr(s string) *string {
	return &s
}

func mustCreate(t *testing.T, svc *service.Users, name, email string) user.Response {
	t.Helper()

	view, err := svc.Create(context.Background(), user.CreateInput{
		Name:     name,
		Email:    email,
		Password: "secret1",
	})

	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}

	return view
}

func TestCreateReturnsProjectedView(t *testing.T) {
	svc := newService()

	view := mustCreate(t, svc, "Alice", "alice@example.com")

	if view.ID == "" {
		t.Fatalf("expected generated id")
	}

	if !view.CreatedAt.Equal(view.UpdatedAt) {
		t.Fatalf("createdAt != updatedAt on fresh record")
	}

	// the view must never leak credential material, under any key
	raw, err := json.Marshal(view)

	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}

	if strings.Contains(strings.ToLower(string(raw)), "password") {
		t.Fatalf("view leaks password material: %s", raw)
	}
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc := newService()
	mustCreate(t, svc, "Alice", "alice@example.com")

	_, err := svc.Create(context.Background(), user.CreateInput{
		Name:     "Someone Else",
		Email:    "alice@example.com",
		Password: "different1",
	})

	if !apperr.Is(err, http.StatusConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newService()

	tests := []struct {
		name    string
		input   user.CreateInput
		wantMsg string
	}{
		{
			name:    "short_name",
			input:   user.CreateInput{Name: "ab", Email: "a@b.com", Password: "secret1"},
			wantMsg: "name must be at least 3 characters",
		},
		{
			name:    "missing_name",
			input:   user.CreateInput{Email: "a@b.com", Password: "secret1"},
			wantMsg: "name is required",
		},
		{
			name:    "bad_email",
			input:   user.CreateInput{Name: "Alice", Email: "not-an-email", Password: "secret1"},
			wantMsg: "email must be a valid email address",
		},
		{
			name:    "short_password",
			input:   user.CreateInput{Name: "Alice", Email: "a@b.com", Password: "12345"},
			wantMsg: "password must be at least 6 characters",
		},
		{
			name: "first_violation_wins",
			// name and email both invalid: name is declared first
			input:   user.CreateInput{Name: "ab", Email: "not-an-email", Password: "secret1"},
			wantMsg: "name must be at least 3 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)

			if !apperr.Is(err, http.StatusBadRequest) {
				t.Fatalf("got %v, want bad request", err)
			}

			if err.Error() != tt.wantMsg {
				t.Fatalf("got message %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCreateFindOneRoundTrip(t *testing.T) {
	svc := newService()

	created := mustCreate(t, svc, "Alice", "alice@example.com")

	found, err := svc.FindOne(context.Background(), created.ID)

	if err != nil {
		t.Fatalf("find one: %v", err)
	}

	if found != created {
		t.Fatalf("round trip mismatch:\ncreated=%+v\nfound=%+v", created, found)
	}
}

func TestFindOneMissing(t *testing.T) {
	svc := newService()

	_, err := svc.FindOne(context.Background(), "missing-id")

	if !apperr.Is(err, http.StatusNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestFindOneFieldSelection(t *testing.T) {
	svc := newService()
	created := mustCreate(t, svc, "Alice", "alice@example.com")

	view, err := svc.FindOne(context.Background(), created.ID, user.FieldName)

	if err != nil {
		t.Fatalf("find one: %v", err)
	}

	if view.Name != "Alice" || view.ID != created.ID {
		t.Fatalf("selected fields missing: %+v", view)
	}

	// unselected fields stay zero and fall off the wire
	raw, err := json.Marshal(view)

	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if strings.Contains(string(raw), "email") || strings.Contains(string(raw), "createdAt") {
		t.Fatalf("unselected fields serialized: %s", raw)
	}
}

func TestFindOneRejectsUnknownField(t *testing.T) {
	svc := newService()
	created := mustCreate(t, svc, "Alice", "alice@example.com")

	_, err := svc.FindOne(context.Background(), created.ID, user.Field("passwordHash"))

	if !apperr.Is(err, http.StatusBadRequest) {
		t.Fatalf("got %v, want bad request", err)
	}
}

func TestFindAllPaginationAndTotal(t *testing.T) {
	svc := newService()

	for i := 0; i < 15; i++ {
		mustCreate(t, svc, fmt.Sprintf("user%02d", i), fmt.Sprintf("user%02d@example.com", i))
	}

	result, err := svc.FindAll(context.Background(), user.Query{Skip: 10, Take: 10})

	if err != nil {
		t.Fatalf("find all: %v", err)
	}

	if len(result.Data) != 5 {
		t.Fatalf("got %d records, want 5", len(result.Data))
	}

	if result.Total != 15 {
		t.Fatalf("got total %d, want 15", result.Total)
	}
}

func TestFindAllTotalIgnoresPaging(t *testing.T) {
	svc := newService()

	mustCreate(t, svc, "Alice Smith", "alice@example.com")
	mustCreate(t, svc, "Bob", "bob@smithmail.com")
	mustCreate(t, svc, "Carol", "carol@example.com")

	result, err := svc.FindAll(context.Background(), user.Query{Take: 1, Search: "SMITH"})

	if err != nil {
		t.Fatalf("find all: %v", err)
	}

	if len(result.Data) != 1 {
		t.Fatalf("got %d records, want page of 1", len(result.Data))
	}

	if result.Total != 2 {
		t.Fatalf("got total %d, want 2", result.Total)
	}
}

func TestFindAllSort(t *testing.T) {
	svc := newService()

	mustCreate(t, svc, "bbb", "b@example.com")
	mustCreate(t, svc, "aaa", "a@example.com")
	mustCreate(t, svc, "ccc", "c@example.com")

	asc, err := svc.FindAll(context.Background(), user.Query{SortBy: "name"})

	if err != nil {
		t.Fatalf("sort asc: %v", err)
	}

	if asc.Data[0].Name != "aaa" || asc.Data[1].Name != "bbb" || asc.Data[2].Name != "ccc" {
		t.Fatalf("asc order wrong: %+v", asc.Data)
	}

	desc, err := svc.FindAll(context.Background(), user.Query{SortBy: "name", SortDesc: true})

	if err != nil {
		t.Fatalf("sort desc: %v", err)
	}

	if desc.Data[0].Name != "ccc" || desc.Data[1].Name != "bbb" || desc.Data[2].Name != "aaa" {
		t.Fatalf("desc order wrong: %+v", desc.Data)
	}
}

func TestFindAllRejectsUnknownSortField(t *testing.T) {
	svc := newService()

	_, err := svc.FindAll(context.Background(), user.Query{SortBy: "passwordHash"})

	if !apperr.Is(err, http.StatusBadRequest) {
		t.Fatalf("got %v, want bad request", err)
	}
}

func TestUpdateNameOnly(t *testing.T) {
	svc := newService()
	created := mustCreate(t, svc, "Alice", "alice@example.com")

	time.Sleep(5 * time.Millisecond) // ensure a visibly later updatedAt

	updated, err := svc.Update(context.Background(), created.ID, user.UpdateInput{
		Name: strptr("Alicia"),
	})

	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != "Alicia" {
		t.Fatalf("name not applied: %+v", updated)
	}

	if updated.Email != created.Email || updated.ID != created.ID {
		t.Fatalf("email/id must be unchanged: %+v", updated)
	}

	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updatedAt did not advance")
	}

	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("createdAt must not change")
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := newService()
	created := mustCreate(t, svc, "Alice", "alice@example.com")

	_, err := svc.Update(context.Background(), created.ID, user.UpdateInput{
		Name: strptr("ab"),
	})

	if !apperr.Is(err, http.StatusBadRequest) {
		t.Fatalf("got %v, want bad request", err)
	}

	if err.Error() != "name must be at least 3 characters" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestUpdateEmailConflicts(t *testing.T) {
	svc := newService()
	alice := mustCreate(t, svc, "Alice", "alice@example.com")
	mustCreate(t, svc, "Bob", "bob@example.com")

	// taking someone else's email conflicts
	_, err := svc.Update(context.Background(), alice.ID, user.UpdateInput{
		Email: strptr("bob@example.com"),
	})

	if !apperr.Is(err, http.StatusConflict) {
		t.Fatalf("got %v, want conflict", err)
	}

	// keeping your own email is a no-op on email
	updated, err := svc.Update(context.Background(), alice.ID, user.UpdateInput{
		Email: strptr("alice@example.com"),
	})

	if err != nil {
		t.Fatalf("own-email update: %v", err)
	}

	if updated.Email != "alice@example.com" {
		t.Fatalf("email changed unexpectedly: %+v", updated)
	}
}

func TestUpdateMissing(t *testing.T) {
	svc := newService()

	_, err := svc.Update(context.Background(), "missing-id", user.UpdateInput{
		Name: strptr("Alicia"),
	})

	if !apperr.Is(err, http.StatusNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestDeleteThenFindOne(t *testing.T) {
	svc := newService()
	created := mustCreate(t, svc, "Alice", "alice@example.com")

	ctx := context.Background()

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := svc.FindOne(ctx, created.ID)

	if !apperr.Is(err, http.StatusNotFound) {
		t.Fatalf("got %v, want not found after delete", err)
	}
}

func TestDeleteMissing(t *testing.T) {
	svc := newService()

	err := svc.Delete(context.Background(), "missing-id")

	if !apperr.Is(err, http.StatusNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestStoredPasswordIsHashedNotPlain(t *testing.T) {
	repo := memory.NewUsersRepo()
	svc := service.NewUsers(repo)

	view, err := svc.Create(context.Background(), user.CreateInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})

	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stored, ok, err := repo.FindByID(context.Background(), view.ID)

	if err != nil || !ok {
		t.Fatalf("find stored: ok=%v err=%v", ok, err)
	}

	if stored.PasswordHash == "" || stored.PasswordHash == "supersecret" {
		t.Fatalf("password must be stored hashed")
	}
}
