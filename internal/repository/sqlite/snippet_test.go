package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/code-runner/internal/apperror"
	"github.com/sakif/code-runner/internal/model"
	"github.com/sakif/code-runner/internal/repository"
)

// newTestDB opens a fresh in-memory database that is closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestSnippet(t *testing.T, db *DB, name, lang, code string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{Name: name, Language: lang, Code: code}
	if err := db.Create(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}

// =========================================================================
// CREATE / GET
// =========================================================================

func TestCreate(t *testing.T) {
	db := newTestDB(t)

	snippet := &model.Snippet{
		Name:     "Hello World",
		Language: "python",
		Code:     "print('hello')",
	}
	if err := db.Create(context.Background(), snippet); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if snippet.ID == "" {
		t.Error("Create() did not set snippet.ID")
	}
	if snippet.CreatedAt.IsZero() || snippet.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestCreate_VerifyPersistence(t *testing.T) {
	db := newTestDB(t)
	original := createTestSnippet(t, db, "test", "rust", "fn main() {}")

	found, err := db.GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Name != original.Name {
		t.Errorf("Name = %q, want %q", found.Name, original.Name)
	}
	if found.Language != "rust" {
		t.Errorf("Language = %q, want %q", found.Language, "rust")
	}
	if found.Code != original.Code {
		t.Errorf("Code = %q, want %q", found.Code, original.Code)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST
// =========================================================================

func TestList_Empty(t *testing.T) {
	db := newTestDB(t)

	snippets, err := db.List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 0 {
		t.Errorf("List() returned %d snippets, want 0", len(snippets))
	}
}

func TestList_Pagination(t *testing.T) {
	db := newTestDB(t)
	for range 5 {
		createTestSnippet(t, db, "snippet", "python", "pass")
	}

	cases := []struct {
		offset, want int
	}{
		{0, 2},
		{2, 2},
		{4, 1},
	}
	seen := map[string]bool{}
	for _, tc := range cases {
		page, err := db.List(context.Background(), repository.ListOptions{Limit: 2, Offset: tc.offset})
		if err != nil {
			t.Fatalf("List(offset=%d) error = %v", tc.offset, err)
		}
		if len(page) != tc.want {
			t.Errorf("List(offset=%d) returned %d items, want %d", tc.offset, len(page), tc.want)
		}
		for _, s := range page {
			if seen[s.ID] {
				t.Errorf("snippet %s returned on more than one page", s.ID)
			}
			seen[s.ID] = true
		}
	}
}

func TestList_DefaultLimit(t *testing.T) {
	db := newTestDB(t)
	for range 25 {
		createTestSnippet(t, db, "snippet", "go", "package main")
	}

	snippets, err := db.List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 20 {
		t.Errorf("List() default returned %d items, want 20", len(snippets))
	}
}

func TestList_FilterByLanguage(t *testing.T) {
	db := newTestDB(t)
	createTestSnippet(t, db, "a", "python", "print(1)")
	createTestSnippet(t, db, "b", "haskell", "main = print 1")
	createTestSnippet(t, db, "c", "python", "print(2)")

	snippets, err := db.List(context.Background(), repository.ListOptions{Language: "python"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 2 {
		t.Fatalf("List(python) returned %d items, want 2", len(snippets))
	}
	for _, s := range snippets {
		if s.Language != "python" {
			t.Errorf("List(python) returned a %q snippet", s.Language)
		}
	}
}

// =========================================================================
// UPDATE / DELETE
// =========================================================================

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	original := createTestSnippet(t, db, "original name", "cpp", "int main(){}")

	original.Name = "updated name"
	original.Language = "rust"
	original.Code = "fn main() {}"
	if err := db.Update(context.Background(), original); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}
	if found.Name != "updated name" {
		t.Errorf("Name after update = %q, want %q", found.Name, "updated name")
	}
	if found.Language != "rust" {
		t.Errorf("Language after update = %q, want %q", found.Language, "rust")
	}
	if found.Code != "fn main() {}" {
		t.Errorf("Code after update = %q, want %q", found.Code, "fn main() {}")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Snippet{ID: "nonexistent", Name: "x", Language: "go"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	snippet := createTestSnippet(t, db, "to delete", "javascript", "console.log(1)")

	if err := db.Delete(context.Background(), snippet.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.GetByID(context.Background(), snippet.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
