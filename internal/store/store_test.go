package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/checksum"
	"github.com/starford/draftdeck/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "draftdeck-store-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(context.Background(), DriverSQLite, f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedProject(t *testing.T, db *DB, ownerID int64, titles ...string) *models.Project {
	t.Helper()
	p := &models.Project{OwnerID: ownerID, Title: "Deck", DocType: models.DocTypePptx, Prompt: "quarterly review"}
	var sections []models.Section
	for i, title := range titles {
		sections = append(sections, models.Section{Title: title, Position: i, IsSlide: true})
	}
	if err := db.CreateProject(context.Background(), p, sections); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"users", "projects", "sections", "refinements", "comments"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	u, err := db.CreateUser(ctx, "a@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 || u.CreatedAt.IsZero() {
		t.Errorf("user not populated: %+v", u)
	}

	_, err = db.CreateUser(ctx, "a@example.com", "hash2")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("duplicate err = %v, want ErrAlreadyExists", err)
	}

	got, err := db.UserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if got.ID != u.ID || got.HashedPassword != "hash" {
		t.Errorf("got %+v", got)
	}

	if _, err := db.UserByID(ctx, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UserByID missing err = %v", err)
	}
}

func TestProjectOwnership(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	alice, _ := db.CreateUser(ctx, "alice@example.com", "h")
	bob, _ := db.CreateUser(ctx, "bob@example.com", "h")

	p := seedProject(t, db, alice.ID, "Intro", "Numbers")
	if len(p.Sections) != 2 || p.Sections[0].ID == 0 {
		t.Fatalf("sections = %+v", p.Sections)
	}

	got, err := db.ProjectForOwner(ctx, p.ID, alice.ID)
	if err != nil {
		t.Fatalf("ProjectForOwner: %v", err)
	}
	if got.Title != "Deck" || len(got.Sections) != 2 || got.Sections[1].Title != "Numbers" {
		t.Errorf("got %+v", got)
	}
	if !got.Sections[0].IsSlide {
		t.Error("is_slide not persisted")
	}

	if _, err := db.ProjectForOwner(ctx, p.ID, bob.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign project err = %v, want ErrNotFound", err)
	}

	list, err := db.ListProjects(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob sees %d projects", len(list))
	}
}

func TestListProjectsGroupsSections(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u, _ := db.CreateUser(ctx, "u@example.com", "h")
	seedProject(t, db, u.ID, "A", "B")
	seedProject(t, db, u.ID)

	list, err := db.ListProjects(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if len(list[0].Sections) != 2 || len(list[1].Sections) != 0 {
		t.Errorf("sections = %d, %d", len(list[0].Sections), len(list[1].Sections))
	}
	if list[1].Sections == nil {
		t.Error("empty sections should be a non-nil slice")
	}
}

func TestSectionsOrderedByPosition(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u, _ := db.CreateUser(ctx, "u@example.com", "h")
	p := seedProject(t, db, u.ID)

	_, err := db.AddSections(ctx, p.ID, []models.Section{
		{Title: "third", Position: 2},
		{Title: "first", Position: 0},
		{Title: "second", Position: 1},
	})
	if err != nil {
		t.Fatalf("AddSections: %v", err)
	}
	sections, err := db.Sections(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	if len(titles) != 3 || titles[0] != "first" || titles[2] != "third" {
		t.Errorf("order = %v", titles)
	}
}

func TestUpdateSectionContentChecksum(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u, _ := db.CreateUser(ctx, "u@example.com", "h")
	p := seedProject(t, db, u.ID, "Intro")
	id := p.Sections[0].ID

	if err := db.UpdateSectionContent(ctx, id, "v1", ""); err != nil {
		t.Fatalf("update without If-Match: %v", err)
	}
	if err := db.UpdateSectionContent(ctx, id, "v2", checksum.Sum("v1")); err != nil {
		t.Fatalf("update with matching checksum: %v", err)
	}
	err := db.UpdateSectionContent(ctx, id, "v3", checksum.Sum("v1"))
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("stale checksum err = %v, want ErrConflict", err)
	}
	s, _ := db.SectionForOwner(ctx, id, u.ID)
	if s.Content != "v2" {
		t.Errorf("content = %q, want v2", s.Content)
	}
	if err := db.UpdateSectionContent(ctx, 999, "x", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing section err = %v", err)
	}
}

func TestRefinementAndComments(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u, _ := db.CreateUser(ctx, "u@example.com", "h")
	p := seedProject(t, db, u.ID, "Intro")
	id := p.Sections[0].ID

	r := &models.Refinement{SectionID: id, UserID: u.ID, Prompt: "shorter", NewContent: "short"}
	if err := db.RecordRefinement(ctx, r); err != nil {
		t.Fatalf("RecordRefinement: %v", err)
	}
	if r.ID == 0 {
		t.Error("refinement id not set")
	}
	s, _ := db.SectionForOwner(ctx, id, u.ID)
	if s.Content != "short" {
		t.Errorf("content = %q", s.Content)
	}

	c := &models.Comment{SectionID: id, UserID: u.ID, Text: "nice"}
	if err := db.AddComment(ctx, c); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	comments, _ := db.Comments(ctx, id)
	refinements, _ := db.Refinements(ctx, id)
	if len(comments) != 1 || comments[0].Text != "nice" {
		t.Errorf("comments = %+v", comments)
	}
	if len(refinements) != 1 || refinements[0].Prompt != "shorter" {
		t.Errorf("refinements = %+v", refinements)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u, _ := db.CreateUser(ctx, "u@example.com", "h")
	p := seedProject(t, db, u.ID, "Intro")
	_ = db.AddComment(ctx, &models.Comment{SectionID: p.Sections[0].ID, UserID: u.ID, Text: "x"})

	if err := db.DeleteProject(ctx, p.ID, u.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	var n int
	_ = db.conn.QueryRow(`SELECT count(*) FROM comments`).Scan(&n)
	if n != 0 {
		t.Errorf("comments left = %d", n)
	}
	if err := db.DeleteProject(ctx, p.ID, u.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestSearchScopedToOwner(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	alice, _ := db.CreateUser(ctx, "alice@example.com", "h")
	bob, _ := db.CreateUser(ctx, "bob@example.com", "h")
	pa := seedProject(t, db, alice.ID, "Revenue")
	seedProject(t, db, bob.ID, "Revenue")
	_ = db.UpdateSectionContent(ctx, pa.Sections[0].ID, "Growth was strong", "")

	hits, err := db.Search(ctx, alice.ID, "growth", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].SectionID != pa.Sections[0].ID {
		t.Errorf("hits = %+v", hits)
	}

	hits, _ = db.Search(ctx, bob.ID, "growth", 10)
	if len(hits) != 0 {
		t.Errorf("bob hits = %+v", hits)
	}

	hits, _ = db.Search(ctx, alice.ID, "  ", 10)
	if len(hits) != 0 {
		t.Errorf("blank query hits = %+v", hits)
	}
}

func TestSearchSnippetIsPlainText(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u, _ := db.CreateUser(ctx, "alice@example.com", "h")
	p := seedProject(t, db, u.ID, "Revenue")
	_ = db.UpdateSectionContent(ctx, p.Sections[0].ID, "# Results\n- **Growth** was strong", "")

	hits, err := db.searchLike(ctx, u.ID, "growth", 10)
	if err != nil {
		t.Fatalf("searchLike: %v", err)
	}
	if len(hits) != 1 || hits[0].Snippet != "Results\n• Growth was strong" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestSQLiteDSN(t *testing.T) {
	cases := []struct{ in, want string }{
		{"x.db", "x.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"},
		{"file:x.db?cache=shared", "file:x.db?cache=shared&_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"},
		{"x.db?_foreign_keys=off&_journal_mode=DELETE", "x.db?_foreign_keys=off&_journal_mode=DELETE&_busy_timeout=5000"},
	}
	for _, c := range cases {
		if got := sqliteDSN(c.in); got != c.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDSNWithQueryKeepsForeignKeys(t *testing.T) {
	f, err := os.CreateTemp("", "draftdeck-store-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, "file:"+f.Name()+"?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, _ := db.CreateUser(ctx, "alice@example.com", "h")
	p := seedProject(t, db, u.ID, "Revenue")
	if err := db.DeleteProject(ctx, p.ID, u.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	sections, err := db.Sections(ctx, p.ID)
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("sections survived delete: %+v", sections)
	}
}
