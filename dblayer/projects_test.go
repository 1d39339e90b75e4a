package dblayer

import (
	"context"
	"errors"
	"testing"
)

func TestProjectOpsRequireParent(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB()

	if _, err := db.CreateProject(ctx, "nobody@x.com", map[string]any{"titulo": "T"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateProject without parent returned %v, want ErrNotFound", err)
	}
	if _, err := db.ListProjects(ctx, "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListProjects without parent returned %v, want ErrNotFound", err)
	}
	if _, err := db.UpdateProject(ctx, "nobody@x.com", "p1", map[string]any{"titulo": "T"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateProject without parent returned %v, want ErrNotFound", err)
	}
	if err := db.DeleteProject(ctx, "nobody@x.com", "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteProject without parent returned %v, want ErrNotFound", err)
	}
}

func TestCreateProjectGeneratedID(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB()
	mustCreateUser(t, db, "a@x.com")

	project, err := db.CreateProject(ctx, "a@x.com", map[string]any{"titulo": "T"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	id, _ := project["id_proyecto"].(string)
	if id == "" {
		t.Errorf("Generated project has empty id_proyecto")
	}
	if got := project["id_usuario"]; got != "a@x.com" {
		t.Errorf("id_usuario = %v, want %q", got, "a@x.com")
	}
	if got := project["descripcion"]; got != "" {
		t.Errorf("descripcion = %v, want empty string", got)
	}
}

func TestCreateProjectRequiresTitle(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB()
	mustCreateUser(t, db, "a@x.com")

	if _, err := db.CreateProject(ctx, "a@x.com", map[string]any{"descripcion": "d"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("CreateProject without titulo returned %v, want ErrInvalid", err)
	}
}

func TestCreateProjectSuppliedIDOverwrites(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB()
	mustCreateUser(t, db, "a@x.com")

	first, err := db.CreateProject(ctx, "a@x.com", map[string]any{"id": "p1", "titulo": "T"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if got := first["id_proyecto"]; got != "p1" {
		t.Fatalf("id_proyecto = %v, want %q", got, "p1")
	}

	// A second create with the same id succeeds and replaces the first;
	// project creation has no conflict check.
	second, err := db.CreateProject(ctx, "a@x.com", map[string]any{"id": "p1", "titulo": "T2"})
	if err != nil {
		t.Fatalf("Second CreateProject: %v", err)
	}
	if got := second["titulo"]; got != "T2" {
		t.Errorf("titulo = %v, want %q", got, "T2")
	}

	projects, err := db.ListProjects(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("Got %d projects, want 1", len(projects))
	}
	if got := projects[0]["titulo"]; got != "T2" {
		t.Errorf("Stored titulo = %v, want %q", got, "T2")
	}
}

func TestUpdateProjectUnguardedMerge(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB()
	mustCreateUser(t, db, "a@x.com")

	if _, err := db.CreateProject(ctx, "a@x.com", map[string]any{"id": "p1", "titulo": "T", "descripcion": "d"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	// No field is protected on project updates, including the embedded
	// identity fields.
	project, err := db.UpdateProject(ctx, "a@x.com", "p1", map[string]any{"id_proyecto": "other", "titulo": "T2"})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if got := project["titulo"]; got != "T2" {
		t.Errorf("titulo = %v, want %q", got, "T2")
	}
	if got := project["descripcion"]; got != "d" {
		t.Errorf("descripcion = %v, want %q", got, "d")
	}

	if _, err := db.UpdateProject(ctx, "a@x.com", "missing", map[string]any{"titulo": "T"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateProject of missing project returned %v, want ErrNotFound", err)
	}
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB()
	mustCreateUser(t, db, "a@x.com")

	if _, err := db.CreateProject(ctx, "a@x.com", map[string]any{"id": "p1", "titulo": "T"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if err := db.DeleteProject(ctx, "a@x.com", "p1"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if err := db.DeleteProject(ctx, "a@x.com", "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Second delete returned %v, want ErrNotFound", err)
	}

	// The parent user is untouched.
	if _, err := db.GetUser(ctx, "a@x.com"); err != nil {
		t.Errorf("GetUser after project delete returned %v, want nil", err)
	}
}
