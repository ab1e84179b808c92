package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func names(projects []*doxindex.Project) []string {
	var result []string
	for _, p := range projects {
		result = append(result, p.Name)
	}
	return result
}

func TestProjectService_CreateProject(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID, timestamps and the default section", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewProjectService(setupTestDB(t))
		project := &doxindex.Project{Name: "basis", SourceURL: "https://example.com/basis/html", ContentHash: "stale", EntryCount: 9}

		require.NoError(t, svc.CreateProject(context.Background(), project))

		assert.NotEmpty(t, project.ID)
		assert.False(t, project.CreatedAt.IsZero())
		assert.Equal(t, project.CreatedAt, project.UpdatedAt)
		assert.Equal(t, doxindex.DefaultSection, project.Section)
		assert.Empty(t, project.ContentHash)
		assert.Zero(t, project.EntryCount)
	})

	t.Run("keeps an explicit section", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewProjectService(setupTestDB(t))
		project := &doxindex.Project{Name: "basis", SourceURL: "https://example.com/basis/html", Section: "functions"}
		require.NoError(t, svc.CreateProject(context.Background(), project))

		found, err := svc.FindProjectByID(context.Background(), project.ID)
		require.NoError(t, err)
		assert.Equal(t, "functions", found.Section)
	})

	t.Run("returns ECONFLICT for a taken name", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		createProject(t, db, "basis")

		err := sqlite.NewProjectService(db).CreateProject(context.Background(), &doxindex.Project{Name: "basis", SourceURL: "https://example.com/other"})
		assert.Equal(t, doxindex.ECONFLICT, doxindex.ErrorCode(err))
	})

	t.Run("returns EINVALID without name or source", func(t *testing.T) {
		t.Parallel()

		err := sqlite.NewProjectService(setupTestDB(t)).CreateProject(context.Background(), &doxindex.Project{})
		assert.Equal(t, doxindex.EINVALID, doxindex.ErrorCode(err))
	})
}

func TestProjectService_FindProjectByID(t *testing.T) {
	t.Parallel()

	t.Run("reads back a stored project", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createProject(t, db, "basis")

		found, err := sqlite.NewProjectService(db).FindProjectByID(context.Background(), project.ID)
		require.NoError(t, err)
		assert.Equal(t, project.ID, found.ID)
		assert.Equal(t, "basis", found.Name)
		assert.Equal(t, project.SourceURL, found.SourceURL)
		assert.Equal(t, project.CreatedAt.Unix(), found.CreatedAt.Unix())
	})

	t.Run("returns ENOTFOUND for an unknown ID", func(t *testing.T) {
		t.Parallel()

		_, err := sqlite.NewProjectService(setupTestDB(t)).FindProjectByID(context.Background(), "missing")
		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	})
}

func TestProjectService_FindProjects(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	for _, name := range []string{"delta", "alpha", "charlie", "bravo"} {
		createProject(t, db, name)
	}
	svc := sqlite.NewProjectService(db)

	alpha := "alpha"
	missing := "echo"
	tests := []struct {
		name   string
		filter doxindex.ProjectFilter
		want   []string
	}{
		{"orders by name", doxindex.ProjectFilter{}, []string{"alpha", "bravo", "charlie", "delta"}},
		{"filters by name", doxindex.ProjectFilter{Name: &alpha}, []string{"alpha"}},
		{"returns nothing for an unknown name", doxindex.ProjectFilter{Name: &missing}, nil},
		{"pages with limit and offset", doxindex.ProjectFilter{Limit: 2, Offset: 1}, []string{"bravo", "charlie"}},
		{"applies an offset alone", doxindex.ProjectFilter{Offset: 3}, []string{"delta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			projects, err := svc.FindProjects(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(projects))
		})
	}

	t.Run("filters by ID", func(t *testing.T) {
		t.Parallel()

		all, err := svc.FindProjects(context.Background(), doxindex.ProjectFilter{})
		require.NoError(t, err)

		projects, err := svc.FindProjects(context.Background(), doxindex.ProjectFilter{ID: &all[2].ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"charlie"}, names(projects))
	})
}

func TestProjectService_UpdateProject(t *testing.T) {
	t.Parallel()

	t.Run("applies the given fields", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createProject(t, db, "basis")
		svc := sqlite.NewProjectService(db)

		name, section := "basis-1.0", "functions"
		updated, err := svc.UpdateProject(context.Background(), project.ID, doxindex.ProjectUpdate{Name: &name, Section: &section})
		require.NoError(t, err)
		assert.Equal(t, "basis-1.0", updated.Name)
		assert.Equal(t, "functions", updated.Section)
		assert.Equal(t, project.SourceURL, updated.SourceURL)
		assert.False(t, updated.UpdatedAt.Before(project.UpdatedAt))

		found, err := svc.FindProjectByID(context.Background(), project.ID)
		require.NoError(t, err)
		assert.Equal(t, "basis-1.0", found.Name)
	})

	t.Run("allows keeping the current name", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createProject(t, db, "basis")

		name := "basis"
		_, err := sqlite.NewProjectService(db).UpdateProject(context.Background(), project.ID, doxindex.ProjectUpdate{Name: &name})
		assert.NoError(t, err)
	})

	t.Run("returns ECONFLICT when renaming onto another project", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		createProject(t, db, "alpha")
		beta := createProject(t, db, "beta")

		name := "alpha"
		_, err := sqlite.NewProjectService(db).UpdateProject(context.Background(), beta.ID, doxindex.ProjectUpdate{Name: &name})
		assert.Equal(t, doxindex.ECONFLICT, doxindex.ErrorCode(err))
	})

	t.Run("returns EINVALID and stores nothing for an empty source", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createProject(t, db, "basis")
		svc := sqlite.NewProjectService(db)

		empty := ""
		_, err := svc.UpdateProject(context.Background(), project.ID, doxindex.ProjectUpdate{SourceURL: &empty})
		assert.Equal(t, doxindex.EINVALID, doxindex.ErrorCode(err))

		found, err := svc.FindProjectByID(context.Background(), project.ID)
		require.NoError(t, err)
		assert.Equal(t, project.SourceURL, found.SourceURL)
	})

	t.Run("returns ENOTFOUND for an unknown ID", func(t *testing.T) {
		t.Parallel()

		name := "basis"
		_, err := sqlite.NewProjectService(setupTestDB(t)).UpdateProject(context.Background(), "missing", doxindex.ProjectUpdate{Name: &name})
		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	})
}

func TestProjectService_DeleteProject(t *testing.T) {
	t.Parallel()

	t.Run("removes the project", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createProject(t, db, "basis")
		svc := sqlite.NewProjectService(db)

		require.NoError(t, svc.DeleteProject(context.Background(), project.ID))

		_, err := svc.FindProjectByID(context.Background(), project.ID)
		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	})

	t.Run("frees the name for reuse", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createProject(t, db, "basis")
		require.NoError(t, sqlite.NewProjectService(db).DeleteProject(context.Background(), project.ID))

		createProject(t, db, "basis")
	})

	t.Run("returns ENOTFOUND for an unknown ID", func(t *testing.T) {
		t.Parallel()

		err := sqlite.NewProjectService(setupTestDB(t)).DeleteProject(context.Background(), "missing")
		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	})
}
