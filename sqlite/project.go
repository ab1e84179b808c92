package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/doxindex"
	"github.com/google/uuid"
)

var _ doxindex.ProjectService = (*ProjectService)(nil)

const projectColumns = "id, name, source_url, section, content_hash, entry_count, created_at, updated_at"

// ProjectService is the project catalog.
type ProjectService struct {
	db *DB
}

func NewProjectService(db *DB) *ProjectService {
	return &ProjectService{db: db}
}

// CreateProject assigns project an ID and timestamps and stores it with an
// empty table. An empty Section is stored as doxindex.DefaultSection.
func (s *ProjectService) CreateProject(ctx context.Context, project *doxindex.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkNameAvailable(ctx, tx, project.Name, ""); err != nil {
			return err
		}

		now := time.Now().UTC()
		project.ID = uuid.NewString()
		project.CreatedAt, project.UpdatedAt = now, now
		project.ContentHash, project.EntryCount = "", 0
		if project.Section == "" {
			project.Section = doxindex.DefaultSection
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO projects ("+projectColumns+") VALUES (?, ?, ?, ?, '', 0, ?, ?)",
			project.ID, project.Name, project.SourceURL, project.Section,
			formatTime(now), formatTime(now))
		return err
	})
}

func (s *ProjectService) FindProjectByID(ctx context.Context, id string) (*doxindex.Project, error) {
	return findProjectByID(ctx, s.db, id)
}

// FindProjects returns the projects matching filter ordered by name.
func (s *ProjectService) FindProjects(ctx context.Context, filter doxindex.ProjectFilter) ([]*doxindex.Project, error) {
	var where []string
	var args []any
	if filter.ID != nil {
		where = append(where, "id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		where = append(where, "name = ?")
		args = append(args, *filter.Name)
	}

	var query strings.Builder
	query.WriteString("SELECT " + projectColumns + " FROM projects")
	if len(where) > 0 {
		query.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	query.WriteString(" ORDER BY name")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*doxindex.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject applies the non-nil fields of upd. Renaming onto another
// project's name returns ECONFLICT.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, upd doxindex.ProjectUpdate) (*doxindex.Project, error) {
	var project *doxindex.Project
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		p, err := findProjectByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if upd.Name != nil && *upd.Name != p.Name {
			if err := checkNameAvailable(ctx, tx, *upd.Name, id); err != nil {
				return err
			}
			p.Name = *upd.Name
		}
		if upd.SourceURL != nil {
			p.SourceURL = *upd.SourceURL
		}
		if upd.Section != nil {
			p.Section = *upd.Section
		}
		if err := p.Validate(); err != nil {
			return err
		}

		p.UpdatedAt = time.Now().UTC()
		if _, err := tx.ExecContext(ctx,
			"UPDATE projects SET name = ?, source_url = ?, section = ?, updated_at = ? WHERE id = ?",
			p.Name, p.SourceURL, p.Section, formatTime(p.UpdatedAt), id); err != nil {
			return err
		}
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project. Its stored table goes with it.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return doxindex.Errorf(doxindex.ENOTFOUND, "project not found")
	}
	return nil
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (s *ProjectService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func findProjectByID(ctx context.Context, q queryer, id string) (*doxindex.Project, error) {
	p, err := scanProject(q.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "project not found")
	}
	return p, err
}

// checkNameAvailable returns ECONFLICT if a project other than exceptID is named name.
func checkNameAvailable(ctx context.Context, q queryer, name, exceptID string) error {
	var taken bool
	err := q.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM projects WHERE name = ? AND id != ?)", name, exceptID).Scan(&taken)
	if err != nil {
		return err
	}
	if taken {
		return doxindex.Errorf(doxindex.ECONFLICT, "project %q already exists", name)
	}
	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*doxindex.Project, error) {
	var (
		p                    doxindex.Project
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.SourceURL, &p.Section,
		&p.ContentHash, &p.EntryCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
