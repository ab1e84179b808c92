package doxindex

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Project represents a documented project whose search table has been imported.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SourceURL   string    `json:"sourceUrl"`
	Section     string    `json:"section"`
	ContentHash string    `json:"contentHash"`
	EntryCount  int       `json:"entryCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate returns an error if the project contains invalid fields.
func (p *Project) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "project name required")
	}
	if p.SourceURL == "" {
		return Errorf(EINVALID, "project source URL required")
	}
	return nil
}

// SearchBase returns the location the project's occurrence targets are
// relative to: the search directory of the generated HTML tree the table was
// imported from. SourceURL may name the search directory, the HTML directory,
// a page or tag file inside it, or a single table file. Local paths are
// returned as file URLs.
func (p *Project) SearchBase() (*url.URL, error) {
	u, err := url.Parse(p.SourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") {
		abs, err := filepath.Abs(p.SourceURL)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid source %q: %v", p.SourceURL, err)
		}
		u = &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	}

	base := *u
	base.RawPath = ""
	base.RawQuery = ""
	base.Fragment = ""

	dir := strings.TrimSuffix(base.Path, "/")
	if dir == "" {
		base.Path = "/search/"
		return &base, nil
	}
	switch last := path.Base(dir); {
	case strings.HasSuffix(last, ".js"):
		// Targets resolve against the directory of the table file.
		return &base, nil
	case last == "search":
	case strings.Contains(last, "."):
		dir = path.Join(path.Dir(dir), "search")
	default:
		dir += "/search"
	}
	base.Path = dir + "/"
	return &base, nil
}

// ProjectService represents a service for managing projects.
type ProjectService interface {
	// CreateProject creates a new project.
	// Returns ECONFLICT if a project with the same name exists.
	CreateProject(ctx context.Context, project *Project) error

	// FindProjectByID retrieves a project by ID.
	// Returns ENOTFOUND if project does not exist.
	FindProjectByID(ctx context.Context, id string) (*Project, error)

	// FindProjects retrieves projects matching the filter.
	FindProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error)

	// UpdateProject updates an existing project.
	// Returns ENOTFOUND if project does not exist.
	UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*Project, error)

	// DeleteProject permanently removes a project and its stored table.
	// Returns ENOTFOUND if project does not exist.
	DeleteProject(ctx context.Context, id string) error
}

// ProjectFilter represents a filter for FindProjects.
type ProjectFilter struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ProjectUpdate represents fields that can be updated on a project.
type ProjectUpdate struct {
	Name      *string `json:"name"`
	SourceURL *string `json:"sourceUrl"`
	Section   *string `json:"section"`
}
