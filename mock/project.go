package mock

import (
	"context"

	"github.com/fwojciec/doxindex"
)

var _ doxindex.ProjectService = (*ProjectService)(nil)

// ProjectService is a mock implementation of doxindex.ProjectService.
type ProjectService struct {
	CreateProjectFn   func(ctx context.Context, project *doxindex.Project) error
	FindProjectByIDFn func(ctx context.Context, id string) (*doxindex.Project, error)
	FindProjectsFn    func(ctx context.Context, filter doxindex.ProjectFilter) ([]*doxindex.Project, error)
	UpdateProjectFn   func(ctx context.Context, id string, upd doxindex.ProjectUpdate) (*doxindex.Project, error)
	DeleteProjectFn   func(ctx context.Context, id string) error
}

func (s *ProjectService) CreateProject(ctx context.Context, project *doxindex.Project) error {
	return s.CreateProjectFn(ctx, project)
}

func (s *ProjectService) FindProjectByID(ctx context.Context, id string) (*doxindex.Project, error) {
	return s.FindProjectByIDFn(ctx, id)
}

func (s *ProjectService) FindProjects(ctx context.Context, filter doxindex.ProjectFilter) ([]*doxindex.Project, error) {
	return s.FindProjectsFn(ctx, filter)
}

func (s *ProjectService) UpdateProject(ctx context.Context, id string, upd doxindex.ProjectUpdate) (*doxindex.Project, error) {
	return s.UpdateProjectFn(ctx, id, upd)
}

func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	return s.DeleteProjectFn(ctx, id)
}
