package session

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/starford/craftfolder/internal/models"
)

// mockProjects is a mock for Projects.
type mockProjects struct {
	mock.Mock
}

func (m *mockProjects) Get(id string) (models.Project, error) {
	args := m.Called(id)
	if p, ok := args.Get(0).(models.Project); ok {
		return p, args.Error(1)
	}
	return models.Project{}, args.Error(1)
}

func (m *mockProjects) AppendSession(ctx context.Context, projectID string, s models.Session) (models.Project, error) {
	args := m.Called(ctx, projectID, s)
	if p, ok := args.Get(0).(models.Project); ok {
		return p, args.Error(1)
	}
	return models.Project{}, args.Error(1)
}
