package store

import (
	"context"

	"projtrack/internal/models"
)

// Store defines the interface for data persistence operations.
// Projects are stored together with their ordered tasks.
type Store interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}
