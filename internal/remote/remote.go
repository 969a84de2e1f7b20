// Package remote talks to the project resource exposed by the server.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"projtrack/internal/models"
)

// Client is the CRUD surface of the remote project resource. Every call is
// fallible and returns the server's canonical project on success.
type Client interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Replace(ctx context.Context, p *models.Project) (*models.Project, error)
	Patch(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Message)
}

// Is makes a 404 match models.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == models.ErrNotFound && e.Code == http.StatusNotFound
}

// IsNotFound reports whether err means the addressed project does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
