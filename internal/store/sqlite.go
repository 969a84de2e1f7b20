package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"projtrack/internal/models"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given database path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, and ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func parseProjectID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("project not found: %s: %w", id, models.ErrNotFound)
	}
	return n, nil
}

// CreateProject inserts a project and its tasks, assigning the project id
// and timestamps.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *models.Project) error {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	project.Derive()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO projects (name, description, github_url, status, progress, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, project.Name, project.Description, nullString(project.GithubURL), project.Status, project.Progress, now, now)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := insertTasks(ctx, tx, id, project.Tasks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project: %w", err)
	}

	project.ID = strconv.FormatInt(id, 10)
	return nil
}

// GetProject retrieves a project and its tasks by ID.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	pid, err := parseProjectID(id)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, github_url, status, progress, created_at, updated_at
		FROM projects WHERE id = ?
	`, pid)

	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project not found: %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	tasks, err := s.listTasks(ctx, `WHERE project_id = ?`, pid)
	if err != nil {
		return nil, err
	}
	project.Tasks = tasks[project.ID]
	if project.Tasks == nil {
		project.Tasks = []models.Task{}
	}

	return project, nil
}

// ListProjects retrieves all projects with their tasks, oldest first.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, github_url, status, progress, created_at, updated_at
		FROM projects ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Tasks are loaded after the project rows are closed: the pool has a single connection.
	tasks, err := s.listTasks(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Tasks = tasks[projects[i].ID]
		if projects[i].Tasks == nil {
			projects[i].Tasks = []models.Task{}
		}
	}

	return projects, nil
}

// UpdateProject replaces the fields and the task list of an existing project.
func (s *SQLiteStore) UpdateProject(ctx context.Context, project *models.Project) error {
	pid, err := parseProjectID(project.ID)
	if err != nil {
		return err
	}

	project.UpdatedAt = time.Now().UTC()
	project.Derive()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, description = ?, github_url = ?, status = ?, progress = ?, updated_at = ?
		WHERE id = ?
	`, project.Name, project.Description, nullString(project.GithubURL), project.Status, project.Progress, project.UpdatedAt, pid)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("project not found: %s: %w", project.ID, models.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, pid); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	if err := insertTasks(ctx, tx, pid, project.Tasks); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteProject deletes a project and its associated tasks.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	pid, err := parseProjectID(id)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, pid)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("project not found: %s: %w", id, models.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row scanner) (*models.Project, error) {
	var (
		project   models.Project
		id        int64
		githubURL sql.NullString
	)

	err := row.Scan(
		&id,
		&project.Name,
		&project.Description,
		&githubURL,
		&project.Status,
		&project.Progress,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.ID = strconv.FormatInt(id, 10)
	if githubURL.Valid {
		project.GithubURL = &githubURL.String
	}
	return &project, nil
}

// listTasks loads tasks matching the optional where clause, grouped by project id.
func (s *SQLiteStore) listTasks(ctx context.Context, where string, args ...interface{}) (map[string][]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, id, title, description, completed, created_at
		FROM tasks `+where+` ORDER BY project_id ASC, sort_order ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make(map[string][]models.Task)
	for rows.Next() {
		var (
			projectID int64
			task      models.Task
		)
		if err := rows.Scan(&projectID, &task.ID, &task.Title, &task.Description, &task.Completed, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		key := strconv.FormatInt(projectID, 10)
		tasks[key] = append(tasks[key], task)
	}

	return tasks, rows.Err()
}

func insertTasks(ctx context.Context, tx *sql.Tx, projectID int64, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (project_id, id, title, description, completed, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, task := range tasks {
		if _, err := stmt.ExecContext(ctx, projectID, task.ID, task.Title, task.Description, task.Completed, i+1, task.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert task %s: %w", task.ID, err)
		}
	}

	return nil
}

func nullString(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
