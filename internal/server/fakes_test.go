package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskly/internal/models"
	"taskly/internal/repository"
)

type memUsers struct {
	mu     sync.Mutex
	byID   map[int64]models.User
	nextID int64
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin.Time, u.LastLogin.Valid = at, true
	m.byID[id] = u
	return nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memTasks struct {
	mu     sync.Mutex
	byID   map[int64]models.Task
	nextID int64
}

func newMemTasks() *memTasks {
	return &memTasks{byID: map[int64]models.Task{}}
}

func (m *memTasks) Create(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	task.ID = m.nextID
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt
	m.byID[task.ID] = *task
	return nil
}

func (m *memTasks) Get(_ context.Context, id int64) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &task, nil
}

func (m *memTasks) ListByUser(_ context.Context, userID int64) ([]models.Task, error) {
	return m.filter(func(t models.Task) bool { return t.UserID == userID }), nil
}

func (m *memTasks) ListAll(context.Context) ([]models.Task, error) {
	return m.filter(func(models.Task) bool { return true }), nil
}

func (m *memTasks) filter(keep func(models.Task) bool) []models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []models.Task{}
	for _, task := range m.byID {
		if keep(task) {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// Update only touches the editable columns, like the Postgres store.
func (m *memTasks) Update(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[task.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Title = task.Title
	stored.Content = task.Content
	stored.DueDate = task.DueDate
	stored.UpdatedAt = time.Now().UTC()
	m.byID[task.ID] = stored
	task.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *memTasks) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memTasks) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
