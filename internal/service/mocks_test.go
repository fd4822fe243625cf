package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"

	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

// fakeTaskStore is a hand-rolled store.TaskStore for service tests. Each
// method delegates to an optional hook; unset hooks return zero values so
// tests only wire what they assert on.
type fakeTaskStore struct {
	createFn  func(ctx context.Context, task *domain.Task) error
	getByIDFn func(ctx context.Context, id int64) (*domain.Task, error)
	listFn    func(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, error)
	countFn   func(ctx context.Context, filter store.TaskFilter) (int64, error)
	updateFn  func(ctx context.Context, task *domain.Task) error
	deleteFn  func(ctx context.Context, id int64) error
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if f.createFn != nil {
		return f.createFn(ctx, task)
	}
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, store.ErrTaskNotFound
}

func (f *fakeTaskStore) List(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter, page)
	}
	return []*domain.Task{}, nil
}

func (f *fakeTaskStore) Count(ctx context.Context, filter store.TaskFilter) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx, filter)
	}
	return 0, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, task)
	}
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return f
}

// txRecorder counts transaction outcomes observed by the fake driver.
type txRecorder struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
}

func (r *txRecorder) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

func (r *txRecorder) Rollbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rollbacks
}

// fakeDriverTx implements driver.Tx, recording the outcome.
type fakeDriverTx struct {
	rec *txRecorder
}

func (t *fakeDriverTx) Commit() error {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.commits++
	return nil
}

func (t *fakeDriverTx) Rollback() error {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.rollbacks++
	return nil
}

// fakeDriverConn implements driver.Conn. Statements are never prepared in
// these tests; only the transaction lifecycle is exercised, since the task
// store itself is faked.
type fakeDriverConn struct {
	rec *txRecorder
}

func (c *fakeDriverConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("fake driver does not prepare statements")
}

func (c *fakeDriverConn) Close() error { return nil }

func (c *fakeDriverConn) Begin() (driver.Tx, error) {
	return &fakeDriverTx{rec: c.rec}, nil
}

type fakeDriver struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) {
	return nil, errors.New("fake driver opens through a connector")
}

type fakeConnector struct {
	rec *txRecorder
}

func (c *fakeConnector) Connect(ctx context.Context) (driver.Conn, error) {
	return &fakeDriverConn{rec: c.rec}, nil
}

func (c *fakeConnector) Driver() driver.Driver { return fakeDriver{} }

// newFakeDB returns a *sql.DB whose transactions begin, commit, and roll
// back in memory, plus a recorder of those outcomes. It lets service tests
// drive mutations through their real transaction wrapper without a running
// database.
func newFakeDB() (*sql.DB, *txRecorder) {
	rec := &txRecorder{}
	return sql.OpenDB(&fakeConnector{rec: rec}), rec
}
