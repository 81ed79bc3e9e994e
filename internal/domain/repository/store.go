package repository

import "context"

type Store interface {
	Ping(ctx context.Context) error
	Close()
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ChangeKind string

const (
	ChangeCreate ChangeKind = "CREATE"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// Change is one pending mutation recorded inside a unit of work. Before and
// After hold pointers to entity values; Before is nil for creates and After
// is nil for deletes.
type Change struct {
	Kind       ChangeKind
	Table      string
	PrimaryKey any
	Before     any
	After      any
}

// UnitOfWork is the set of changes made by one transaction, plus the
// callbacks to run once its outcome is known.
type UnitOfWork interface {
	Changes() []Change
	AfterCommit(fn func(ctx context.Context))
	AfterRollback(fn func())
}

type CommitHook func(ctx context.Context, uow UnitOfWork)

// ChangeTracker is implemented by stores that can record mutations on a
// set of tables and expose them before commit.
type ChangeTracker interface {
	Track(tables ...string)
	OnBeforeCommit(hook CommitHook)
}
