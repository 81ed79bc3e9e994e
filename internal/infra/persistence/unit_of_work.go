package persistence

import (
	"context"
	"reflect"
	"sync"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

type unitOfWorkKey struct{}

const beforeSnapshotKey = "uow:before_snapshot"

type unitOfWork struct {
	mu            sync.Mutex
	tracked       map[string]struct{}
	changes       []repository.Change
	afterCommit   []func(ctx context.Context)
	afterRollback []func()
}

var _ repository.UnitOfWork = (*unitOfWork)(nil)

func newUnitOfWork(tracked map[string]struct{}) *unitOfWork {
	return &unitOfWork{tracked: tracked}
}

func withUnitOfWork(ctx context.Context, uow *unitOfWork) context.Context {
	return context.WithValue(ctx, unitOfWorkKey{}, uow)
}

func unitOfWorkFrom(ctx context.Context) *unitOfWork {
	if ctx == nil {
		return nil
	}
	uow, _ := ctx.Value(unitOfWorkKey{}).(*unitOfWork)
	return uow
}

func (u *unitOfWork) Changes() []repository.Change {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]repository.Change(nil), u.changes...)
}

func (u *unitOfWork) AfterCommit(fn func(ctx context.Context)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.afterCommit = append(u.afterCommit, fn)
}

func (u *unitOfWork) AfterRollback(fn func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.afterRollback = append(u.afterRollback, fn)
}

func (u *unitOfWork) tracks(table string) bool {
	_, ok := u.tracked[table]
	return ok
}

func (u *unitOfWork) record(change repository.Change) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.changes = append(u.changes, change)
}

func (u *unitOfWork) committed(ctx context.Context) {
	u.mu.Lock()
	fns := u.afterCommit
	u.afterCommit, u.afterRollback, u.changes = nil, nil, nil
	u.mu.Unlock()
	for _, fn := range fns {
		fn(ctx)
	}
}

func (u *unitOfWork) rolledBack() {
	u.mu.Lock()
	fns := u.afterRollback
	u.afterCommit, u.afterRollback, u.changes = nil, nil, nil
	u.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func registerChangeCallbacks(gdb *gorm.DB) error {
	cb := gdb.Callback()
	if err := cb.Create().After("gorm:create").Register("uow:capture_create", captureCreate); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("uow:load_before_update", loadBeforeUpdate); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("uow:capture_update", captureUpdate); err != nil {
		return err
	}
	return cb.Delete().Before("gorm:delete").Register("uow:capture_delete", captureDelete)
}

func trackedStatement(db *gorm.DB) (*unitOfWork, bool) {
	if db.Error != nil || db.Statement == nil || db.Statement.Schema == nil {
		return nil, false
	}
	uow := unitOfWorkFrom(db.Statement.Context)
	if uow == nil || !uow.tracks(db.Statement.Schema.Table) {
		return nil, false
	}
	return uow, true
}

func captureCreate(db *gorm.DB) {
	uow, ok := trackedStatement(db)
	if !ok {
		return
	}
	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			recordCreate(db, uow, reflect.Indirect(rv.Index(i)))
		}
	case reflect.Struct:
		recordCreate(db, uow, rv)
	}
}

func recordCreate(db *gorm.DB, uow *unitOfWork, rv reflect.Value) {
	pk, ok := primaryKeyOf(db, rv)
	if !ok {
		return
	}
	uow.record(repository.Change{
		Kind:       repository.ChangeCreate,
		Table:      db.Statement.Schema.Table,
		PrimaryKey: pk,
		After:      copyOf(rv),
	})
}

func loadBeforeUpdate(db *gorm.DB) {
	if _, ok := trackedStatement(db); !ok {
		return
	}
	pk, ok := primaryKeyOf(db, db.Statement.ReflectValue)
	if !ok {
		return
	}
	before, err := loadRow(db, pk)
	if err != nil {
		return
	}
	db.Statement.Settings.Store(beforeSnapshotKey, before)
}

func captureUpdate(db *gorm.DB) {
	uow, ok := trackedStatement(db)
	if !ok || db.RowsAffected == 0 {
		return
	}
	before, ok := db.Statement.Settings.Load(beforeSnapshotKey)
	if !ok {
		return
	}
	pk, ok := primaryKeyOf(db, db.Statement.ReflectValue)
	if !ok {
		return
	}
	after, err := loadRow(db, pk)
	if err != nil {
		return
	}
	uow.record(repository.Change{
		Kind:       repository.ChangeUpdate,
		Table:      db.Statement.Schema.Table,
		PrimaryKey: pk,
		Before:     before,
		After:      after,
	})
}

func captureDelete(db *gorm.DB) {
	uow, ok := trackedStatement(db)
	if !ok {
		return
	}
	rv := db.Statement.ReflectValue
	if rv.Kind() != reflect.Struct {
		return
	}
	pk, ok := primaryKeyOf(db, rv)
	if !ok {
		return
	}
	before, err := loadRow(db, pk)
	if err != nil {
		before = copyOf(rv)
	}
	uow.record(repository.Change{
		Kind:       repository.ChangeDelete,
		Table:      db.Statement.Schema.Table,
		PrimaryKey: pk,
		Before:     before,
	})
}

func primaryKeyOf(db *gorm.DB, rv reflect.Value) (any, bool) {
	field := db.Statement.Schema.PrioritizedPrimaryField
	if field == nil || rv.Kind() != reflect.Struct {
		return nil, false
	}
	value, zero := field.ValueOf(db.Statement.Context, rv)
	if zero {
		return nil, false
	}
	return value, true
}

// loadRow reads the current row on the statement's connection so the read
// sees the transaction's own writes.
func loadRow(db *gorm.DB, pk any) (any, error) {
	sch := db.Statement.Schema
	dest := reflect.New(sch.ModelType).Interface()
	err := db.Session(&gorm.Session{NewDB: true}).
		Table(sch.Table).
		Where(clause.Eq{Column: clause.Column{Name: primaryColumn(sch)}, Value: pk}).
		Take(dest).Error
	if err != nil {
		return nil, err
	}
	return dest, nil
}

func primaryColumn(sch *schema.Schema) string {
	return sch.PrioritizedPrimaryField.DBName
}

func copyOf(rv reflect.Value) any {
	cp := reflect.New(rv.Type())
	cp.Elem().Set(rv)
	return cp.Interface()
}
