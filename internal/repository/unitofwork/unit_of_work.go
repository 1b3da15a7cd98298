package unitofwork

import (
	"context"
	"fmt"

	"notefiber-editor-be/internal/repository/contract"
)

// RepositoryFactory hands out a fresh unit of work per operation.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// UnitOfWork scopes repositories to one optional transaction. Repositories
// obtained after Begin run inside it.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NoteRepository() contract.NoteRepository
	VaultRepository() contract.VaultRepository
}

// InTransaction runs fn inside a transaction. It commits when fn returns nil
// and rolls back otherwise, returning fn's error untouched so callers can
// still match sentinels with errors.Is.
func InTransaction(ctx context.Context, factory RepositoryFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
