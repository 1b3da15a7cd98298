package unitofwork

import (
	"context"
	"errors"

	"notefiber-editor-be/internal/repository/contract"
	"notefiber-editor-be/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	ErrTransactionStarted = errors.New("transaction already started")
	ErrNoTransaction      = errors.New("no transaction in progress")
)

type gormFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormFactory{db: db}
}

func (f *gormFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &gormUnitOfWork{db: f.db.WithContext(ctx)}
}

type gormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

func (u *gormUnitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *gormUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTransactionStarted
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *gormUnitOfWork) Commit() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *gormUnitOfWork) Rollback() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *gormUnitOfWork) NoteRepository() contract.NoteRepository {
	return implementation.NewNoteRepository(u.conn())
}

func (u *gormUnitOfWork) VaultRepository() contract.VaultRepository {
	return implementation.NewVaultRepository(u.conn())
}
