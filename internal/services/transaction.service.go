package services

import (
	"context"

	"clinicdesk/internal/database"
	"clinicdesk/internal/logger"

	"gorm.io/gorm"
)

type transactionKey struct{}

type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("TransactionService"),
	}
}

// Execute runs fn inside one transaction. Repositories called with the ctx
// handed to fn pick the transaction up through GetTransaction.
func (s *TransactionService) Execute(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	log := s.log.Function("Execute")

	tx := s.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	defer func() {
		if commitErr := database.TXDefer(tx, log); commitErr != nil && err == nil {
			err = commitErr
		}
	}()

	if err := fn(context.WithValue(ctx, transactionKey{}, tx)); err != nil {
		_ = tx.AddError(err)
		return err
	}

	return nil
}

func GetTransaction(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(transactionKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}
