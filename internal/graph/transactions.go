package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

// ItemInput describes a transaction or a function. On update a zero ModuleID
// keeps the current module.
type ItemInput struct {
	Name        string
	Description string
	ModuleID    uuid.UUID
}

func (s *Service) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error listing transactions")
	}
	return transactions, nil
}

func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, s.lookup(err, ErrTransactionNotFound, "error fetching transaction")
	}
	return transaction, nil
}

func (s *Service) CreateTransaction(ctx context.Context, input ItemInput) (*models.Transaction, error) {
	module, err := s.store.GetModuleByID(ctx, input.ModuleID)
	if err != nil {
		return nil, s.lookup(err, ErrModuleNotFound, "error creating transaction")
	}

	if err := s.transactionNameFree(ctx, uuid.Nil, module.ID, input.Name); err != nil {
		return nil, apperr.Handle(s.log, err, "error creating transaction")
	}

	transaction := &models.Transaction{
		ModuleID:    module.ID,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.store.CreateTransaction(ctx, transaction); err != nil {
		return nil, apperr.Handle(s.log, err, "error creating transaction")
	}
	transaction.Module = module
	return transaction, nil
}

func (s *Service) UpdateTransaction(ctx context.Context, id uuid.UUID, input ItemInput) (*models.Transaction, error) {
	transaction, err := s.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, s.lookup(err, ErrTransactionNotFound, "error updating transaction")
	}
	if input.ModuleID != uuid.Nil && input.ModuleID != transaction.ModuleID {
		return nil, ErrModuleChange
	}

	if err := s.transactionNameFree(ctx, id, transaction.ModuleID, input.Name); err != nil {
		return nil, apperr.Handle(s.log, err, "error updating transaction")
	}

	module := transaction.Module
	transaction.Name = input.Name
	transaction.Description = input.Description
	transaction.Module = nil
	if err := s.store.UpdateTransaction(ctx, transaction); err != nil {
		return nil, apperr.Handle(s.log, err, "error updating transaction")
	}
	transaction.Module = module
	return transaction, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetTransactionByID(ctx, id); err != nil {
		return s.lookup(err, ErrTransactionNotFound, "error deleting transaction")
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return s.lookup(err, ErrTransactionNotFound, "error deleting transaction")
	}
	return nil
}

func (s *Service) transactionNameFree(ctx context.Context, self, moduleID uuid.UUID, name string) error {
	existing, err := s.store.GetTransactionByName(ctx, moduleID, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return ErrTransactionNameTaken
	}
	return nil
}
