package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

// GrantModules grants every listed module to the profile. Either all ids are
// applied or none are.
func (s *Service) GrantModules(ctx context.Context, profileID uuid.UUID, moduleIDs []uuid.UUID) (int, error) {
	if len(moduleIDs) == 0 {
		return 0, ErrNoIDs
	}
	ids := dedupe(moduleIDs)

	if _, err := s.store.GetProfileByID(ctx, profileID); err != nil {
		return 0, s.lookup(err, ErrProfileNotFound, "error granting modules")
	}

	if err := s.store.GrantModules(ctx, profileID, ids); err != nil {
		return 0, s.grantError(err, ErrSomeModulesNotFound, ErrModuleNotGranted, "error granting modules")
	}
	return len(ids), nil
}

// GrantTransactions requires each transaction's module to be granted already.
func (s *Service) GrantTransactions(ctx context.Context, profileID uuid.UUID, transactionIDs []uuid.UUID) (int, error) {
	if len(transactionIDs) == 0 {
		return 0, ErrNoIDs
	}
	ids := dedupe(transactionIDs)

	if _, err := s.store.GetProfileByID(ctx, profileID); err != nil {
		return 0, s.lookup(err, ErrProfileNotFound, "error granting transactions")
	}

	if err := s.store.GrantTransactions(ctx, profileID, ids); err != nil {
		return 0, s.grantError(err, ErrSomeTransactionsNotFound, ErrModuleNotGranted, "error granting transactions")
	}
	return len(ids), nil
}

// GrantFunctions grants functions within a transaction the profile already
// holds. Every function must belong to the transaction's module.
func (s *Service) GrantFunctions(ctx context.Context, profileID, transactionID uuid.UUID, functionIDs []uuid.UUID) (int, error) {
	if len(functionIDs) == 0 {
		return 0, ErrNoIDs
	}
	ids := dedupe(functionIDs)

	if _, err := s.store.GetProfileByID(ctx, profileID); err != nil {
		return 0, s.lookup(err, ErrProfileNotFound, "error granting functions")
	}
	if _, err := s.store.GetTransactionByID(ctx, transactionID); err != nil {
		return 0, s.lookup(err, ErrTransactionNotFound, "error granting functions")
	}
	if err := s.store.GrantFunctions(ctx, profileID, transactionID, ids); err != nil {
		return 0, s.grantError(err, ErrSomeFunctionsNotFound, ErrTransactionNotGranted, "error granting functions")
	}
	return len(ids), nil
}

// grantError maps the store's precondition failures, which are re-checked
// inside the grant's own transaction.
func (s *Service) grantError(err, notFound, notGranted error, op string) error {
	switch {
	case errors.Is(err, store.ErrNotGranted):
		return notGranted
	case errors.Is(err, store.ErrOutsideModule):
		return ErrFunctionOutsideModule
	}
	return s.lookup(err, notFound, op)
}

// RevokeModule also drops the profile's transaction and function grants under the module.
func (s *Service) RevokeModule(ctx context.Context, profileID, moduleID uuid.UUID) error {
	if _, err := s.store.GetProfileModule(ctx, profileID, moduleID); err != nil {
		return s.lookup(err, ErrModuleGrantNotFound, "error revoking module")
	}
	if err := s.store.RevokeModule(ctx, profileID, moduleID); err != nil {
		return s.lookup(err, ErrModuleGrantNotFound, "error revoking module")
	}
	s.log.Info("module revoked", "profile_id", profileID, "module_id", moduleID)
	return nil
}

func (s *Service) RevokeTransaction(ctx context.Context, profileID, transactionID uuid.UUID) error {
	if _, err := s.store.GetProfileTransaction(ctx, profileID, transactionID); err != nil {
		return s.lookup(err, ErrTransactionGrantNotFound, "error revoking transaction")
	}
	if err := s.store.RevokeTransaction(ctx, profileID, transactionID); err != nil {
		return s.lookup(err, ErrTransactionGrantNotFound, "error revoking transaction")
	}
	return nil
}

func (s *Service) RevokeFunction(ctx context.Context, profileID, transactionID, functionID uuid.UUID) error {
	if _, err := s.store.GetProfileFunction(ctx, profileID, transactionID, functionID); err != nil {
		return s.lookup(err, ErrFunctionGrantNotFound, "error revoking function")
	}
	if err := s.store.RevokeFunction(ctx, profileID, transactionID, functionID); err != nil {
		return s.lookup(err, ErrFunctionGrantNotFound, "error revoking function")
	}
	return nil
}

func (s *Service) AvailableModules(ctx context.Context, profileID uuid.UUID) ([]models.Module, error) {
	if _, err := s.store.GetProfileByID(ctx, profileID); err != nil {
		return nil, s.lookup(err, ErrProfileNotFound, "error listing available modules")
	}
	modules, err := s.store.AvailableModules(ctx, profileID)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error listing available modules")
	}
	return modules, nil
}

// AvailableTransactions lists the module's transactions the profile could
// still be granted. The module itself must already be granted.
func (s *Service) AvailableTransactions(ctx context.Context, profileID, moduleID uuid.UUID) ([]models.Transaction, error) {
	if _, err := s.store.GetProfileByID(ctx, profileID); err != nil {
		return nil, s.lookup(err, ErrProfileNotFound, "error listing available transactions")
	}
	if _, err := s.store.GetModuleByID(ctx, moduleID); err != nil {
		return nil, s.lookup(err, ErrModuleNotFound, "error listing available transactions")
	}
	if _, err := s.store.GetProfileModule(ctx, profileID, moduleID); err != nil {
		return nil, s.lookup(err, ErrModuleNotGranted, "error listing available transactions")
	}

	transactions, err := s.store.AvailableTransactions(ctx, profileID, moduleID)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error listing available transactions")
	}
	return transactions, nil
}

// AvailableFunctions lists functions of the transaction's module that the
// profile does not yet hold for that transaction.
func (s *Service) AvailableFunctions(ctx context.Context, profileID, transactionID uuid.UUID) ([]models.Function, error) {
	transaction, err := s.store.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, s.lookup(err, ErrTransactionNotFound, "error listing available functions")
	}
	if _, err := s.store.GetProfileByID(ctx, profileID); err != nil {
		return nil, s.lookup(err, ErrProfileNotFound, "error listing available functions")
	}
	if _, err := s.store.GetProfileTransaction(ctx, profileID, transactionID); err != nil {
		return nil, s.lookup(err, ErrTransactionNotGranted, "error listing available functions")
	}

	functions, err := s.store.AvailableFunctions(ctx, profileID, transactionID, transaction.ModuleID)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error listing available functions")
	}
	return functions, nil
}
