// Package graph administers the module → transaction → function hierarchy and
// the grants profiles hold over it.
//
// A function grant always sits under a transaction grant, which in turn sits
// under a grant of the transaction's module. Every write keeps that chain
// intact for each profile.
package graph

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

var (
	ErrModuleNotFound      = apperr.NotFound("module not found")
	ErrTransactionNotFound = apperr.NotFound("transaction not found")
	ErrFunctionNotFound    = apperr.NotFound("function not found")
	ErrProfileNotFound     = apperr.NotFound("profile not found")
	ErrUserNotFound        = apperr.NotFound("user not found")

	ErrSomeModulesNotFound      = apperr.NotFound("one or more modules were not found")
	ErrSomeTransactionsNotFound = apperr.NotFound("one or more transactions were not found")
	ErrSomeFunctionsNotFound    = apperr.NotFound("one or more functions were not found")

	ErrModuleNameTaken      = apperr.Conflict("a module with this name already exists")
	ErrTransactionNameTaken = apperr.Conflict("a transaction with this name already exists in the module")
	ErrFunctionNameTaken    = apperr.Conflict("a function with this name already exists in the module")
	ErrProfileNameTaken     = apperr.Conflict("a profile with this name already exists")
	ErrProfileInUse         = apperr.Conflict("profile is assigned to one or more users")

	ErrNoIDs        = apperr.BadRequest("at least one id is required")
	ErrModuleChange = apperr.BadRequest("module of an existing transaction or function cannot be changed")

	ErrModuleNotGranted      = apperr.Unauthorized("module is not granted to the profile")
	ErrTransactionNotGranted = apperr.Unauthorized("transaction is not granted to the profile")
	ErrFunctionOutsideModule = apperr.Unauthorized("function does not belong to the transaction's module")

	ErrModuleGrantNotFound      = apperr.NotFound("profile does not hold this module")
	ErrTransactionGrantNotFound = apperr.NotFound("profile does not hold this transaction")
	ErrFunctionGrantNotFound    = apperr.NotFound("profile does not hold this function for the transaction")
)

type Service struct {
	store *store.Store
	log   *slog.Logger
}

func NewService(st *store.Store, log *slog.Logger) *Service {
	return &Service{store: st, log: log}
}

// lookup maps store.ErrNotFound to notFound and hands anything else to apperr.Handle.
func (s *Service) lookup(err error, notFound error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return apperr.Handle(s.log, err, op)
}

// dedupe keeps the first occurrence of each id.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
