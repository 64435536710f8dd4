package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

func (s *Service) ListFunctions(ctx context.Context) ([]models.Function, error) {
	functions, err := s.store.ListFunctions(ctx)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error listing functions")
	}
	return functions, nil
}

func (s *Service) GetFunction(ctx context.Context, id uuid.UUID) (*models.Function, error) {
	function, err := s.store.GetFunctionByID(ctx, id)
	if err != nil {
		return nil, s.lookup(err, ErrFunctionNotFound, "error fetching function")
	}
	return function, nil
}

func (s *Service) CreateFunction(ctx context.Context, input ItemInput) (*models.Function, error) {
	module, err := s.store.GetModuleByID(ctx, input.ModuleID)
	if err != nil {
		return nil, s.lookup(err, ErrModuleNotFound, "error creating function")
	}

	if err := s.functionNameFree(ctx, uuid.Nil, module.ID, input.Name); err != nil {
		return nil, apperr.Handle(s.log, err, "error creating function")
	}

	function := &models.Function{
		ModuleID:    module.ID,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.store.CreateFunction(ctx, function); err != nil {
		return nil, apperr.Handle(s.log, err, "error creating function")
	}
	function.Module = module
	return function, nil
}

func (s *Service) UpdateFunction(ctx context.Context, id uuid.UUID, input ItemInput) (*models.Function, error) {
	function, err := s.store.GetFunctionByID(ctx, id)
	if err != nil {
		return nil, s.lookup(err, ErrFunctionNotFound, "error updating function")
	}
	if input.ModuleID != uuid.Nil && input.ModuleID != function.ModuleID {
		return nil, ErrModuleChange
	}

	if err := s.functionNameFree(ctx, id, function.ModuleID, input.Name); err != nil {
		return nil, apperr.Handle(s.log, err, "error updating function")
	}

	module := function.Module
	function.Name = input.Name
	function.Description = input.Description
	function.Module = nil
	if err := s.store.UpdateFunction(ctx, function); err != nil {
		return nil, apperr.Handle(s.log, err, "error updating function")
	}
	function.Module = module
	return function, nil
}

func (s *Service) DeleteFunction(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetFunctionByID(ctx, id); err != nil {
		return s.lookup(err, ErrFunctionNotFound, "error deleting function")
	}
	if err := s.store.DeleteFunction(ctx, id); err != nil {
		return s.lookup(err, ErrFunctionNotFound, "error deleting function")
	}
	return nil
}

func (s *Service) functionNameFree(ctx context.Context, self, moduleID uuid.UUID, name string) error {
	existing, err := s.store.GetFunctionByName(ctx, moduleID, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return ErrFunctionNameTaken
	}
	return nil
}
