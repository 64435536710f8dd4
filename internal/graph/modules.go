package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

type ModuleInput struct {
	Name            string
	Description     string
	TextColor       string
	BackgroundColor string
}

func (s *Service) ListModules(ctx context.Context) ([]models.Module, error) {
	modules, err := s.store.ListModules(ctx)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error listing modules")
	}
	return modules, nil
}

// GetModule returns the module with its transactions and functions.
func (s *Service) GetModule(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	module, err := s.store.GetModuleWithChildren(ctx, id)
	if err != nil {
		return nil, s.lookup(err, ErrModuleNotFound, "error fetching module")
	}
	return module, nil
}

func (s *Service) CreateModule(ctx context.Context, input ModuleInput) (*models.Module, error) {
	if err := s.moduleNameFree(ctx, uuid.Nil, input.Name); err != nil {
		return nil, apperr.Handle(s.log, err, "error creating module")
	}

	module := &models.Module{
		Name:            input.Name,
		Description:     input.Description,
		TextColor:       input.TextColor,
		BackgroundColor: input.BackgroundColor,
	}
	if err := s.store.CreateModule(ctx, module); err != nil {
		return nil, apperr.Handle(s.log, err, "error creating module")
	}
	return module, nil
}

func (s *Service) UpdateModule(ctx context.Context, id uuid.UUID, input ModuleInput) (*models.Module, error) {
	module, err := s.store.GetModuleByID(ctx, id)
	if err != nil {
		return nil, s.lookup(err, ErrModuleNotFound, "error updating module")
	}

	if err := s.moduleNameFree(ctx, id, input.Name); err != nil {
		return nil, apperr.Handle(s.log, err, "error updating module")
	}

	module.Name = input.Name
	module.Description = input.Description
	module.TextColor = input.TextColor
	module.BackgroundColor = input.BackgroundColor
	if err := s.store.UpdateModule(ctx, module); err != nil {
		return nil, apperr.Handle(s.log, err, "error updating module")
	}
	return module, nil
}

func (s *Service) DeleteModule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetModuleByID(ctx, id); err != nil {
		return s.lookup(err, ErrModuleNotFound, "error deleting module")
	}
	if err := s.store.DeleteModule(ctx, id); err != nil {
		return s.lookup(err, ErrModuleNotFound, "error deleting module")
	}
	s.log.Info("module deleted", "module_id", id)
	return nil
}

func (s *Service) moduleNameFree(ctx context.Context, self uuid.UUID, name string) error {
	existing, err := s.store.GetModuleByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return ErrModuleNameTaken
	}
	return nil
}
