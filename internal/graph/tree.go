package graph

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

type FunctionNode struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type TransactionNode struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Functions   []FunctionNode `json:"functions"`
}

type ModuleNode struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	TextColor       string            `json:"text_color"`
	BackgroundColor string            `json:"background_color"`
	Transactions    []TransactionNode `json:"transactions"`
}

// UserModules returns every module granted to the user's profile, each with
// the granted transactions and functions beneath it.
func (s *Service) UserModules(ctx context.Context, userID uuid.UUID) ([]ModuleNode, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, s.lookup(err, ErrUserNotFound, "error fetching user modules")
	}

	modules, err := s.grantTree(ctx, user.ProfileID, nil)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error fetching user modules")
	}
	return modules, nil
}

// UserModule returns one granted module. Modules the caller's profile does not
// hold are reported as not found.
func (s *Service) UserModule(ctx context.Context, userID, moduleID uuid.UUID) (*ModuleNode, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, s.lookup(err, ErrUserNotFound, "error fetching user module")
	}

	modules, err := s.grantTree(ctx, user.ProfileID, &moduleID)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error fetching user module")
	}
	if len(modules) == 0 {
		return nil, ErrModuleNotFound
	}
	return &modules[0], nil
}

// grantTree assembles the profile's grants from three flat reads: granted
// modules, granted transactions within them, then function grants within
// those transactions.
func (s *Service) grantTree(ctx context.Context, profileID uuid.UUID, moduleID *uuid.UUID) ([]ModuleNode, error) {
	modules, err := s.store.GrantedModules(ctx, profileID, moduleID)
	if err != nil {
		return nil, err
	}
	nodes := make([]ModuleNode, 0, len(modules))
	if len(modules) == 0 {
		return nodes, nil
	}

	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}

	transactions, err := s.store.GrantedTransactions(ctx, profileID, moduleIDs)
	if err != nil {
		return nil, err
	}
	transactionIDs := make([]uuid.UUID, 0, len(transactions))
	for _, t := range transactions {
		transactionIDs = append(transactionIDs, t.ID)
	}

	rows, err := s.store.GrantedFunctionRows(ctx, profileID, transactionIDs)
	if err != nil {
		return nil, err
	}
	granted := make(map[uuid.UUID]map[uuid.UUID]struct{}, len(transactions))
	functionIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if granted[r.TransactionID] == nil {
			granted[r.TransactionID] = make(map[uuid.UUID]struct{})
		}
		granted[r.TransactionID][r.FunctionID] = struct{}{}
		functionIDs = append(functionIDs, r.FunctionID)
	}

	functions, err := s.store.GetFunctionsByIDs(ctx, dedupe(functionIDs))
	if err != nil {
		return nil, err
	}

	byModule := make(map[uuid.UUID][]TransactionNode, len(modules))
	for _, t := range transactions {
		node := TransactionNode{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Functions:   make([]FunctionNode, 0),
		}
		for _, f := range functions {
			if _, ok := granted[t.ID][f.ID]; ok && f.ModuleID == t.ModuleID {
				node.Functions = append(node.Functions, FunctionNode{ID: f.ID, Name: f.Name, Description: f.Description})
			}
		}
		byModule[t.ModuleID] = append(byModule[t.ModuleID], node)
	}

	for _, m := range modules {
		children := byModule[m.ID]
		if children == nil {
			children = make([]TransactionNode, 0)
		}
		nodes = append(nodes, ModuleNode{
			ID:              m.ID,
			Name:            m.Name,
			Description:     m.Description,
			TextColor:       m.TextColor,
			BackgroundColor: m.BackgroundColor,
			Transactions:    children,
		})
	}
	return nodes, nil
}
