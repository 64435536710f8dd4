package handlers

import (
	"net/http"

	"github.com/hugh/go-gatekeeper/internal/api/dto"
	"github.com/hugh/go-gatekeeper/internal/api/validation"
	"github.com/hugh/go-gatekeeper/internal/graph"
)

type TransactionHandler struct {
	graph *graph.Service
}

func NewTransactionHandler(graphService *graph.Service) *TransactionHandler {
	return &TransactionHandler{graph: graphService}
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.graph.ListTransactions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	transaction, err := h.graph.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ItemRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	transaction, err := h.graph.CreateTransaction(r.Context(), graph.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		ModuleID:    req.ModuleID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.UpdateItemRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	transaction, err := h.graph.UpdateTransaction(r.Context(), id, graph.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		ModuleID:    req.ModuleID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "transaction deleted")
}
