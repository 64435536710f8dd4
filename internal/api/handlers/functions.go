package handlers

import (
	"net/http"

	"github.com/hugh/go-gatekeeper/internal/api/dto"
	"github.com/hugh/go-gatekeeper/internal/api/validation"
	"github.com/hugh/go-gatekeeper/internal/graph"
)

type FunctionHandler struct {
	graph *graph.Service
}

func NewFunctionHandler(graphService *graph.Service) *FunctionHandler {
	return &FunctionHandler{graph: graphService}
}

func (h *FunctionHandler) List(w http.ResponseWriter, r *http.Request) {
	functions, err := h.graph.ListFunctions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, functions)
}

func (h *FunctionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	function, err := h.graph.GetFunction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, function)
}

func (h *FunctionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ItemRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	function, err := h.graph.CreateFunction(r.Context(), graph.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		ModuleID:    req.ModuleID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, function)
}

func (h *FunctionHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	function, err := h.graph.UpdateFunction(r.Context(), id, graph.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		ModuleID:    req.ModuleID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, function)
}

func (h *FunctionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.DeleteFunction(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "function deleted")
}

// Available lists the functions of the transaction's module not yet granted
// to the profile under that transaction.
func (h *FunctionHandler) Available(w http.ResponseWriter, r *http.Request) {
	ids, err := uuidParams(r, "profile_id", "transaction_id")
	if err != nil {
		writeError(w, err)
		return
	}

	functions, err := h.graph.AvailableFunctions(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, functions)
}

func (h *FunctionHandler) Grant(w http.ResponseWriter, r *http.Request) {
	ids, err := uuidParams(r, "profile_id", "transaction_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.GrantFunctionsRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	count, err := h.graph.GrantFunctions(r.Context(), ids[0], ids[1], req.FunctionIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CountResponse{Message: "functions granted", Count: count})
}

func (h *FunctionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ids, err := uuidParams(r, "id", "profile_id", "transaction_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.RevokeFunction(r.Context(), ids[1], ids[2], ids[0]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "function grant removed")
}
