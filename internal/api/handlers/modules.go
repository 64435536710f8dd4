package handlers

import (
	"net/http"

	"github.com/hugh/go-gatekeeper/internal/api/dto"
	"github.com/hugh/go-gatekeeper/internal/api/middleware"
	"github.com/hugh/go-gatekeeper/internal/api/validation"
	"github.com/hugh/go-gatekeeper/internal/graph"
)

type ModuleHandler struct {
	graph *graph.Service
}

func NewModuleHandler(graphService *graph.Service) *ModuleHandler {
	return &ModuleHandler{graph: graphService}
}

func moduleInput(req dto.ModuleRequest) graph.ModuleInput {
	return graph.ModuleInput{
		Name:            req.Name,
		Description:     req.Description,
		TextColor:       req.TextColor,
		BackgroundColor: req.BackgroundColor,
	}
}

func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	modules, err := h.graph.ListModules(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

func (h *ModuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	module, err := h.graph.GetModule(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}

func (h *ModuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ModuleRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	module, err := h.graph.CreateModule(r.Context(), moduleInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, module)
}

func (h *ModuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.ModuleRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	module, err := h.graph.UpdateModule(r.Context(), id, moduleInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}

func (h *ModuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.DeleteModule(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "module deleted")
}

// UserModules returns the caller's granted module tree.
func (h *ModuleHandler) UserModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.graph.UserModules(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

func (h *ModuleHandler) UserModule(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	module, err := h.graph.UserModule(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}
