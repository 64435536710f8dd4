package handlers

import (
	"net/http"

	"github.com/hugh/go-gatekeeper/internal/api/dto"
	"github.com/hugh/go-gatekeeper/internal/api/validation"
	"github.com/hugh/go-gatekeeper/internal/graph"
)

type ProfileHandler struct {
	graph *graph.Service
}

func NewProfileHandler(graphService *graph.Service) *ProfileHandler {
	return &ProfileHandler{graph: graphService}
}

func profileInput(req dto.ProfileRequest) graph.ProfileInput {
	return graph.ProfileInput{
		Name:        req.Name,
		Description: req.Description,
		IsAdmin:     req.IsAdmin,
	}
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.graph.ListProfiles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// Get returns the profile with its full grant tree.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.graph.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.graph.CreateProfile(r.Context(), profileInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.ProfileRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.graph.UpdateProfile(r.Context(), id, profileInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.DeleteProfile(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "profile deleted")
}

// AvailableModules lists modules not yet granted to the profile.
func (h *ProfileHandler) AvailableModules(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	modules, err := h.graph.AvailableModules(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

// AvailableTransactions lists the module's transactions not yet granted to the profile.
func (h *ProfileHandler) AvailableTransactions(w http.ResponseWriter, r *http.Request) {
	ids, err := uuidParams(r, "id", "module_id")
	if err != nil {
		writeError(w, err)
		return
	}

	transactions, err := h.graph.AvailableTransactions(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (h *ProfileHandler) GrantModules(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.GrantModulesRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	count, err := h.graph.GrantModules(r.Context(), id, req.ModuleIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CountResponse{Message: "modules granted", Count: count})
}

func (h *ProfileHandler) GrantTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.GrantTransactionsRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	count, err := h.graph.GrantTransactions(r.Context(), id, req.TransactionIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CountResponse{Message: "transactions granted", Count: count})
}

// RevokeModule removes the module grant together with the profile's
// transaction and function grants beneath it.
func (h *ProfileHandler) RevokeModule(w http.ResponseWriter, r *http.Request) {
	ids, err := uuidParams(r, "profile_id", "module_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.RevokeModule(r.Context(), ids[0], ids[1]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "module grant removed")
}

func (h *ProfileHandler) RevokeTransaction(w http.ResponseWriter, r *http.Request) {
	ids, err := uuidParams(r, "profile_id", "transaction_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.RevokeTransaction(r.Context(), ids[0], ids[1]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "transaction grant removed")
}
