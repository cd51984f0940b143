package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/api/request"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/api/response"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/core"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/metrics"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

type WorkflowState struct {
	svc *core.WorkflowStateService
}

func NewWorkflowState(svc *core.WorkflowStateService) *WorkflowState {
	return &WorkflowState{svc: svc}
}

// Initialize creates the workflow state for an entity at the first step of its
// module's default template. Idempotent: re-posting for the same entity
// returns the existing state.
//
//	@Summary		Initialize workflow state for an entity
//	@Tags			WorkflowStates
//	@Security		ApiKeyAuth
//	@Param			body body request.InitializeWorkflowState true "Entity reference"
//	@Success		201 {object} model.EntityWorkflowState
//	@Failure		422 {object} response.ErrorResponse
//	@Router			/workflow-states [post]
func (h *WorkflowState) Initialize(w http.ResponseWriter, r *http.Request) {
	var req request.InitializeWorkflowState
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.svc.Initialize(r.Context(), req.Module, req.EntityID, req.OrganizationID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, st)
}

func (h *WorkflowState) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, st)
}

// GetByEntity looks up the state by module + entity_id query parameters.
func (h *WorkflowState) GetByEntity(w http.ResponseWriter, r *http.Request) {
	module := r.URL.Query().Get("module")
	entityID := r.URL.Query().Get("entity_id")
	if !validModule(module) || entityID == "" {
		response.WriteError(w, http.StatusBadRequest, "module and entity_id query parameters are required")
		return
	}

	st, err := h.svc.GetByEntity(r.Context(), module, entityID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, st)
}

// Transition advances or rejects a workflow state. The request carries the
// caller's last-read revision; a stale revision is a 409 and the caller should
// re-read and retry.
//
//	@Summary		Advance or reject a workflow state
//	@Tags			WorkflowStates
//	@Security		ApiKeyAuth
//	@Param			id path string true "State ID"
//	@Param			body body request.TransitionWorkflowState true "Action, actor roles and revision"
//	@Success		200 {object} model.EntityWorkflowState
//	@Failure		403 {object} response.ErrorResponse
//	@Failure		409 {object} response.ErrorResponse
//	@Failure		422 {object} response.ErrorResponse
//	@Router			/workflow-states/{id}/transition [post]
func (h *WorkflowState) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.TransitionWorkflowState
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.svc.Transition(r.Context(), id, req.Action, req.ActorRoles, req.Revision, req.TargetStepID)
	if err != nil {
		metrics.TransitionsTotal.WithLabelValues(req.Action, "error").Inc()
		response.WriteServiceError(w, err)
		return
	}
	metrics.TransitionsTotal.WithLabelValues(req.Action, "ok").Inc()

	response.WriteJSON(w, http.StatusOK, st)
}

func (h *WorkflowState) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.ReassignWorkflowState
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.svc.Reassign(r.Context(), id, req.UserID, req.ActorRoles, req.Revision)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, st)
}

func (h *WorkflowState) Progress(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.GetProgress(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, p)
}

// BulkInitialize backfills workflow state for every entity in a module that
// has none. Safe to re-run.
//
//	@Summary		Backfill workflow state for a module's entities
//	@Tags			WorkflowStates
//	@Security		ApiKeyAuth
//	@Param			module path string true "Module name"
//	@Success		200 {object} core.BulkInitResult
//	@Failure		422 {object} response.ErrorResponse
//	@Router			/workflow-modules/{module}/bulk-initialize [post]
func (h *WorkflowState) BulkInitialize(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")
	if !validModule(module) {
		response.WriteError(w, http.StatusBadRequest, "unknown module")
		return
	}

	res, err := h.svc.BulkInitialize(r.Context(), module)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, res)
}

func validModule(module string) bool {
	for _, m := range model.Modules {
		if module == m {
			return true
		}
	}
	return false
}
