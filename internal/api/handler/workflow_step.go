package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/api/request"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/api/response"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/core"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

type WorkflowStep struct {
	svc *core.StepService
}

func NewWorkflowStep(svc *core.StepService) *WorkflowStep {
	return &WorkflowStep{svc: svc}
}

func (h *WorkflowStep) ListByTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := request.RequireID(chi.URLParam(r, "templateID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	steps, err := h.svc.ListByTemplate(r.Context(), templateID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, steps)
}

func (h *WorkflowStep) Add(w http.ResponseWriter, r *http.Request) {
	templateID, err := request.RequireID(chi.URLParam(r, "templateID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.AddWorkflowStep
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	step := &model.WorkflowTemplateStep{
		TemplateID:         templateID,
		Name:               req.Name,
		StepOrder:          req.StepOrder,
		StepType:           req.StepType,
		Description:        req.Description,
		SLAHours:           req.SLAHours,
		ApprovalType:       req.ApprovalType,
		IsRequired:         req.IsRequired,
		AutoAssignEnabled:  req.AutoAssignEnabled,
		AutoAssignRule:     req.AutoAssignRule,
		RejectTargetStepID: req.RejectTargetStepID,
	}

	if err := h.svc.Add(r.Context(), step); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, step)
}

func (h *WorkflowStep) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	step, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, step)
}

func (h *WorkflowStep) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateWorkflowStep
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Update(r.Context(), id, req.Name, req.Description, req.SLAHours, req.RejectTargetStepID); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	step, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, step)
}

func (h *WorkflowStep) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------- Role assignments ----------

func (h *WorkflowStep) ListRoleAssignments(w http.ResponseWriter, r *http.Request) {
	stepID, err := request.RequireID(chi.URLParam(r, "stepID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignments, err := h.svc.ListRoleAssignments(r.Context(), stepID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, assignments)
}

func (h *WorkflowStep) AddRoleAssignment(w http.ResponseWriter, r *http.Request) {
	stepID, err := request.RequireID(chi.URLParam(r, "stepID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.AddRoleAssignment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ra := &model.StepRoleAssignment{
		StepID:            stepID,
		RoleName:          req.RoleName,
		CanApprove:        req.CanApprove,
		CanReject:         req.CanReject,
		CanAssign:         req.CanAssign,
		CanView:           req.CanView,
		CanEdit:           req.CanEdit,
		IsPrimaryAssignee: req.IsPrimaryAssignee,
		IsBackupAssignee:  req.IsBackupAssignee,
	}

	if err := h.svc.AddRoleAssignment(r.Context(), ra); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, ra)
}

func (h *WorkflowStep) DeleteRoleAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteRoleAssignment(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------- Conditions ----------

func (h *WorkflowStep) ListConditions(w http.ResponseWriter, r *http.Request) {
	stepID, err := request.RequireID(chi.URLParam(r, "stepID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	conditions, err := h.svc.ListConditions(r.Context(), stepID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, conditions)
}

func (h *WorkflowStep) AddCondition(w http.ResponseWriter, r *http.Request) {
	stepID, err := request.RequireID(chi.URLParam(r, "stepID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.AddStepCondition
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := &model.StepCondition{
		StepID:        stepID,
		ConditionType: req.ConditionType,
		FieldName:     req.FieldName,
		Operator:      req.Operator,
		Value:         req.Value,
		Action:        req.Action,
		TargetStepID:  req.TargetStepID,
		Priority:      req.Priority,
	}

	if err := h.svc.AddCondition(r.Context(), c); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, c)
}

func (h *WorkflowStep) DeleteCondition(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteCondition(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
