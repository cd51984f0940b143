package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/api/request"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/api/response"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/core"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

type WorkflowTemplate struct {
	svc *core.TemplateService
}

func NewWorkflowTemplate(svc *core.TemplateService) *WorkflowTemplate {
	return &WorkflowTemplate{svc: svc}
}

// List godoc
//
//	@Summary		List workflow templates
//	@Tags			WorkflowTemplates
//	@Security		ApiKeyAuth
//	@Param			module query string false "Filter by module"
//	@Param			organization_id query string false "Filter by organization"
//	@Param			active query bool false "Only active templates"
//	@Param			limit query int false "Page size" default(50)
//	@Param			cursor query string false "Pagination cursor"
//	@Success		200 {object} response.PaginatedResponse
//	@Router			/workflow-templates [get]
func (h *WorkflowTemplate) List(w http.ResponseWriter, r *http.Request) {
	p := request.ParsePagination(r)
	filters := core.TemplateFilters{
		Module:         r.URL.Query().Get("module"),
		OrganizationID: r.URL.Query().Get("organization_id"),
		ActiveOnly:     r.URL.Query().Get("active") == "true",
	}

	templates, hasMore, err := h.svc.List(r.Context(), filters, p.Limit, p.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	nextCursor := ""
	if hasMore && len(templates) > 0 {
		nextCursor = templates[len(templates)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, templates, nextCursor, hasMore)
}

// Create godoc
//
//	@Summary		Create a workflow template
//	@Tags			WorkflowTemplates
//	@Security		ApiKeyAuth
//	@Param			body body request.CreateWorkflowTemplate true "Template details"
//	@Success		201 {object} model.WorkflowTemplate
//	@Failure		400 {object} response.ErrorResponse
//	@Router			/workflow-templates [post]
func (h *WorkflowTemplate) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateWorkflowTemplate
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpl := &model.WorkflowTemplate{
		Name:           req.Name,
		Module:         req.Module,
		Description:    req.Description,
		IsDefault:      req.IsDefault,
		OrganizationID: req.OrganizationID,
	}

	if err := h.svc.Create(r.Context(), tmpl); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, tmpl)
}

// Get godoc
//
//	@Summary		Get a workflow template
//	@Tags			WorkflowTemplates
//	@Security		ApiKeyAuth
//	@Param			id path string true "Template ID"
//	@Success		200 {object} model.WorkflowTemplate
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/workflow-templates/{id} [get]
func (h *WorkflowTemplate) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpl, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, tmpl)
}

func (h *WorkflowTemplate) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateWorkflowTemplate
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Update(r.Context(), id, req.Name, req.Description); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	tmpl, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, tmpl)
}

func (h *WorkflowTemplate) Delete(w http.ResponseWriter, r *http.Request) {
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

// SetDefault makes this template the default for its module and organization,
// demoting the previous default in the same transaction.
func (h *WorkflowTemplate) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetDefault(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	tmpl, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, tmpl)
}

// Activate validates the template's step graph and marks it active. An
// invalid graph is a 422.
func (h *WorkflowTemplate) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Activate(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	tmpl, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, tmpl)
}

func (h *WorkflowTemplate) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
