package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/services"
)

// ProjectsHandler handles project-related HTTP requests.
type ProjectsHandler struct {
	projects  services.ProjectService
	estimates services.EstimateService
	logger    *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projects services.ProjectService, estimates services.EstimateService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projects:  projects,
		estimates: estimates,
		logger:    logger,
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects", h.List)
	mux.HandleFunc("POST /api/projects", h.Create)
	mux.HandleFunc("GET /api/projects/{pid}", h.Get)
	mux.HandleFunc("PATCH /api/projects/{pid}", h.Update)
	mux.HandleFunc("DELETE /api/projects/{pid}", h.Delete)
	mux.HandleFunc("PUT /api/projects/{pid}/real-effort", h.SetRealEffort)
	mux.HandleFunc("GET /api/projects/{pid}/estimate", h.Estimate)
}

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// UpdateProjectRequest is the request body for updating a project.
type UpdateProjectRequest struct {
	Name                  string     `json:"name"`
	ComplexityParameterID *uuid.UUID `json:"complexity_parameter_id,omitempty"`
}

// SetRealEffortRequest records the delivered effort in workdays.
type SetRealEffortRequest struct {
	RealEffortDays float64 `json:"real_effort_days"`
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, projects)
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	project, err := h.projects.Create(r.Context(), req.Name)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusCreated, project)
}

// Get handles GET /api/projects/{pid}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "pid", h.logger)
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), projectID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, project)
}

// Update handles PATCH /api/projects/{pid}.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "pid", h.logger)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	project, err := h.projects.Update(r.Context(), projectID, req.Name, req.ComplexityParameterID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{pid}.
// Removes the project with all needs, requirements and entries under it.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "pid", h.logger)
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), projectID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRealEffort handles PUT /api/projects/{pid}/real-effort.
func (h *ProjectsHandler) SetRealEffort(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "pid", h.logger)
	if !ok {
		return
	}

	var req SetRealEffortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	if err := h.projects.SetRealEffort(r.Context(), projectID, req.RealEffortDays); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Estimate handles GET /api/projects/{pid}/estimate.
func (h *ProjectsHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "pid", h.logger)
	if !ok {
		return
	}

	estimate, err := h.estimates.ForProject(r.Context(), projectID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, estimate)
}
