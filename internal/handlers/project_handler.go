package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"freelanceBack/internal/models"
	"freelanceBack/internal/services"
	"freelanceBack/utils"
)

const maxDeliverableSize = 50 << 20 // 50 MB

type ProjectHandler struct {
	ProjectService *services.ProjectService
	Storage        *utils.FileStorage
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.ProjectService.CreateProject(r.Context(), callerID(r), project)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "Referenced user does not exist", http.StatusBadRequest)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ProjectHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	project, err := h.ProjectService.GetProjectByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) GetPendingProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.ProjectService.GetPendingProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *ProjectHandler) GetProjectsByBuyerID(w http.ResponseWriter, r *http.Request) {
	buyerID, err := strconv.Atoi(getParam(r, "buyer_id"))
	if err != nil || buyerID <= 0 {
		http.Error(w, "Invalid buyer ID", http.StatusBadRequest)
		return
	}

	projects, err := h.ProjectService.GetProjectsByBuyerID(r.Context(), buyerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *ProjectHandler) GetSelectedProjectsBySellerID(w http.ResponseWriter, r *http.Request) {
	sellerID, err := strconv.Atoi(getParam(r, "seller_id"))
	if err != nil || sellerID <= 0 {
		http.Error(w, "Invalid seller ID", http.StatusBadRequest)
		return
	}

	projects, err := h.ProjectService.GetSelectedProjectsBySellerID(r.Context(), sellerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *ProjectHandler) SelectSeller(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}
	bidID, err := strconv.Atoi(getParam(r, "bid_id"))
	if err != nil || bidID <= 0 {
		http.Error(w, "Invalid bid ID", http.StatusBadRequest)
		return
	}

	project, err := h.ProjectService.SelectSeller(r.Context(), callerID(r), projectID, bidID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UnselectSeller(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	project, err := h.ProjectService.UnselectSeller(r.Context(), callerID(r), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) RequestChanges(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	project, err := h.ProjectService.RequestChanges(r.Context(), callerID(r), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) CompleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	project, err := h.ProjectService.CompleteProject(r.Context(), callerID(r), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) CancelProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	project, err := h.ProjectService.CancelProject(r.Context(), callerID(r), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Progress int `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.ProjectService.UpdateProgress(r.Context(), callerID(r), projectID, req.Progress)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	var update models.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.ProjectService.UpdateDetails(r.Context(), callerID(r), projectID, update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// UploadDeliverable handles multipart uploads of the project's work product.
// The file lands in object storage and the project moves to review.
func (h *ProjectHandler) UploadDeliverable(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	if h.Storage == nil {
		http.Error(w, "File storage is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxDeliverableSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("deliverable")
	if err != nil {
		http.Error(w, "Missing deliverable file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDeliverableSize))
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	objectName := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(header.Filename))
	fileURL, err := h.Storage.Upload(data, objectName, fmt.Sprintf("deliverables/%d", projectID), header.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	project, err := h.ProjectService.UploadDeliverable(r.Context(), callerID(r), projectID, fileURL, header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) GetDeliverable(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	deliverable, err := h.ProjectService.GetDeliverable(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deliverable)
}
