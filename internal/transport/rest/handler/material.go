package handler

import (
	"encoding/json"
	"net/http"

	"learnmyway/internal/model"
	"learnmyway/internal/service"
	"learnmyway/internal/transport/rest/middleware"
)

// MaterialHandler handles study material endpoints
type MaterialHandler struct {
	materialSvc *service.MaterialService
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(materialSvc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialSvc: materialSvc}
}

// Upload handles POST /api/teachers/upload-material
func (h *MaterialHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req service.UploadMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity := middleware.GetIdentity(r.Context())

	material, err := h.materialSvc.UploadMaterial(r.Context(), req, identity.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Material uploaded and assigned successfully.",
		"material": material,
	})
}

// List handles GET /api/materials
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	// Students only see material addressed to their class.
	class := ""
	if identity.Role == model.RoleStudent {
		class = identity.ClassAssignment
	}

	materials, err := h.materialSvc.ListMaterials(r.Context(), class)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, materials)
}
