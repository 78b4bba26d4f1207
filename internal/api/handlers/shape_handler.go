// filepath: internal/api/handlers/shape_handler.go
package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/mux"

	"shapehub/internal/logging"
	"shapehub/internal/models"
)

// @Summary List shapes of a category
// @Description Retrieves all shape records of one category, sorted by display name.
// @Tags shape
// @Produce  json
// @Param   category  query  string  true  "Category ID"
// @Success 200 {array} models.Shape
// @Failure 400 {object} ErrorResponse "Missing category parameter"
// @Failure 404 {object} ErrorResponse "Category not found"
// @Router /shapes [get]
func (h *Handlers) GetShapes(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		respondWithError(w, http.StatusBadRequest, "Missing required query parameter: category")
		return
	}

	shapes, err := h.Shape.GetShapes(category)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if shapes == nil {
		shapes = []models.Shape{}
	}

	respondWithJSON(w, http.StatusOK, shapes)
}

// @Summary Get a shape record
// @Description Retrieves one shape record with its metadata and relative asset paths.
// @Tags shape
// @Produce  json
// @Param   category  path  string  true  "Category ID"
// @Param   id        path  string  true  "Shape ID"
// @Success 200 {object} models.Shape
// @Failure 404 {object} ErrorResponse "Shape not found"
// @Router /shapes/{category}/{id} [get]
func (h *Handlers) GetShape(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	shape, err := h.Shape.GetShape(vars["category"], vars["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, shape)
}

// @Summary Capture a shape
// @Description Stores a shape captured in the editor using multipart/form-data. The metadata part is a JSON object (name, category, optional id, description, tags, deckSlide, definition). The preview part must be a PNG; an optional native part carries the fidelity-preserving PPTX snippet.
// @Tags shape
// @Accept  mpfd
// @Produce  json
// @Param   metadata  formData  string  true  "JSON metadata for the shape"
// @Param   preview   formData  file    true  "Preview PNG"
// @Param   native    formData  file    false "Native PPTX snippet"
// @Success 201 {object} models.Shape
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 404 {object} ErrorResponse "Category not found"
// @Failure 409 {object} ErrorResponse "Write conflict"
// @Failure 415 {object} ErrorResponse "Preview is not a PNG"
// @Router /shapes [post]
func (h *Handlers) CaptureShape(w http.ResponseWriter, r *http.Request) {
	maxMemory := h.Cfg.MaxUploadSizeBytes
	if maxMemory <= 0 {
		maxMemory = 8 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxMemory)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		logging.Log.Warnf("Failed to parse multipart form: %v", err)
		respondWithError(w, http.StatusBadRequest, "Failed to parse multipart form.")
		return
	}

	metadataStr := r.FormValue("metadata")
	if metadataStr == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'metadata' part in multipart form.")
		return
	}

	preview, previewHeader, err := r.FormFile("preview")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing 'preview' part in multipart form.")
		return
	}
	defer preview.Close()

	// The native snippet is optional.
	var native multipart.File
	var nativeHeader *multipart.FileHeader
	if f, fh, err := r.FormFile("native"); err == nil {
		native = f
		nativeHeader = fh
		defer f.Close()
	}

	shape, err := h.Shape.CaptureShape(metadataStr, preview, previewHeader, native, nativeHeader)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, shape)
}

// @Summary Update or move a shape
// @Description Applies a partial update to a shape record. A "category" field pointing at another category moves the shape there, relocating its preview asset; any remaining fields are applied afterwards.
// @Tags shape
// @Accept  json
// @Produce  json
// @Param   category  path  string             true  "Category ID"
// @Param   id        path  string             true  "Shape ID"
// @Param   fields    body  models.ShapeFields true  "Fields to update"
// @Success 200 {object} models.Shape
// @Failure 400 {object} ErrorResponse "Invalid payload or unknown field"
// @Failure 404 {object} ErrorResponse "Shape or target category not found"
// @Failure 409 {object} ErrorResponse "Write conflict"
// @Router /shapes/{category}/{id} [patch]
func (h *Handlers) UpdateShape(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	category := vars["category"]
	id := vars["id"]

	var fields models.ShapeFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// A differing "category" field is a move, not a record edit.
	target := category
	if raw, ok := fields["category"]; ok {
		if err := json.Unmarshal(raw, &target); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid value for field 'category'")
			return
		}
		delete(fields, "category")
	}

	var shape *models.Shape
	if target != category {
		moved, err := h.Shape.MoveShape(category, id, target)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		shape = moved
		category = target
	}

	if len(fields) > 0 {
		updated, err := h.Shape.UpdateShape(category, id, fields)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		shape = updated
	}

	if shape == nil {
		respondWithError(w, http.StatusBadRequest, "No fields to update.")
		return
	}

	respondWithJSON(w, http.StatusOK, shape)
}

// @Summary Delete a shape
// @Description Deletes a shape record from its category file. The preview asset and any deck slide are left in place.
// @Tags shape
// @Produce  json
// @Param   category  path  string  true  "Category ID"
// @Param   id        path  string  true  "Shape ID"
// @Success 200 {object} MessageResponse "Success message"
// @Failure 404 {object} ErrorResponse "Shape not found"
// @Failure 409 {object} ErrorResponse "Write conflict"
// @Router /shapes/{category}/{id} [delete]
func (h *Handlers) DeleteShape(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.Shape.DeleteShape(vars["category"], vars["id"]); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{
		Message: "Shape '" + vars["id"] + "' was successfully deleted.",
	})
}

// @Summary Get a shape preview
// @Description Serves the shape's preview PNG for the gallery.
// @Tags shape
// @Produce png
// @Param   category  path  string  true  "Category ID"
// @Param   id        path  string  true  "Shape ID"
// @Success 200 {file} file "The PNG preview image"
// @Failure 404 {object} ErrorResponse "Shape or preview file not found"
// @Router /shapes/{category}/{id}/preview [get]
func (h *Handlers) GetShapePreview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	path, err := h.Shape.PreviewPath(vars["category"], vars["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	// The gallery re-fetches previews after moves and repairs; caching a
	// relocated file would show stale art.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// @Summary Get a shape's native snippet
// @Description Serves the fidelity-preserving PPTX snippet captured alongside the shape, when one exists.
// @Tags shape
// @Produce octet-stream
// @Param   category  path  string  true  "Category ID"
// @Param   id        path  string  true  "Shape ID"
// @Success 200 {file} file "The PPTX snippet"
// @Failure 404 {object} ErrorResponse "Shape has no native snippet"
// @Router /shapes/{category}/{id}/native [get]
func (h *Handlers) GetShapeNative(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	path, err := h.Shape.NativePath(vars["category"], vars["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+vars["id"]+".pptx\"")
	http.ServeFile(w, r, path)
}
