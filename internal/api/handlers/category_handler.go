// filepath: internal/api/handlers/category_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"shapehub/internal/logging"
	"shapehub/internal/models"
)

// @Summary List categories
// @Description Retrieves all categories in their stored order, each with its display name and live shape count.
// @Tags category
// @Produce  json
// @Success 200 {array} models.CategorySummary
// @Failure 500 {object} ErrorResponse "Failed to read the category registry"
// @Router /categories [get]
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Category.ListCategories()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	// Ensure an empty array `[]` is returned instead of `null`
	if list == nil {
		list = []models.CategorySummary{}
	}

	respondWithJSON(w, http.StatusOK, list)
}

// @Summary Create a new category
// @Description Creates a new category. The id is a lowercase slug that doubles as the folder name for the category's preview assets.
// @Tags category
// @Accept  json
// @Produce  json
// @Param   category  body  models.CategoryCreatePayload  true  "Category id and display name"
// @Success 201 {object} models.Category
// @Failure 400 {object} ErrorResponse "Invalid payload or malformed id"
// @Failure 409 {object} ErrorResponse "Category id already in use"
// @Failure 500 {object} ErrorResponse "Failed to persist the category"
// @Router /categories [post]
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var payload models.CategoryCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logging.Log.Warnf("Failed to decode request body: %v", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	created, err := h.Category.CreateCategory(payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	logging.Log.Infof("Category created successfully: %s", created.ID)
	respondWithJSON(w, http.StatusCreated, created)
}

// @Summary Rename a category
// @Description Updates a category's display name. The id is permanent; shape records and asset folders never move on a rename.
// @Tags category
// @Accept  json
// @Produce  json
// @Param   id        path  string                        true  "Category ID"
// @Param   category  body  models.CategoryRenamePayload  true  "New display name"
// @Success 200 {object} models.Category
// @Failure 400 {object} ErrorResponse "Invalid payload"
// @Failure 404 {object} ErrorResponse "Category not found"
// @Failure 409 {object} ErrorResponse "Registry changed concurrently"
// @Router /categories/{id} [patch]
func (h *Handlers) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload models.CategoryRenamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	renamed, err := h.Category.RenameCategory(id, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, renamed)
}

// @Summary Delete a category
// @Description Deletes an empty category from the registry. Categories still holding shapes are refused.
// @Tags category
// @Produce  json
// @Param   id  path  string  true  "Category ID"
// @Success 200 {object} MessageResponse "Success message"
// @Failure 404 {object} ErrorResponse "Category not found"
// @Failure 409 {object} ErrorResponse "Category still holds shapes"
// @Failure 500 {object} ErrorResponse "Failed to persist the registry"
// @Router /categories/{id} [delete]
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Category.DeleteCategory(id); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{
		Message: "Category '" + id + "' was successfully deleted.",
	})
}
