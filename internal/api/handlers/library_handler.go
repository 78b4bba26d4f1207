// filepath: internal/api/handlers/library_handler.go
package handlers

import (
	"net/http"
	"strings"

	"shapehub/internal/logging"
)

// trackingWriter remembers whether any body bytes went out, so a failure
// that precedes the stream can still carry a real status code.
type trackingWriter struct {
	http.ResponseWriter
	wrote bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	t.wrote = true
	return t.ResponseWriter.Write(p)
}

// @Summary Export the library as ZIP
// @Description Streams a ZIP archive mirroring the on-disk layout: categories.json, per-category shape files, preview and native assets. With no filter the whole library including the deck file is exported; ?categories=a,b restricts the archive to a selection.
// @Tags library
// @Produce application/zip
// @Param   categories  query  string  false  "Comma-separated category IDs; empty exports everything"
// @Success 200 {file} file "ZIP Archive"
// @Failure 404 {object} ErrorResponse "Unknown category in selection"
// @Failure 500 {object} ErrorResponse "Export failed before streaming"
// @Router /export [get]
func (h *Handlers) ExportLibrary(w http.ResponseWriter, r *http.Request) {
	var selection []string
	for _, id := range strings.Split(r.URL.Query().Get("categories"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			selection = append(selection, id)
		}
	}

	// Set headers for ZIP download
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=\"shape_library_export.zip\"")

	// The service validates the selection before it streams, so an unknown
	// category surfaces here with nothing written yet. Once the first byte is
	// out we cannot change the status code; a mid-stream error results in a
	// truncated download, which is standard behavior for chunked HTTP streams.
	tw := &trackingWriter{ResponseWriter: w}
	if err := h.Library.ExportArchive(r.Context(), selection, tw); err != nil {
		if !tw.wrote {
			w.Header().Del("Content-Disposition")
			respondWithServiceError(w, err)
			return
		}
		logging.Log.Errorf("ExportLibrary: Streaming failed: %v", err)
	}
}

// @Summary Import a library archive
// @Description Merges an uploaded ZIP archive into the library. Missing categories are added (existing names win), shape records are upserted (archive wins), and binary payloads are restored only where the local file is absent.
// @Tags library
// @Accept  mpfd
// @Produce json
// @Param   archive  formData  file  true  "ZIP archive produced by export"
// @Success 200 {object} models.ImportReport
// @Failure 400 {object} ErrorResponse "Missing or unreadable archive"
// @Router /import [post]
func (h *Handlers) ImportLibrary(w http.ResponseWriter, r *http.Request) {
	maxMemory := h.Cfg.MaxUploadSizeBytes
	if maxMemory <= 0 {
		maxMemory = 8 << 20
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		logging.Log.Warnf("Failed to parse multipart form: %v", err)
		respondWithError(w, http.StatusBadRequest, "Failed to parse multipart form.")
		return
	}

	archive, header, err := r.FormFile("archive")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing 'archive' part in multipart form.")
		return
	}
	defer archive.Close()

	report, err := h.Library.ImportArchive(archive, header.Size)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
