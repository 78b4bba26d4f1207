// filepath: internal/api/handlers/maintenance_handler.go
package handlers

import (
	"net/http"
)

// @Summary Repair orphaned previews
// @Description Scans the asset folders for previews stranded under the wrong category and moves them next to their records. Runs only once per library unless force is set. Individual failures are counted in the report, never raised.
// @Tags maintenance
// @Produce  json
// @Param   force  query  bool  false  "Re-run the repair even when it already completed"
// @Success 200 {object} models.RepairReport
// @Router /maintenance/repair [post]
func (h *Handlers) TriggerRepair(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	respondWithJSON(w, http.StatusOK, h.Maintenance.RepairPreviews(force))
}

// @Summary Sweep the library
// @Description Walks the whole library and reports counters: categories, shapes, missing previews, stray asset files. Read-only; unreadable files are counted, never raised.
// @Tags maintenance
// @Produce  json
// @Success 200 {object} models.SweepReport
// @Router /maintenance/sweep [post]
func (h *Handlers) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.Maintenance.RunSweep())
}

// @Summary Get maintenance state
// @Description Returns the persisted maintenance state: whether the preview repair ran, when, and what the last sweep found.
// @Tags maintenance
// @Produce  json
// @Success 200 {object} models.MaintenanceState
// @Router /maintenance/state [get]
func (h *Handlers) GetMaintenanceState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.Maintenance.State())
}
