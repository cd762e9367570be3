package api

import (
	"encoding/json"
	"net/http"

	"github.com/subscry/subscry/internal/subscriptions"
)

type BackupHandler struct {
	repo *subscriptions.Repository
}

func NewBackupHandler(repo *subscriptions.Repository) *BackupHandler {
	return &BackupHandler{repo: repo}
}

// Export writes every subscription as a JSON array, the same shape the
// import accepts.
func (h *BackupHandler) Export(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="subscry_backup.json"`)
	respondJSON(w, http.StatusOK, h.repo.List())
}

// Import accepts a JSON array of subscription-shaped objects. Entries
// missing title, amount or frequency are skipped; the rest are created
// with fresh ids and timestamps.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	var entries []subscriptions.BackupEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		respondError(w, http.StatusBadRequest, "expected a JSON array of subscriptions")
		return
	}

	imported := h.repo.Import(entries)
	respondJSON(w, http.StatusOK, map[string]int{
		"imported": imported,
		"skipped":  len(entries) - imported,
	})
}
