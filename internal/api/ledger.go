package api

import (
	"net/http"

	"github.com/subscry/subscry/internal/ledger"
	"github.com/subscry/subscry/internal/participants"
	"github.com/subscry/subscry/internal/subscriptions"
)

type LedgerHandler struct {
	repo *subscriptions.Repository
	dir  *participants.Directory
}

func NewLedgerHandler(repo *subscriptions.Repository, dir *participants.Directory) *LedgerHandler {
	return &LedgerHandler{repo: repo, dir: dir}
}

// Totals returns the reconciled per-person totals: directory rows when
// the directory is populated, the inline aggregation otherwise.
func (h *LedgerHandler) Totals(w http.ResponseWriter, _ *http.Request) {
	totals := ledger.ComputeTotalsReconciled(h.repo.List(), h.dir.List())
	respondJSON(w, http.StatusOK, totals)
}

// Migrate folds inline participant lists into the directory. Safe to
// call repeatedly.
func (h *LedgerHandler) Migrate(w http.ResponseWriter, _ *http.Request) {
	linked := ledger.MigrateInlineToDirectory(h.repo.List(), h.dir)
	respondJSON(w, http.StatusOK, map[string]int{"linked": linked})
}
