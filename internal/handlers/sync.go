package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/xelth-com/branchsync/internal/replication"
)

// SyncHandler exposes the replication batches and per-document controls
type SyncHandler struct {
	orch  *replication.Orchestrator
	store replication.Store
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(orch *replication.Orchestrator, store replication.Store) *SyncHandler {
	return &SyncHandler{
		orch:  orch,
		store: store,
	}
}

// RegisterRoutes registers sync routes
func (sh *SyncHandler) RegisterRoutes(r *mux.Router) {
	// Sync control endpoints
	r.HandleFunc("/api/sync/status", sh.GetSyncStatus).Methods("GET")
	r.HandleFunc("/api/sync/run", sh.RunAll).Methods("POST")
	r.HandleFunc("/api/sync/run/{kind}", sh.RunKind).Methods("POST")

	// Per-document controls
	r.HandleFunc("/api/moves/{id}/disable", sh.moveDisable(true)).Methods("POST")
	r.HandleFunc("/api/moves/{id}/enable", sh.moveDisable(false)).Methods("POST")
	r.HandleFunc("/api/moves/{id}/retry", sh.RetryMove).Methods("POST")
	r.HandleFunc("/api/moves/{id}/push-cancel", sh.PushCancel).Methods("POST")
	r.HandleFunc("/api/moves/{id}/push-draft", sh.PushDraft).Methods("POST")
	r.HandleFunc("/api/moves/{id}/push-rewrite", sh.PushRewrite).Methods("POST")
	r.HandleFunc("/api/payments/{id}/disable", sh.paymentDisable(true)).Methods("POST")
	r.HandleFunc("/api/payments/{id}/enable", sh.paymentDisable(false)).Methods("POST")
	r.HandleFunc("/api/payments/{id}/retry", sh.RetryPayment).Methods("POST")
}

// GetSyncStatus returns pending/synced/failed counts per document kind
func (sh *SyncHandler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := sh.store.SyncStatus()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// RunAll runs every batch kind once, in scheduler order
func (sh *SyncHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	results := make([]*replication.BatchResult, 0, len(replication.AllKinds))
	for _, kind := range replication.AllKinds {
		res, err := sh.orch.RunBatch(kind)
		if err != nil {
			respondError(w, syncErrorStatus(err), err.Error())
			return
		}
		results = append(results, res)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

// RunKind runs one batch kind
func (sh *SyncHandler) RunKind(w http.ResponseWriter, r *http.Request) {
	kind, err := replication.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := sh.orch.RunBatch(kind)
	if err != nil {
		respondError(w, syncErrorStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (sh *SyncHandler) moveDisable(disabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := sh.store.SetMoveDisabled(id, disabled); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"id":            id,
			"sync_disabled": disabled,
		})
	}
}

func (sh *SyncHandler) paymentDisable(disabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := sh.store.SetPaymentDisabled(id, disabled); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"id":            id,
			"sync_disabled": disabled,
		})
	}
}

// RetryMove clears the sticky failure flag so the next batch picks the
// document up again
func (sh *SyncHandler) RetryMove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := sh.store.ClearMoveFailure(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":          id,
		"sync_failed": false,
	})
}

// RetryPayment clears the sticky failure flag on a payment
func (sh *SyncHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := sh.store.ClearPaymentFailure(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":          id,
		"sync_failed": false,
	})
}

// PushCancel cancels the remote twin of a locally cancelled document
func (sh *SyncHandler) PushCancel(w http.ResponseWriter, r *http.Request) {
	sh.pushOp(w, r, sh.orch.PushCancel, "cancelled")
}

// PushDraft resets the remote twin to draft
func (sh *SyncHandler) PushDraft(w http.ResponseWriter, r *http.Request) {
	sh.pushOp(w, r, sh.orch.PushDraft, "reset to draft")
}

// PushRewrite rebuilds the remote twin from the local document
func (sh *SyncHandler) PushRewrite(w http.ResponseWriter, r *http.Request) {
	sh.pushOp(w, r, sh.orch.PushRewrite, "rewritten")
}

func (sh *SyncHandler) pushOp(w http.ResponseWriter, r *http.Request, op func(uint) error, action string) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := op(id); err != nil {
		if errors.Is(err, replication.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, syncErrorStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"status": action,
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func syncErrorStatus(err error) int {
	var authErr *replication.AuthError
	if errors.As(err, &authErr) {
		return http.StatusBadGateway
	}
	if errors.Is(err, replication.ErrIncompleteConfig) {
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}
