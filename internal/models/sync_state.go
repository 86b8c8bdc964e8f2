package models

import "time"

// SyncState carries the replication bookkeeping persisted on every local
// document that can be pushed to the remote deployment.
//
// Invariants: RemoteID is set iff a remote create has ever succeeded for the
// document; Synced implies RemoteID is set. SyncDisabled is operator-set and
// permanently excludes the document from selection.
type SyncState struct {
	Synced       bool       `gorm:"index;default:false" json:"synced"`
	SyncFailed   bool       `gorm:"default:false" json:"sync_failed"`
	SyncDisabled bool       `gorm:"default:false" json:"sync_disabled"`
	RemoteID     *int64     `json:"remote_id"`
	SyncNote     string     `json:"sync_note"`
	LastSyncedAt *time.Time `json:"last_synced_at"`
}

// Eligible reports whether the flags alone allow selection. Status, kind and
// date filters are applied by the orchestrator's query on top of this.
func (s SyncState) Eligible() bool {
	return !s.Synced && !s.SyncFailed && !s.SyncDisabled
}
