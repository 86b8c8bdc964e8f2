package replication

import (
	"fmt"

	"github.com/xelth-com/branchsync/internal/models"
	"github.com/xelth-com/branchsync/internal/services/odoo"
)

// Post-creation consistency: when a local document is cancelled, reverted to
// draft or edited after its remote twin was created, the twin is adjusted
// best-effort. Failures are logged and surfaced to the caller but never
// retried, and never roll back the local change.

// PushCancel sets the remote twin's state to cancel.
func (o *Orchestrator) PushCancel(id uint) error {
	return o.pushState(id, models.StateCancel)
}

// PushDraft resets the remote twin's state to draft.
func (o *Orchestrator) PushDraft(id uint) error {
	return o.pushState(id, models.StateDraft)
}

func (o *Orchestrator) pushState(id uint, state string) error {
	move, err := o.store.MoveByID(id)
	if err != nil {
		return err
	}
	if move.RemoteID == nil || *move.RemoteID == 0 {
		return nil // no remote twin to adjust
	}
	if !o.remoteCfg.IsBranch() {
		return nil
	}
	if !o.remoteCfg.Complete() {
		return ErrIncompleteConfig
	}
	if _, err := o.remote.Authenticate(); err != nil {
		return &AuthError{Err: err}
	}

	model := modelInvoiceStaging
	if move.IsEntry() {
		model = modelMove
	}
	if err := o.remote.Write(model, []int64{*move.RemoteID}, map[string]interface{}{"state": state}); err != nil {
		o.log.Errorf("setting remote twin %d to %s: %v", *move.RemoteID, state, err)
		return err
	}
	o.log.Infof("remote twin %d set to %s", *move.RemoteID, state)
	return nil
}

// PushRewrite replaces the remote twin's lines with the document's current
// local state: all existing remote children are deleted, then the twin is
// rewritten from a freshly built payload and re-posted. Differential line
// update is deliberately not attempted.
func (o *Orchestrator) PushRewrite(id uint) error {
	move, err := o.store.MoveByID(id)
	if err != nil {
		return err
	}
	if move.RemoteID == nil || *move.RemoteID == 0 {
		return nil
	}
	if !o.remoteCfg.IsBranch() {
		return nil
	}
	if !o.remoteCfg.Complete() {
		return ErrIncompleteConfig
	}
	if _, err := o.remote.Authenticate(); err != nil {
		return &AuthError{Err: err}
	}

	resolver := NewResolver(o.remote)
	builder := NewBuilder(resolver, NewPartnerFactory(o.remote, resolver), o.store)

	twinModel, lineModel := modelInvoiceStaging, modelInvoiceLine
	buildPayload := builder.BuildInvoice
	if move.IsEntry() {
		twinModel, lineModel = modelMove, modelMoveLine
		buildPayload = builder.BuildEntry
	}

	lineIDs, err := o.remote.Search(lineModel, odoo.Domain{odoo.Eq("move_id", *move.RemoteID)}, 0)
	if err != nil {
		return err
	}
	if len(lineIDs) > 0 {
		if err := o.remote.Unlink(lineModel, lineIDs); err != nil {
			return fmt.Errorf("deleting remote lines of twin %d: %w", *move.RemoteID, err)
		}
	}

	payload, err := buildPayload(move)
	if err != nil {
		return err
	}
	if err := o.remote.Write(twinModel, []int64{*move.RemoteID}, payload); err != nil {
		return fmt.Errorf("rewriting remote twin %d: %w", *move.RemoteID, err)
	}

	if move.IsEntry() {
		if err := o.remote.Execute(modelMove, "action_post", []int64{*move.RemoteID}); err != nil {
			return fmt.Errorf("re-posting remote twin %d: %w", *move.RemoteID, err)
		}
	}

	o.log.Infof("remote twin %d rewritten from local move %d", *move.RemoteID, move.ID)
	return nil
}
