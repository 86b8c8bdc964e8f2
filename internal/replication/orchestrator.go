package replication

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xelth-com/branchsync/internal/config"
	"github.com/xelth-com/branchsync/internal/services/odoo"
)

// DocumentKind selects which batch entry point runs.
type DocumentKind string

const (
	DocEntries   DocumentKind = "entries"
	DocInvoices  DocumentKind = "invoices"
	DocPayments  DocumentKind = "payments"
	DocTransfers DocumentKind = "transfers"
	DocRates     DocumentKind = "rates"
	DocPartners  DocumentKind = "partners"
)

// AllKinds is the scheduler's run order. Partners go first so documents
// referencing freshly created contacts resolve them instead of re-creating.
var AllKinds = []DocumentKind{DocPartners, DocEntries, DocInvoices, DocPayments, DocTransfers, DocRates}

// ParseKind validates an operator-supplied kind name.
func ParseKind(s string) (DocumentKind, error) {
	switch DocumentKind(s) {
	case DocEntries, DocInvoices, DocPayments, DocTransfers, DocRates, DocPartners:
		return DocumentKind(s), nil
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

// BatchResult summarizes one orchestrator run.
type BatchResult struct {
	Kind     DocumentKind `json:"kind"`
	RunID    string       `json:"run_id"`
	Selected int          `json:"selected"`
	Synced   int          `json:"synced"`
	Failed   int          `json:"failed"`
	Skipped  int          `json:"skipped"`
}

// Orchestrator drives the create-then-post sequence against the remote
// store, one document at a time. A document's failure never aborts its
// siblings; only configuration and authentication errors are fatal to a
// batch.
type Orchestrator struct {
	remote    Remote
	store     Store
	remoteCfg config.RemoteConfig
	syncCfg   config.SyncConfig
	cutoff    time.Time
	log       *logrus.Entry
}

// New creates an orchestrator. The cutoff date bounds how far back the
// selection query reaches; documents older than it are never replicated.
func New(remote Remote, store Store, remoteCfg config.RemoteConfig, syncCfg config.SyncConfig) *Orchestrator {
	cutoff, err := time.Parse(dateLayout, syncCfg.CutoffDate)
	if err != nil {
		logrus.Warnf("invalid SYNC_CUTOFF_DATE %q, using zero cutoff", syncCfg.CutoffDate)
	}
	return &Orchestrator{
		remote:    remote,
		store:     store,
		remoteCfg: remoteCfg,
		syncCfg:   syncCfg,
		cutoff:    cutoff,
		log:       logrus.WithField("component", "orchestrator"),
	}
}

// RunBatch selects eligible documents of the given kind and replicates them
// sequentially. Running on a non-branch deployment is a strict no-op.
func (o *Orchestrator) RunBatch(kind DocumentKind) (*BatchResult, error) {
	if !o.remoteCfg.IsBranch() {
		o.log.Debugf("deployment is not a %q, skipping %s sync", config.RoleBranch, kind)
		return &BatchResult{Kind: kind}, nil
	}
	if !o.remoteCfg.Complete() {
		return nil, ErrIncompleteConfig
	}
	if _, err := o.remote.Authenticate(); err != nil {
		return nil, &AuthError{Err: err}
	}

	res := &BatchResult{Kind: kind, RunID: uuid.NewString()[:8]}
	log := o.log.WithFields(logrus.Fields{"run": res.RunID, "kind": kind})

	// Resolver cache and partner factory live for exactly one run.
	resolver := NewResolver(o.remote)
	builder := NewBuilder(resolver, NewPartnerFactory(o.remote, resolver), o.store)

	var err error
	switch kind {
	case DocEntries:
		err = o.syncMoves(builder, res, true, log)
	case DocInvoices:
		err = o.syncMoves(builder, res, false, log)
	case DocPayments:
		err = o.syncPayments(builder, res, false, log)
	case DocTransfers:
		err = o.syncPayments(builder, res, true, log)
	case DocRates:
		err = o.syncRates(builder, res, log)
	case DocPartners:
		err = o.syncPartners(builder, res, log)
	default:
		err = fmt.Errorf("unknown document kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	log.Infof("batch done: %d selected, %d synced, %d failed, %d skipped",
		res.Selected, res.Synced, res.Failed, res.Skipped)
	return res, nil
}

func (o *Orchestrator) syncMoves(builder *Builder, res *BatchResult, entriesOnly bool, log *logrus.Entry) error {
	moves, err := o.store.SelectMoves(entriesOnly, o.cutoff, o.syncCfg.BatchSize)
	if err != nil {
		return err
	}
	res.Selected = len(moves)

	targetModel := modelInvoiceStaging
	if entriesOnly {
		targetModel = modelMove
	}

	for i := range moves {
		move := &moves[i]
		mlog := log.WithField("move", move.ID)

		skip, err := o.store.JournalDontSync(move.JournalName)
		if err != nil {
			return err
		}
		if skip {
			mlog.Infof("journal %q is flagged don't synchronize, skipping", move.JournalName)
			res.Skipped++
			continue
		}

		// A recorded remote id with Synced still false means a prior run
		// created the twin but crashed before finishing bookkeeping. Finish
		// it instead of creating a duplicate.
		if move.RemoteID != nil && *move.RemoteID != 0 {
			ids, err := o.remote.Search(targetModel, odoo.Domain{odoo.Eq("id", *move.RemoteID)}, 1)
			if err != nil {
				o.failMove(move.ID, res, mlog, err)
				continue
			}
			if len(ids) > 0 {
				if entriesOnly {
					if err := o.remote.Execute(modelMove, "action_post", ids); err != nil {
						o.failMove(move.ID, res, mlog, fmt.Errorf("re-posting existing remote move %d: %w", *move.RemoteID, err))
						continue
					}
				}
				mlog.Infof("remote twin %d already exists, marking synced", *move.RemoteID)
				if err := o.store.MarkMoveSynced(move.ID); err != nil {
					return err
				}
				res.Skipped++
				continue
			}
		}

		var payload map[string]interface{}
		if entriesOnly {
			payload, err = builder.BuildEntry(move)
		} else {
			payload, err = builder.BuildInvoice(move)
		}
		if err != nil {
			o.failMove(move.ID, res, mlog, err)
			continue
		}

		remoteID, err := o.remote.Create(targetModel, payload)
		if err != nil {
			o.failMove(move.ID, res, mlog, err)
			continue
		}
		if err := o.store.RecordMoveRemote(move.ID, remoteID, marshalPayload(payload)); err != nil {
			return err
		}

		if entriesOnly {
			if err := o.remote.Execute(modelMove, "action_post", []int64{remoteID}); err != nil {
				// The twin exists but is not posted: a recoverable
				// intermediate. The remote id stays recorded so that once
				// the failure is cleared, the pre-check above converges
				// instead of duplicating.
				o.failMove(move.ID, res, mlog, fmt.Errorf("created remote move %d but action_post failed: %w", remoteID, err))
				continue
			}
		}

		if err := o.store.MarkMoveSynced(move.ID); err != nil {
			return err
		}
		mlog.Infof("synced to remote id %d", remoteID)
		res.Synced++
	}
	return nil
}

func (o *Orchestrator) syncPayments(builder *Builder, res *BatchResult, transfers bool, log *logrus.Entry) error {
	payments, err := o.store.SelectPayments(transfers, o.cutoff, o.syncCfg.BatchSize)
	if err != nil {
		return err
	}
	res.Selected = len(payments)

	targetModel := modelPaymentStaging
	if transfers {
		targetModel = modelTransferStaging
	}

	for i := range payments {
		payment := &payments[i]
		plog := log.WithField("payment", payment.ID)

		skip, err := o.store.JournalDontSync(payment.JournalName)
		if err != nil {
			return err
		}
		if skip {
			plog.Infof("journal %q is flagged don't synchronize, skipping", payment.JournalName)
			res.Skipped++
			continue
		}

		if payment.RemoteID != nil && *payment.RemoteID != 0 {
			ids, err := o.remote.Search(targetModel, odoo.Domain{odoo.Eq("id", *payment.RemoteID)}, 1)
			if err != nil {
				o.failPayment(payment.ID, res, plog, err)
				continue
			}
			if len(ids) > 0 {
				plog.Infof("remote twin %d already exists, marking synced", *payment.RemoteID)
				if err := o.store.MarkPaymentSynced(payment.ID); err != nil {
					return err
				}
				res.Skipped++
				continue
			}
		}

		var payload map[string]interface{}
		if transfers {
			payload, err = builder.BuildTransfer(payment)
		} else {
			payload, err = builder.BuildPayment(payment)
		}
		if err != nil {
			o.failPayment(payment.ID, res, plog, err)
			continue
		}

		remoteID, err := o.remote.Create(targetModel, payload)
		if err != nil {
			o.failPayment(payment.ID, res, plog, err)
			continue
		}
		if err := o.store.RecordPaymentRemote(payment.ID, remoteID, marshalPayload(payload)); err != nil {
			return err
		}
		if err := o.store.MarkPaymentSynced(payment.ID); err != nil {
			return err
		}
		plog.Infof("synced to remote id %d", remoteID)
		res.Synced++
	}
	return nil
}

func (o *Orchestrator) syncRates(builder *Builder, res *BatchResult, log *logrus.Entry) error {
	rates, err := o.store.SelectRates(o.syncCfg.RateSymbol, o.syncCfg.BatchSize)
	if err != nil {
		return err
	}
	res.Selected = len(rates)

	for i := range rates {
		rate := &rates[i]
		rlog := log.WithField("rate", rate.ID)

		payload, err := builder.BuildRate(rate)
		if err != nil {
			rlog.Errorf("sync failed: %v", err)
			if err := o.store.MarkRateFailed(rate.ID, err.Error()); err != nil {
				return err
			}
			res.Failed++
			continue
		}

		remoteID, err := o.remote.Create(modelRate, payload)
		if err != nil {
			rlog.Errorf("sync failed: %v", err)
			if err := o.store.MarkRateFailed(rate.ID, err.Error()); err != nil {
				return err
			}
			res.Failed++
			continue
		}
		if err := o.store.MarkRateSynced(rate.ID, remoteID); err != nil {
			return err
		}
		rlog.Infof("synced to remote id %d", remoteID)
		res.Synced++
	}
	return nil
}

func (o *Orchestrator) syncPartners(builder *Builder, res *BatchResult, log *logrus.Entry) error {
	partners, err := o.store.SelectUnsentPartners(o.syncCfg.BatchSize)
	if err != nil {
		return err
	}
	res.Selected = len(partners)

	for i := range partners {
		partner := &partners[i]
		plog := log.WithField("partner", partner.Name)

		remoteID, created, err := builder.partners.PushPartner(partner)
		if err != nil {
			plog.Errorf("push failed: %v", err)
			if err := o.store.MarkPartnerFailed(partner.ID, err.Error()); err != nil {
				return err
			}
			res.Failed++
			continue
		}
		if err := o.store.MarkPartnerSent(partner.ID); err != nil {
			return err
		}
		if created {
			plog.Infof("created remote partner %d", remoteID)
		} else {
			plog.Infof("updated remote partner %d", remoteID)
		}
		res.Synced++
	}
	return nil
}

func (o *Orchestrator) failMove(id uint, res *BatchResult, log *logrus.Entry, err error) {
	log.Errorf("sync failed: %v", err)
	if serr := o.store.MarkMoveFailed(id, err.Error()); serr != nil {
		log.Errorf("recording failure: %v", serr)
	}
	res.Failed++
}

func (o *Orchestrator) failPayment(id uint, res *BatchResult, log *logrus.Entry, err error) {
	log.Errorf("sync failed: %v", err)
	if serr := o.store.MarkPaymentFailed(id, err.Error()); serr != nil {
		log.Errorf("recording failure: %v", serr)
	}
	res.Failed++
}
