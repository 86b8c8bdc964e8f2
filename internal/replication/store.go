package replication

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xelth-com/branchsync/internal/database"
	"github.com/xelth-com/branchsync/internal/models"
)

// Store is the replication layer's access to local documents, their sync
// state, and the local master data the payload builders consult.
type Store interface {
	// Selection: eligible documents only (unsynced, not failed, not
	// disabled, posted where the kind has a lifecycle, date >= cutoff),
	// oldest first, capped.
	SelectMoves(entriesOnly bool, cutoff time.Time, limit int) ([]models.AccountMove, error)
	SelectPayments(internalTransfers bool, cutoff time.Time, limit int) ([]models.AccountPayment, error)
	SelectRates(symbol string, limit int) ([]models.CurrencyRate, error)
	SelectUnsentPartners(limit int) ([]models.ResPartner, error)

	// Sync-state bookkeeping, committed per document.
	RecordMoveRemote(id uint, remoteID int64, payload []byte) error
	MarkMoveSynced(id uint) error
	MarkMoveFailed(id uint, note string) error
	RecordPaymentRemote(id uint, remoteID int64, payload []byte) error
	MarkPaymentSynced(id uint) error
	MarkPaymentFailed(id uint, note string) error
	MarkRateSynced(id uint, remoteID int64) error
	MarkRateFailed(id uint, note string) error
	MarkPartnerSent(id uint) error
	MarkPartnerFailed(id uint, note string) error

	// Operator controls.
	SetMoveDisabled(id uint, disabled bool) error
	ClearMoveFailure(id uint) error
	SetPaymentDisabled(id uint, disabled bool) error
	ClearPaymentFailure(id uint) error
	MoveByID(id uint) (*models.AccountMove, error)
	SyncStatus() (map[string]int64, error)

	// Master data used while building payloads.
	PartnerByName(name string) (*models.ResPartner, error)
	AccountByCode(code string) (*models.AccountAccount, error)
	JournalDontSync(name string) (bool, error)
}

// ErrNotFound is returned by master-data lookups when no local row matches.
var ErrNotFound = errors.New("record not found")

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps the local database as a replication Store.
func NewStore(db *database.DB) Store {
	return &gormStore{db: db.DB}
}

func eligible(q *gorm.DB) *gorm.DB {
	return q.Where("synced = ? AND sync_failed = ? AND sync_disabled = ?", false, false, false)
}

func (s *gormStore) SelectMoves(entriesOnly bool, cutoff time.Time, limit int) ([]models.AccountMove, error) {
	q := eligible(s.db.Preload("Lines")).
		Where("state = ?", models.StatePosted).
		Where("date >= ?", cutoff)
	if entriesOnly {
		q = q.Where("move_type = ?", models.MoveTypeEntry)
	} else {
		q = q.Where("move_type <> ?", models.MoveTypeEntry)
	}
	var out []models.AccountMove
	err := q.Order("date asc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *gormStore) SelectPayments(internalTransfers bool, cutoff time.Time, limit int) ([]models.AccountPayment, error) {
	q := eligible(s.db.Model(&models.AccountPayment{})).
		Where("state = ?", models.StatePosted).
		Where("date >= ?", cutoff).
		Where("is_internal_transfer = ?", internalTransfers)
	if internalTransfers {
		q = q.Where("payment_type = ?", models.PaymentOutbound)
	}
	var out []models.AccountPayment
	err := q.Order("date asc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *gormStore) SelectRates(symbol string, limit int) ([]models.CurrencyRate, error) {
	q := eligible(s.db.Model(&models.CurrencyRate{}))
	if symbol != "" {
		q = q.Where("currency_symbol = ?", symbol)
	}
	var out []models.CurrencyRate
	err := q.Order("name asc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *gormStore) SelectUnsentPartners(limit int) ([]models.ResPartner, error) {
	var out []models.ResPartner
	err := s.db.Where("sent_to_remote = ?", false).Order("id asc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *gormStore) RecordMoveRemote(id uint, remoteID int64, payload []byte) error {
	return s.db.Model(&models.AccountMove{}).Where("id = ?", id).Updates(map[string]interface{}{
		"remote_id":    remoteID,
		"last_payload": payload,
	}).Error
}

func (s *gormStore) MarkMoveSynced(id uint) error {
	now := time.Now().UTC()
	return s.db.Model(&models.AccountMove{}).Where("id = ?", id).Updates(map[string]interface{}{
		"synced":         true,
		"sync_failed":    false,
		"sync_note":      "",
		"last_synced_at": now,
	}).Error
}

func (s *gormStore) MarkMoveFailed(id uint, note string) error {
	return s.db.Model(&models.AccountMove{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sync_failed": true,
		"sync_note":   note,
	}).Error
}

func (s *gormStore) RecordPaymentRemote(id uint, remoteID int64, payload []byte) error {
	return s.db.Model(&models.AccountPayment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"remote_id":    remoteID,
		"last_payload": payload,
	}).Error
}

func (s *gormStore) MarkPaymentSynced(id uint) error {
	now := time.Now().UTC()
	return s.db.Model(&models.AccountPayment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"synced":         true,
		"sync_failed":    false,
		"sync_note":      "",
		"last_synced_at": now,
	}).Error
}

func (s *gormStore) MarkPaymentFailed(id uint, note string) error {
	return s.db.Model(&models.AccountPayment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sync_failed": true,
		"sync_note":   note,
	}).Error
}

func (s *gormStore) MarkRateSynced(id uint, remoteID int64) error {
	now := time.Now().UTC()
	return s.db.Model(&models.CurrencyRate{}).Where("id = ?", id).Updates(map[string]interface{}{
		"synced":         true,
		"sync_failed":    false,
		"remote_id":      remoteID,
		"last_synced_at": now,
	}).Error
}

func (s *gormStore) MarkRateFailed(id uint, note string) error {
	return s.db.Model(&models.CurrencyRate{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sync_failed": true,
		"sync_note":   note,
	}).Error
}

func (s *gormStore) MarkPartnerSent(id uint) error {
	return s.db.Model(&models.ResPartner{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sent_to_remote": true,
		"sync_note":      "",
	}).Error
}

func (s *gormStore) MarkPartnerFailed(id uint, note string) error {
	return s.db.Model(&models.ResPartner{}).Where("id = ?", id).
		Update("sync_note", note).Error
}

func (s *gormStore) SetMoveDisabled(id uint, disabled bool) error {
	return s.db.Model(&models.AccountMove{}).Where("id = ?", id).
		Update("sync_disabled", disabled).Error
}

func (s *gormStore) ClearMoveFailure(id uint) error {
	return s.db.Model(&models.AccountMove{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sync_failed": false,
		"sync_note":   "",
	}).Error
}

func (s *gormStore) SetPaymentDisabled(id uint, disabled bool) error {
	return s.db.Model(&models.AccountPayment{}).Where("id = ?", id).
		Update("sync_disabled", disabled).Error
}

func (s *gormStore) ClearPaymentFailure(id uint) error {
	return s.db.Model(&models.AccountPayment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sync_failed": false,
		"sync_note":   "",
	}).Error
}

func (s *gormStore) MoveByID(id uint) (*models.AccountMove, error) {
	var move models.AccountMove
	err := s.db.Preload("Lines").First(&move, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &move, nil
}

func (s *gormStore) SyncStatus() (map[string]int64, error) {
	out := map[string]int64{}
	counts := []struct {
		key   string
		model interface{}
		cond  string
		args  []interface{}
	}{
		{"moves_pending", &models.AccountMove{}, "synced = ? AND sync_failed = ? AND sync_disabled = ?", []interface{}{false, false, false}},
		{"moves_synced", &models.AccountMove{}, "synced = ?", []interface{}{true}},
		{"moves_failed", &models.AccountMove{}, "sync_failed = ?", []interface{}{true}},
		{"moves_disabled", &models.AccountMove{}, "sync_disabled = ?", []interface{}{true}},
		{"payments_pending", &models.AccountPayment{}, "synced = ? AND sync_failed = ? AND sync_disabled = ?", []interface{}{false, false, false}},
		{"payments_synced", &models.AccountPayment{}, "synced = ?", []interface{}{true}},
		{"payments_failed", &models.AccountPayment{}, "sync_failed = ?", []interface{}{true}},
		{"rates_pending", &models.CurrencyRate{}, "synced = ? AND sync_failed = ?", []interface{}{false, false}},
		{"partners_unsent", &models.ResPartner{}, "sent_to_remote = ?", []interface{}{false}},
	}
	for _, c := range counts {
		var n int64
		if err := s.db.Model(c.model).Where(c.cond, c.args...).Count(&n).Error; err != nil {
			return nil, err
		}
		out[c.key] = n
	}
	return out, nil
}

func (s *gormStore) PartnerByName(name string) (*models.ResPartner, error) {
	var p models.ResPartner
	err := s.db.Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *gormStore) AccountByCode(code string) (*models.AccountAccount, error) {
	var a models.AccountAccount
	err := s.db.Where("code = ?", code).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *gormStore) JournalDontSync(name string) (bool, error) {
	var j models.AccountJournal
	err := s.db.Where("name = ?", name).First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return j.DontSynchronize, nil
}
