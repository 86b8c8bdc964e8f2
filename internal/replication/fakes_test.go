package replication

import (
	"fmt"
	"sort"
	"time"

	"github.com/xelth-com/branchsync/internal/models"
	"github.com/xelth-com/branchsync/internal/services/odoo"
)

// fakeRemote is an in-memory stand-in for the XML-RPC client. Records are
// plain field maps keyed by model name; the domain evaluator covers the
// operators the replication layer actually emits.
type fakeRemote struct {
	records map[string][]map[string]interface{}
	nextID  int64

	authErr     error
	createErr   map[string]error // keyed by model
	executeErr  map[string]error
	writeErr    map[string]error
	authCalls   int
	searchReads int
	creates     []string // model of every Create, in order
	executes    []string // "model.method" of every Execute
	writes      []string
	unlinks     []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records:    make(map[string][]map[string]interface{}),
		createErr:  make(map[string]error),
		executeErr: make(map[string]error),
		writeErr:   make(map[string]error),
	}
}

// seed inserts a remote record and returns its id.
func (f *fakeRemote) seed(model string, fields map[string]interface{}) int64 {
	f.nextID++
	rec := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		rec[k] = v
	}
	rec["id"] = f.nextID
	f.records[model] = append(f.records[model], rec)
	return f.nextID
}

func (f *fakeRemote) byID(model string, id int64) map[string]interface{} {
	for _, rec := range f.records[model] {
		if rec["id"] == id {
			return rec
		}
	}
	return nil
}

func (f *fakeRemote) Authenticate() (int, error) {
	f.authCalls++
	if f.authErr != nil {
		return 0, f.authErr
	}
	return 1, nil
}

func (f *fakeRemote) SearchRead(model string, domain odoo.Domain, fields []string, limit int) ([]map[string]interface{}, error) {
	f.searchReads++
	var out []map[string]interface{}
	for _, rec := range f.records[model] {
		if matchDomain(rec, domain) {
			out = append(out, rec)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRemote) Search(model string, domain odoo.Domain, limit int) ([]int64, error) {
	var out []int64
	for _, rec := range f.records[model] {
		if matchDomain(rec, domain) {
			out = append(out, rec["id"].(int64))
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRemote) Create(model string, values map[string]interface{}) (int64, error) {
	f.creates = append(f.creates, model)
	if err := f.createErr[model]; err != nil {
		return 0, err
	}
	return f.seed(model, values), nil
}

func (f *fakeRemote) Write(model string, ids []int64, values map[string]interface{}) error {
	f.writes = append(f.writes, model)
	if err := f.writeErr[model]; err != nil {
		return err
	}
	for _, id := range ids {
		rec := f.byID(model, id)
		if rec == nil {
			return fmt.Errorf("%s %d does not exist", model, id)
		}
		for k, v := range values {
			rec[k] = v
		}
	}
	return nil
}

func (f *fakeRemote) Unlink(model string, ids []int64) error {
	f.unlinks = append(f.unlinks, model)
	keep := f.records[model][:0]
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	for _, rec := range f.records[model] {
		if !drop[rec["id"].(int64)] {
			keep = append(keep, rec)
		}
	}
	f.records[model] = keep
	return nil
}

func (f *fakeRemote) Execute(model, method string, ids []int64) error {
	f.executes = append(f.executes, model+"."+method)
	if err := f.executeErr[model]; err != nil {
		return err
	}
	return nil
}

// matchDomain evaluates the subset of domain syntax the resolver and
// orchestrator emit: AND-joined terms with the "|" prefix ORing the next two.
func matchDomain(rec map[string]interface{}, domain odoo.Domain) bool {
	i := 0
	for i < len(domain) {
		if marker, ok := domain[i].(string); ok && marker == odoo.OrMarker {
			if i+2 >= len(domain) {
				return false
			}
			a := matchTerm(rec, domain[i+1])
			b := matchTerm(rec, domain[i+2])
			if !a && !b {
				return false
			}
			i += 3
			continue
		}
		if !matchTerm(rec, domain[i]) {
			return false
		}
		i++
	}
	return true
}

func matchTerm(rec map[string]interface{}, raw interface{}) bool {
	term, ok := raw.([]interface{})
	if !ok || len(term) != 3 {
		return false
	}
	field, _ := term[0].(string)
	op, _ := term[1].(string)
	have, present := rec[field]
	want := term[2]
	switch op {
	case "=":
		if !present {
			// Unset reference fields read as false remotely.
			return want == false
		}
		return valueEq(have, want)
	case ">=":
		return asInt64(have) >= asInt64(want)
	}
	return false
}

func valueEq(a, b interface{}) bool {
	if ai, ok := numeric(a); ok {
		if bi, ok := numeric(b); ok {
			return ai == bi
		}
		return false
	}
	return a == b
}

func numeric(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// memStore is an in-memory Store mirroring the gorm implementation's
// selection and bookkeeping rules.
type memStore struct {
	moves    []*models.AccountMove
	payments []*models.AccountPayment
	rates    []*models.CurrencyRate
	partners []*models.ResPartner
	accounts map[string]*models.AccountAccount
	journals map[string]*models.AccountJournal
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]*models.AccountAccount),
		journals: make(map[string]*models.AccountJournal),
	}
}

func (s *memStore) addMove(m *models.AccountMove) *models.AccountMove {
	m.ID = uint(len(s.moves) + 1)
	s.moves = append(s.moves, m)
	return m
}

func (s *memStore) addPayment(p *models.AccountPayment) *models.AccountPayment {
	p.ID = uint(len(s.payments) + 1)
	s.payments = append(s.payments, p)
	return p
}

func (s *memStore) addRate(r *models.CurrencyRate) *models.CurrencyRate {
	r.ID = uint(len(s.rates) + 1)
	s.rates = append(s.rates, r)
	return r
}

func (s *memStore) addPartner(p *models.ResPartner) *models.ResPartner {
	p.ID = uint(len(s.partners) + 1)
	s.partners = append(s.partners, p)
	return p
}

func (s *memStore) SelectMoves(entriesOnly bool, cutoff time.Time, limit int) ([]models.AccountMove, error) {
	var out []models.AccountMove
	for _, m := range s.moves {
		if !m.Eligible() || m.State != models.StatePosted || m.Date.Before(cutoff) {
			continue
		}
		if entriesOnly != m.IsEntry() {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) SelectPayments(internalTransfers bool, cutoff time.Time, limit int) ([]models.AccountPayment, error) {
	var out []models.AccountPayment
	for _, p := range s.payments {
		if !p.Eligible() || p.State != models.StatePosted || p.Date.Before(cutoff) {
			continue
		}
		if p.IsInternalTransfer != internalTransfers {
			continue
		}
		if internalTransfers && p.PaymentType != models.PaymentOutbound {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) SelectRates(symbol string, limit int) ([]models.CurrencyRate, error) {
	var out []models.CurrencyRate
	for _, r := range s.rates {
		if !r.Eligible() {
			continue
		}
		if symbol != "" && r.CurrencySymbol != symbol {
			continue
		}
		out = append(out, *r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) SelectUnsentPartners(limit int) ([]models.ResPartner, error) {
	var out []models.ResPartner
	for _, p := range s.partners {
		if p.SentToRemote {
			continue
		}
		out = append(out, *p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) moveByID(id uint) *models.AccountMove {
	for _, m := range s.moves {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *memStore) paymentByID(id uint) *models.AccountPayment {
	for _, p := range s.payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *memStore) RecordMoveRemote(id uint, remoteID int64, payload []byte) error {
	m := s.moveByID(id)
	m.RemoteID = &remoteID
	m.LastPayload = payload
	return nil
}

func (s *memStore) MarkMoveSynced(id uint) error {
	m := s.moveByID(id)
	now := time.Now().UTC()
	m.Synced, m.SyncFailed, m.SyncNote, m.LastSyncedAt = true, false, "", &now
	return nil
}

func (s *memStore) MarkMoveFailed(id uint, note string) error {
	m := s.moveByID(id)
	m.SyncFailed, m.SyncNote = true, note
	return nil
}

func (s *memStore) RecordPaymentRemote(id uint, remoteID int64, payload []byte) error {
	p := s.paymentByID(id)
	p.RemoteID = &remoteID
	p.LastPayload = payload
	return nil
}

func (s *memStore) MarkPaymentSynced(id uint) error {
	p := s.paymentByID(id)
	now := time.Now().UTC()
	p.Synced, p.SyncFailed, p.SyncNote, p.LastSyncedAt = true, false, "", &now
	return nil
}

func (s *memStore) MarkPaymentFailed(id uint, note string) error {
	p := s.paymentByID(id)
	p.SyncFailed, p.SyncNote = true, note
	return nil
}

func (s *memStore) MarkRateSynced(id uint, remoteID int64) error {
	for _, r := range s.rates {
		if r.ID == id {
			now := time.Now().UTC()
			r.Synced, r.SyncFailed, r.RemoteID, r.LastSyncedAt = true, false, &remoteID, &now
		}
	}
	return nil
}

func (s *memStore) MarkRateFailed(id uint, note string) error {
	for _, r := range s.rates {
		if r.ID == id {
			r.SyncFailed, r.SyncNote = true, note
		}
	}
	return nil
}

func (s *memStore) MarkPartnerSent(id uint) error {
	for _, p := range s.partners {
		if p.ID == id {
			p.SentToRemote, p.SyncNote = true, ""
		}
	}
	return nil
}

func (s *memStore) MarkPartnerFailed(id uint, note string) error {
	for _, p := range s.partners {
		if p.ID == id {
			p.SyncNote = note
		}
	}
	return nil
}

func (s *memStore) SetMoveDisabled(id uint, disabled bool) error {
	s.moveByID(id).SyncDisabled = disabled
	return nil
}

func (s *memStore) ClearMoveFailure(id uint) error {
	m := s.moveByID(id)
	m.SyncFailed, m.SyncNote = false, ""
	return nil
}

func (s *memStore) SetPaymentDisabled(id uint, disabled bool) error {
	s.paymentByID(id).SyncDisabled = disabled
	return nil
}

func (s *memStore) ClearPaymentFailure(id uint) error {
	p := s.paymentByID(id)
	p.SyncFailed, p.SyncNote = false, ""
	return nil
}

func (s *memStore) MoveByID(id uint) (*models.AccountMove, error) {
	if m := s.moveByID(id); m != nil {
		return m, nil
	}
	return nil, ErrNotFound
}

func (s *memStore) SyncStatus() (map[string]int64, error) {
	out := map[string]int64{}
	for _, m := range s.moves {
		if m.Eligible() {
			out["moves_pending"]++
		}
		if m.Synced {
			out["moves_synced"]++
		}
		if m.SyncFailed {
			out["moves_failed"]++
		}
	}
	return out, nil
}

func (s *memStore) PartnerByName(name string) (*models.ResPartner, error) {
	for _, p := range s.partners {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) AccountByCode(code string) (*models.AccountAccount, error) {
	if a, ok := s.accounts[code]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (s *memStore) JournalDontSync(name string) (bool, error) {
	if j, ok := s.journals[name]; ok {
		return j.DontSynchronize, nil
	}
	return false, nil
}
