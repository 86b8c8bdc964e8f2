package replication

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/xelth-com/branchsync/internal/models"
)

const dateLayout = "2006-01-02"

// Builder translates a local document graph into a remote creation payload,
// resolving every reference field through the shared resolver and falling
// back to the partner factory when a contact is missing remotely.
type Builder struct {
	resolver *Resolver
	partners *PartnerFactory
	store    Store
	log      *logrus.Entry
}

// NewBuilder wires a builder to a run's resolver and factory.
func NewBuilder(resolver *Resolver, partners *PartnerFactory, store Store) *Builder {
	return &Builder{
		resolver: resolver,
		partners: partners,
		store:    store,
		log:      logrus.WithField("component", "builder"),
	}
}

// lineCreate wraps line values in the remote store's "add new child"
// operation. Remote lines are always fully replaced, never merged.
func lineCreate(values map[string]interface{}) []interface{} {
	return []interface{}{0, 0, values}
}

// setIDs wraps an id list in the remote store's "replace the whole set"
// operation for many2many fields.
func setIDs(ids []int64) []interface{} {
	raw := make([]interface{}, len(ids))
	for i, id := range ids {
		raw[i] = id
	}
	return []interface{}{[]interface{}{6, 0, raw}}
}

// idOrFalse encodes an optional reference the way the remote store expects:
// false stands for "not set".
func idOrFalse(id int64) interface{} {
	if id == 0 {
		return false
	}
	return id
}

func strOrFalse(s string) interface{} {
	if s == "" {
		return false
	}
	return s
}

func dateOrFalse(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return false
	}
	return t.Format(dateLayout)
}

// jsonNames decodes a JSON array column of natural keys.
func jsonNames(j datatypes.JSON) []string {
	if len(j) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(j, &out); err != nil {
		return nil
	}
	return out
}

// requireCompany resolves the document's company scope; a branch or company
// with no remote counterpart is fatal for the document.
func (b *Builder) requireCompany(ref CompanyRef) (int64, error) {
	id, err := b.resolver.ResolveCompany(ref)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, &MappingError{Model: modelCompany, Field: "name", Value: ref.Name}
	}
	return id, nil
}

// requireJournal resolves a journal within the company scope.
func (b *Builder) requireJournal(name string, companyID int64) (int64, error) {
	id, err := b.resolver.ResolveScoped(KindJournal, name, companyID)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, &MappingError{Model: modelJournal, Field: "name", Value: name, CompanyID: companyID}
	}
	return id, nil
}

// resolveAccount applies the substitute-account override before resolution:
// when the local account declares a substitute, the substitute's code is the
// identity used on the remote side. A missing remote account is fatal.
func (b *Builder) resolveAccount(code string, companyID int64) (int64, error) {
	lookupCode := code
	if acc, err := b.store.AccountByCode(code); err == nil && acc.SubstituteCode != "" {
		lookupCode = acc.SubstituteCode
	} else if err != nil && err != ErrNotFound {
		return 0, err
	}

	id, err := b.resolver.ResolveScoped(KindAccount, lookupCode, companyID)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, &MappingError{Model: modelAccount, Field: "code", Value: lookupCode, CompanyID: companyID}
	}
	return id, nil
}

// resolvePartner resolves a contact by name, creating it remotely when the
// local master data is available. Returns 0 when the name is empty.
func (b *Builder) resolvePartner(name string) (int64, error) {
	if name == "" {
		return 0, nil
	}
	id, err := b.resolver.Resolve(KindPartner, name)
	if err != nil {
		return 0, err
	}
	if id != 0 {
		return id, nil
	}

	local, err := b.store.PartnerByName(name)
	if err == ErrNotFound {
		return 0, &MappingError{Model: modelPartner, Field: "name", Value: name}
	}
	if err != nil {
		return 0, err
	}
	return b.partners.EnsurePartner(local)
}

// resolveOptionalSet resolves a best-effort set of classification keys
// (taxes, analytic accounts). Unresolved entries are dropped with a warning;
// they are enrichments, not requirements.
func (b *Builder) resolveOptionalSet(kind EntityKind, names []string, companyID int64) ([]int64, error) {
	var ids []int64
	for _, name := range names {
		id, err := b.resolver.ResolveScoped(kind, name, companyID)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			b.log.Warnf("dropping unresolved %s %q (company %d)", kind, name, companyID)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// analyticDistribution encodes resolved analytic accounts as the remote
// store's distribution map, each carrying the full share.
func analyticDistribution(ids []int64) interface{} {
	if len(ids) == 0 {
		return false
	}
	dist := make(map[string]interface{}, len(ids))
	for _, id := range ids {
		dist[strconv.FormatInt(id, 10)] = 100
	}
	return dist
}

// buildItemLine builds a journal-item line payload.
func (b *Builder) buildItemLine(line *models.AccountMoveLine, companyID int64) (map[string]interface{}, error) {
	accountID, err := b.resolveAccount(line.AccountCode, companyID)
	if err != nil {
		return nil, err
	}

	currencyID, err := b.resolver.Resolve(KindCurrency, line.CurrencyName)
	if err != nil {
		return nil, err
	}

	partnerID, err := b.resolvePartner(line.PartnerName)
	if err != nil {
		return nil, err
	}

	analyticIDs, err := b.resolveOptionalSet(KindAnalytic, jsonNames(line.AnalyticNames), companyID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"account_id":            accountID,
		"name":                  line.Label,
		"debit":                 line.Debit.InexactFloat64(),
		"credit":                line.Credit.InexactFloat64(),
		"partner_id":            idOrFalse(partnerID),
		"currency_id":           idOrFalse(currencyID),
		"amount_currency":       line.AmountCurrency.InexactFloat64(),
		"analytic_distribution": analyticDistribution(analyticIDs),
	}, nil
}

// buildProductLine builds an invoice product-line payload.
func (b *Builder) buildProductLine(line *models.AccountMoveLine, companyID int64) (map[string]interface{}, error) {
	accountID, err := b.resolveAccount(line.AccountCode, companyID)
	if err != nil {
		return nil, err
	}

	taxIDs, err := b.resolveOptionalSet(KindTax, jsonNames(line.TaxNames), companyID)
	if err != nil {
		return nil, err
	}
	analyticIDs, err := b.resolveOptionalSet(KindAnalytic, jsonNames(line.AnalyticNames), companyID)
	if err != nil {
		return nil, err
	}

	// Products are optional: an unknown product falls back to a free-text
	// description line.
	productID, err := b.resolver.Resolve(KindProduct, line.ProductName)
	if err != nil {
		return nil, err
	}

	values := map[string]interface{}{
		"product_id":            idOrFalse(productID),
		"name":                  strOrFalse(line.Label),
		"account_id":            accountID,
		"quantity":              line.Quantity.InexactFloat64(),
		"price_unit":            line.PriceUnit.InexactFloat64(),
		"price_subtotal":        line.PriceSubtotal.InexactFloat64(),
		"analytic_distribution": analyticDistribution(analyticIDs),
	}
	if len(taxIDs) > 0 {
		values["tax_ids"] = setIDs(taxIDs)
	}
	return values, nil
}

// marshalPayload snapshots the payload for operator triage.
func marshalPayload(payload map[string]interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return []byte(fmt.Sprintf("%v", payload))
	}
	return data
}
