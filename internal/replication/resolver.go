package replication

import (
	"github.com/sirupsen/logrus"

	"github.com/xelth-com/branchsync/internal/services/odoo"
)

// EntityKind names a remote entity type resolvable by natural key.
type EntityKind string

const (
	KindCompany  EntityKind = "company"
	KindJournal  EntityKind = "journal"
	KindAccount  EntityKind = "account"
	KindPartner  EntityKind = "partner"
	KindCurrency EntityKind = "currency"
	KindTax      EntityKind = "tax"
	KindAnalytic EntityKind = "analytic"
	KindCountry  EntityKind = "country"
	KindProduct  EntityKind = "product"
)

// One natural key per entity type. Accounts match on code, everything else
// on name.
var naturalKeyField = map[EntityKind]string{
	KindCompany:  "name",
	KindJournal:  "name",
	KindAccount:  "code",
	KindPartner:  "name",
	KindCurrency: "name",
	KindTax:      "name",
	KindAnalytic: "name",
	KindCountry:  "name",
	KindProduct:  "name",
}

var entityModel = map[EntityKind]string{
	KindCompany:  modelCompany,
	KindJournal:  modelJournal,
	KindAccount:  modelAccount,
	KindPartner:  modelPartner,
	KindCurrency: modelCurrency,
	KindTax:      modelTax,
	KindAnalytic: modelAnalytic,
	KindCountry:  modelCountry,
	KindProduct:  modelProduct,
}

// CompanyRef identifies the company scope of a document. Documents carry
// either a branch label or a company label; the ref is resolved exactly once
// into a canonical remote company id.
type CompanyRef struct {
	IsBranch bool
	Name     string
}

// DocumentCompanyRef picks the scope for a document: the branch label wins
// when present, otherwise the company label is used.
func DocumentCompanyRef(branchName, companyName string) CompanyRef {
	if branchName != "" {
		return CompanyRef{IsBranch: true, Name: branchName}
	}
	return CompanyRef{Name: companyName}
}

type cacheKey struct {
	kind  EntityKind
	key   string
	scope int64
}

// Resolver maps local natural keys to remote ids via live searches against
// the remote store. Lookups are memoized for the lifetime of the resolver;
// the orchestrator creates a fresh one per batch run so the cache never
// outlives a run.
type Resolver struct {
	remote Remote
	cache  map[cacheKey]int64
	log    *logrus.Entry
}

// NewResolver creates a resolver with an empty per-run cache.
func NewResolver(remote Remote) *Resolver {
	return &Resolver{
		remote: remote,
		cache:  make(map[cacheKey]int64),
		log:    logrus.WithField("component", "resolver"),
	}
}

// Resolve maps a natural key to a remote id with no company scoping.
// A zero return with nil error means no match: absence is a normal outcome
// that callers branch on, never an error at this level.
func (r *Resolver) Resolve(kind EntityKind, key string) (int64, error) {
	return r.lookup(kind, key, 0, odoo.Domain{odoo.Eq(naturalKeyField[kind], key)})
}

// ResolveScoped maps a natural key within a remote company, also accepting
// unscoped (company-less) records so shared masters still match. Inactive
// records never match.
func (r *Resolver) ResolveScoped(kind EntityKind, key string, companyID int64) (int64, error) {
	domain := odoo.Domain{
		odoo.Eq(naturalKeyField[kind], key),
		odoo.OrMarker,
		odoo.Eq("company_id", companyID),
		odoo.Eq("company_id", false),
		odoo.Eq("active", true),
	}
	return r.lookup(kind, key, companyID, domain)
}

// ResolveCompany resolves a CompanyRef to the canonical remote company id.
func (r *Resolver) ResolveCompany(ref CompanyRef) (int64, error) {
	return r.Resolve(KindCompany, ref.Name)
}

// Prime records a known mapping, overriding a memoized miss. Called after a
// remote create so later lookups in the same run see the new record.
func (r *Resolver) Prime(kind EntityKind, key string, id int64) {
	r.cache[cacheKey{kind: kind, key: key}] = id
}

func (r *Resolver) lookup(kind EntityKind, key string, scope int64, domain odoo.Domain) (int64, error) {
	if key == "" {
		return 0, nil
	}

	ck := cacheKey{kind: kind, key: key, scope: scope}
	if id, ok := r.cache[ck]; ok {
		return id, nil
	}

	records, err := r.remote.SearchRead(entityModel[kind], domain, []string{"id"}, 1)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		r.log.Warnf("no %s found with %s %q in the remote database", entityModel[kind], naturalKeyField[kind], key)
		r.cache[ck] = 0
		return 0, nil
	}

	id := asInt64(records[0]["id"])
	r.cache[ck] = id
	return id, nil
}

// asInt64 normalizes the id types the XML-RPC layer may hand back.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
