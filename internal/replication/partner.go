package replication

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xelth-com/branchsync/internal/models"
)

// PartnerFactory creates missing remote contacts on demand. Creation needs
// the partner's two control accounts resolved by code; without accounting
// defaults the remote store would file the contact's documents against the
// wrong accounts.
type PartnerFactory struct {
	remote   Remote
	resolver *Resolver
	log      *logrus.Entry
}

// NewPartnerFactory creates a factory sharing the run's resolver cache.
func NewPartnerFactory(remote Remote, resolver *Resolver) *PartnerFactory {
	return &PartnerFactory{
		remote:   remote,
		resolver: resolver,
		log:      logrus.WithField("component", "partner-factory"),
	}
}

// EnsurePartner resolves the partner by name, creating the remote contact if
// absent, and returns the remote id either way.
func (f *PartnerFactory) EnsurePartner(partner *models.ResPartner) (int64, error) {
	id, err := f.resolver.Resolve(KindPartner, partner.Name)
	if err != nil {
		return 0, err
	}
	if id != 0 {
		return id, nil
	}

	values, err := f.buildValues(partner)
	if err != nil {
		return 0, err
	}

	id, err = f.remote.Create(modelPartner, values)
	if err != nil {
		return 0, fmt.Errorf("creating remote partner %q: %w", partner.Name, err)
	}
	f.resolver.Prime(KindPartner, partner.Name, id)
	f.log.Infof("created remote partner %q as %d", partner.Name, id)
	return id, nil
}

// PushPartner creates or updates the remote contact by name. Used by the
// partner batch; unlike EnsurePartner it refreshes an existing twin.
func (f *PartnerFactory) PushPartner(partner *models.ResPartner) (int64, bool, error) {
	values, err := f.buildValues(partner)
	if err != nil {
		return 0, false, err
	}

	id, err := f.resolver.Resolve(KindPartner, partner.Name)
	if err != nil {
		return 0, false, err
	}
	if id != 0 {
		if err := f.remote.Write(modelPartner, []int64{id}, values); err != nil {
			return 0, false, err
		}
		return id, false, nil
	}

	id, err = f.remote.Create(modelPartner, values)
	if err != nil {
		return 0, false, err
	}
	f.resolver.Prime(KindPartner, partner.Name, id)
	return id, true, nil
}

func (f *PartnerFactory) buildValues(partner *models.ResPartner) (map[string]interface{}, error) {
	receivableID, err := f.resolver.Resolve(KindAccount, partner.ReceivableCode)
	if err != nil {
		return nil, err
	}
	if receivableID == 0 {
		return nil, &MappingError{Model: modelAccount, Field: "code", Value: partner.ReceivableCode}
	}

	payableID, err := f.resolver.Resolve(KindAccount, partner.PayableCode)
	if err != nil {
		return nil, err
	}
	if payableID == 0 {
		return nil, &MappingError{Model: modelAccount, Field: "code", Value: partner.PayableCode}
	}

	// Country is an optional enrichment; an unknown country is simply left
	// unset on the remote contact.
	countryID, err := f.resolver.Resolve(KindCountry, partner.CountryName)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"name":                           partner.Name,
		"email":                          partner.Email,
		"phone":                          partner.Phone,
		"mobile":                         partner.Mobile,
		"is_company":                     partner.IsCompany,
		"company_type":                   partner.CompanyType,
		"street":                         partner.Street,
		"street2":                        partner.Street2,
		"city":                           partner.City,
		"zip":                            partner.Zip,
		"country_id":                     idOrFalse(countryID),
		"vat":                            partner.Vat,
		"customer_rank":                  partner.CustomerRank,
		"supplier_rank":                  partner.SupplierRank,
		"property_account_receivable_id": receivableID,
		"property_account_payable_id":    payableID,
	}, nil
}
