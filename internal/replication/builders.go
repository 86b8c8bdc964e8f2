package replication

import (
	"github.com/xelth-com/branchsync/internal/models"
)

// BuildEntry builds the creation payload for a plain journal entry.
// Header fields are carried verbatim from the local document; the remote
// store recomputes or accepts totals as supplied.
func (b *Builder) BuildEntry(move *models.AccountMove) (map[string]interface{}, error) {
	companyID, err := b.requireCompany(DocumentCompanyRef(move.BranchName, move.CompanyName))
	if err != nil {
		return nil, err
	}

	var lines []interface{}
	for i := range move.Lines {
		values, err := b.buildItemLine(&move.Lines[i], companyID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, lineCreate(values))
	}

	journalID, err := b.requireJournal(move.JournalName, companyID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"company_id": companyID,
		"journal_id": journalID,
		"ref":        strOrFalse(move.Ref),
		"date":       move.Date.Format(dateLayout),
		"move_type":  models.MoveTypeEntry,
		"narration":  strOrFalse(move.Narration),
		"line_ids":   lines,
	}, nil
}

// BuildInvoice builds the staging payload for an invoice or bill: journal
// items plus product lines, with the header partner resolved or created.
func (b *Builder) BuildInvoice(move *models.AccountMove) (map[string]interface{}, error) {
	companyID, err := b.requireCompany(DocumentCompanyRef(move.BranchName, move.CompanyName))
	if err != nil {
		return nil, err
	}

	var itemLines, productLines []interface{}
	for i := range move.Lines {
		line := &move.Lines[i]
		if line.LineType == models.LineProduct {
			values, err := b.buildProductLine(line, companyID)
			if err != nil {
				return nil, err
			}
			productLines = append(productLines, lineCreate(values))
			continue
		}
		values, err := b.buildItemLine(line, companyID)
		if err != nil {
			return nil, err
		}
		itemLines = append(itemLines, lineCreate(values))
	}

	partnerID, err := b.resolvePartner(move.PartnerName)
	if err != nil {
		return nil, err
	}
	currencyID, err := b.resolver.Resolve(KindCurrency, move.CurrencyName)
	if err != nil {
		return nil, err
	}
	journalID, err := b.requireJournal(move.JournalName, companyID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"name":              move.Name,
		"partner_id":        idOrFalse(partnerID),
		"company_id":        companyID,
		"journal_id":        journalID,
		"currency_id":       idOrFalse(currencyID),
		"move_type":         move.MoveType,
		"state":             move.State,
		"source_state":      move.State,
		"payment_state":     strOrFalse(move.PaymentState),
		"payment_reference": strOrFalse(move.PaymentReference),
		"ref":               strOrFalse(move.Ref),
		"date":              move.Date.Format(dateLayout),
		"invoice_date":      dateOrFalse(move.InvoiceDate),
		"invoice_date_due":  dateOrFalse(move.InvoiceDateDue),
		"invoice_origin":    strOrFalse(move.InvoiceOrigin),
		"narration":         strOrFalse(move.Narration),
		"amount_untaxed":    move.AmountUntaxed.InexactFloat64(),
		"amount_tax":        move.AmountTax.InexactFloat64(),
		"amount_total":      move.AmountTotal.InexactFloat64(),
		"amount_residual":   move.AmountResidual.InexactFloat64(),
		"invoice_line_ids":  productLines,
		"line_ids":          itemLines,
	}, nil
}

// BuildPayment builds the staging payload for a customer or vendor payment.
func (b *Builder) BuildPayment(payment *models.AccountPayment) (map[string]interface{}, error) {
	companyID, err := b.requireCompany(DocumentCompanyRef(payment.BranchName, payment.CompanyName))
	if err != nil {
		return nil, err
	}

	partnerID, err := b.resolvePartner(payment.PartnerName)
	if err != nil {
		return nil, err
	}
	journalID, err := b.requireJournal(payment.JournalName, companyID)
	if err != nil {
		return nil, err
	}
	currencyID, err := b.resolver.Resolve(KindCurrency, payment.CurrencyName)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"name":         payment.Name,
		"partner_id":   idOrFalse(partnerID),
		"journal_id":   journalID,
		"company_id":   companyID,
		"currency_id":  idOrFalse(currencyID),
		"amount":       payment.Amount.InexactFloat64(),
		"date":         payment.Date.Format(dateLayout),
		"payment_type": payment.PaymentType,
		"partner_type": strOrFalse(payment.PartnerType),
		"memo":         strOrFalse(payment.Memo),
		"state":        payment.State,
	}, nil
}

// BuildTransfer builds the single outbound leg of an internal transfer. The
// remote system materializes the paired inbound leg and balancing entries
// itself; only the destination journal tag is carried. Outbound semantics
// carry a negative signed amount.
func (b *Builder) BuildTransfer(payment *models.AccountPayment) (map[string]interface{}, error) {
	companyID, err := b.requireCompany(DocumentCompanyRef(payment.BranchName, payment.CompanyName))
	if err != nil {
		return nil, err
	}

	journalID, err := b.requireJournal(payment.JournalName, companyID)
	if err != nil {
		return nil, err
	}
	destinationID, err := b.requireJournal(payment.DestinationJournalName, companyID)
	if err != nil {
		return nil, err
	}
	currencyID, err := b.resolver.Resolve(KindCurrency, payment.CurrencyName)
	if err != nil {
		return nil, err
	}

	amount := payment.Amount
	if payment.PaymentType == models.PaymentOutbound {
		amount = amount.Neg()
	}

	ref := payment.Memo
	if ref == "" {
		ref = payment.Name
	}

	return map[string]interface{}{
		"name":                   payment.Name,
		"journal_id":             journalID,
		"destination_journal_id": destinationID,
		"company_id":             companyID,
		"currency_id":            idOrFalse(currencyID),
		"amount":                 amount.InexactFloat64(),
		"payment_type":           payment.PaymentType,
		"date":                   payment.Date.Format(dateLayout),
		"payment_ref":            strOrFalse(ref),
	}, nil
}

// BuildRate builds the payload for a currency-rate quotation. Company and
// currency are both required; a rate without either is meaningless remotely.
func (b *Builder) BuildRate(rate *models.CurrencyRate) (map[string]interface{}, error) {
	companyID, err := b.requireCompany(CompanyRef{Name: rate.CompanyName})
	if err != nil {
		return nil, err
	}

	currencyID, err := b.resolver.Resolve(KindCurrency, rate.CurrencyName)
	if err != nil {
		return nil, err
	}
	if currencyID == 0 {
		return nil, &MappingError{Model: modelCurrency, Field: "name", Value: rate.CurrencyName}
	}

	return map[string]interface{}{
		"name":                 rate.Name,
		"company_id":           companyID,
		"currency_id":          currencyID,
		"rate":                 rate.Rate.InexactFloat64(),
		"company_rate":         rate.CompanyRate.InexactFloat64(),
		"inverse_company_rate": rate.InverseCompanyRate.InexactFloat64(),
	}, nil
}
