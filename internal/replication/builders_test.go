package replication

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/xelth-com/branchsync/internal/models"
)

func seedScoped(remote *fakeRemote, model string, fields map[string]interface{}) int64 {
	fields["active"] = true
	return remote.seed(model, fields)
}

// seedBranchMasters seeds the remote master data a typical document needs and
// returns the remote company id of "Branch A".
func seedBranchMasters(remote *fakeRemote) int64 {
	companyID := remote.seed("res.company", map[string]interface{}{"name": "Branch A"})
	seedScoped(remote, "account.journal", map[string]interface{}{"name": "Main Journal", "company_id": companyID})
	seedScoped(remote, "account.account", map[string]interface{}{"code": "1000", "company_id": companyID})
	seedScoped(remote, "account.account", map[string]interface{}{"code": "2000", "company_id": companyID})
	remote.seed("res.currency", map[string]interface{}{"name": "USD"})
	return companyID
}

func newTestBuilder(remote *fakeRemote, store Store) *Builder {
	resolver := NewResolver(remote)
	return NewBuilder(resolver, NewPartnerFactory(remote, resolver), store)
}

func entryMove() *models.AccountMove {
	return &models.AccountMove{
		MoveType:    models.MoveTypeEntry,
		State:       models.StatePosted,
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Ref:         "MISC/2025/001",
		JournalName: "Main Journal",
		BranchName:  "Branch A",
		Lines: []models.AccountMoveLine{
			{AccountCode: "1000", Label: "cash in", Debit: decimal.NewFromInt(150)},
			{AccountCode: "2000", Label: "cash out", Credit: decimal.NewFromInt(150)},
		},
	}
}

func TestBuildEntryPayload(t *testing.T) {
	remote := newFakeRemote()
	companyID := seedBranchMasters(remote)
	builder := newTestBuilder(remote, newMemStore())

	payload, err := builder.BuildEntry(entryMove())
	if err != nil {
		t.Fatalf("BuildEntry: %v", err)
	}

	if payload["company_id"] != companyID {
		t.Errorf("company_id = %v, want %d", payload["company_id"], companyID)
	}
	if payload["move_type"] != models.MoveTypeEntry {
		t.Errorf("move_type = %v", payload["move_type"])
	}
	if payload["date"] != "2025-06-01" {
		t.Errorf("date = %v", payload["date"])
	}
	if payload["ref"] != "MISC/2025/001" {
		t.Errorf("ref = %v", payload["ref"])
	}

	lines, ok := payload["line_ids"].([]interface{})
	if !ok || len(lines) != 2 {
		t.Fatalf("expected 2 line create ops, got %v", payload["line_ids"])
	}
	op := lines[0].([]interface{})
	if op[0] != 0 || op[1] != 0 {
		t.Errorf("line op prefix = %v %v, want 0 0", op[0], op[1])
	}
	values := op[2].(map[string]interface{})
	if values["debit"] != 150.0 {
		t.Errorf("debit = %v", values["debit"])
	}
	if values["name"] != "cash in" {
		t.Errorf("line name = %v", values["name"])
	}
	if values["account_id"] == nil || values["account_id"] == false {
		t.Errorf("account_id not resolved: %v", values["account_id"])
	}
}

func TestBuildEntrySubstituteAccount(t *testing.T) {
	remote := newFakeRemote()
	companyID := remote.seed("res.company", map[string]interface{}{"name": "Branch A"})
	seedScoped(remote, "account.journal", map[string]interface{}{"name": "Main Journal", "company_id": companyID})
	// Only the substitute target exists remotely.
	targetID := seedScoped(remote, "account.account", map[string]interface{}{"code": "2000", "company_id": companyID})
	seedScoped(remote, "account.account", map[string]interface{}{"code": "3000", "company_id": companyID})

	store := newMemStore()
	store.accounts["1000"] = &models.AccountAccount{Code: "1000", SubstituteCode: "2000"}

	move := entryMove()
	move.Lines = []models.AccountMoveLine{
		{AccountCode: "1000", Label: "redirected", Debit: decimal.NewFromInt(10)},
		{AccountCode: "3000", Label: "direct", Credit: decimal.NewFromInt(10)},
	}

	payload, err := newTestBuilder(remote, store).BuildEntry(move)
	if err != nil {
		t.Fatalf("BuildEntry: %v", err)
	}

	lines := payload["line_ids"].([]interface{})
	values := lines[0].([]interface{})[2].(map[string]interface{})
	if values["account_id"] != targetID {
		t.Errorf("substitute not applied: account_id = %v, want %d", values["account_id"], targetID)
	}
}

func TestBuildEntryMissingAccountIsFatal(t *testing.T) {
	remote := newFakeRemote()
	companyID := remote.seed("res.company", map[string]interface{}{"name": "Branch A"})
	seedScoped(remote, "account.journal", map[string]interface{}{"name": "Main Journal", "company_id": companyID})
	// account 1000 absent remotely

	_, err := newTestBuilder(remote, newMemStore()).BuildEntry(entryMove())

	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected MappingError, got %v", err)
	}
	if mapErr.Model != "account.account" || mapErr.Field != "code" || mapErr.Value != "1000" {
		t.Errorf("error should name the missing account: %+v", mapErr)
	}
	if mapErr.CompanyID != companyID {
		t.Errorf("error should name the company scope: %+v", mapErr)
	}
}

func TestBuildEntryMissingJournalIsFatal(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("res.company", map[string]interface{}{"name": "Branch A"})
	seedScoped(remote, "account.account", map[string]interface{}{"code": "1000"})
	seedScoped(remote, "account.account", map[string]interface{}{"code": "2000"})

	_, err := newTestBuilder(remote, newMemStore()).BuildEntry(entryMove())

	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected MappingError, got %v", err)
	}
	if mapErr.Model != "account.journal" || mapErr.Value != "Main Journal" {
		t.Errorf("error should name the missing journal: %+v", mapErr)
	}
}

func TestBuildInvoiceSplitsLines(t *testing.T) {
	remote := newFakeRemote()
	companyID := seedBranchMasters(remote)
	seedScoped(remote, "account.tax", map[string]interface{}{"name": "VAT 19%", "company_id": companyID})
	remote.seed("res.partner", map[string]interface{}{"name": "Acme GmbH"})

	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	move := &models.AccountMove{
		Name:        "INV/2025/0042",
		MoveType:    models.MoveTypeOutInvoice,
		State:       models.StatePosted,
		Date:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		PartnerName: "Acme GmbH",
		JournalName: "Main Journal",
		BranchName:  "Branch A",
		CurrencyName: "USD",
		InvoiceDateDue: &due,
		AmountTotal:    decimal.NewFromFloat(119),
		Lines: []models.AccountMoveLine{
			{
				LineType:      models.LineProduct,
				AccountCode:   "1000",
				Label:         "widgets",
				Quantity:      decimal.NewFromInt(10),
				PriceUnit:     decimal.NewFromInt(10),
				PriceSubtotal: decimal.NewFromInt(100),
				TaxNames:      datatypes.JSON([]byte(`["VAT 19%","Unknown Tax"]`)),
			},
			{AccountCode: "2000", Label: "receivable", Debit: decimal.NewFromInt(119)},
		},
	}

	payload, err := newTestBuilder(remote, newMemStore()).BuildInvoice(move)
	if err != nil {
		t.Fatalf("BuildInvoice: %v", err)
	}

	products, _ := payload["invoice_line_ids"].([]interface{})
	items, _ := payload["line_ids"].([]interface{})
	if len(products) != 1 || len(items) != 1 {
		t.Fatalf("line split wrong: %d product, %d item", len(products), len(items))
	}
	if payload["name"] != "INV/2025/0042" {
		t.Errorf("name = %v", payload["name"])
	}
	if payload["invoice_date_due"] != "2025-07-01" {
		t.Errorf("invoice_date_due = %v", payload["invoice_date_due"])
	}
	if payload["partner_id"] == false {
		t.Error("partner not resolved")
	}

	values := products[0].([]interface{})[2].(map[string]interface{})
	if values["quantity"] != 10.0 {
		t.Errorf("quantity = %v", values["quantity"])
	}
	// The known tax survives, the unknown one is dropped without failing.
	taxOps, ok := values["tax_ids"].([]interface{})
	if !ok || len(taxOps) != 1 {
		t.Fatalf("tax_ids = %v", values["tax_ids"])
	}
	setOp := taxOps[0].([]interface{})
	ids := setOp[2].([]interface{})
	if len(ids) != 1 {
		t.Errorf("expected 1 resolved tax, got %v", ids)
	}
}

func TestBuildTransferSingleOutboundLeg(t *testing.T) {
	remote := newFakeRemote()
	companyID := seedBranchMasters(remote)
	destID := seedScoped(remote, "account.journal", map[string]interface{}{"name": "Savings", "company_id": companyID})

	payment := &models.AccountPayment{
		Name:                   "PAY/2025/0007",
		PaymentType:            models.PaymentOutbound,
		State:                  models.StatePosted,
		Date:                   time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		Amount:                 decimal.NewFromInt(500),
		JournalName:            "Main Journal",
		DestinationJournalName: "Savings",
		BranchName:             "Branch A",
		CurrencyName:           "USD",
		IsInternalTransfer:     true,
		Memo:                   "monthly sweep",
	}

	payload, err := newTestBuilder(remote, newMemStore()).BuildTransfer(payment)
	if err != nil {
		t.Fatalf("BuildTransfer: %v", err)
	}

	if payload["amount"] != -500.0 {
		t.Errorf("outbound amount = %v, want -500", payload["amount"])
	}
	if payload["destination_journal_id"] != destID {
		t.Errorf("destination_journal_id = %v, want %d", payload["destination_journal_id"], destID)
	}
	if payload["payment_ref"] != "monthly sweep" {
		t.Errorf("payment_ref = %v", payload["payment_ref"])
	}

	payment.PaymentType = models.PaymentInbound
	payload, err = newTestBuilder(remote, newMemStore()).BuildTransfer(payment)
	if err != nil {
		t.Fatalf("BuildTransfer: %v", err)
	}
	if payload["amount"] != 500.0 {
		t.Errorf("inbound amount = %v, want 500", payload["amount"])
	}
}

func TestBuildTransferRequiresDestinationJournal(t *testing.T) {
	remote := newFakeRemote()
	seedBranchMasters(remote)

	payment := &models.AccountPayment{
		PaymentType:            models.PaymentOutbound,
		Amount:                 decimal.NewFromInt(100),
		JournalName:            "Main Journal",
		DestinationJournalName: "Nowhere",
		BranchName:             "Branch A",
		IsInternalTransfer:     true,
	}

	_, err := newTestBuilder(remote, newMemStore()).BuildTransfer(payment)
	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected MappingError, got %v", err)
	}
	if mapErr.Value != "Nowhere" {
		t.Errorf("error should name the destination journal: %+v", mapErr)
	}
}

func TestBuildRate(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("res.company", map[string]interface{}{"name": "Main Co"})
	currencyID := remote.seed("res.currency", map[string]interface{}{"name": "USD"})

	rate := &models.CurrencyRate{
		Name:               "2025-06-01",
		CurrencyName:       "USD",
		CompanyName:        "Main Co",
		Rate:               decimal.NewFromFloat(36.5),
		CompanyRate:        decimal.NewFromFloat(36.5),
		InverseCompanyRate: decimal.NewFromFloat(0.0274),
	}

	payload, err := newTestBuilder(remote, newMemStore()).BuildRate(rate)
	if err != nil {
		t.Fatalf("BuildRate: %v", err)
	}
	if payload["currency_id"] != currencyID {
		t.Errorf("currency_id = %v", payload["currency_id"])
	}
	if payload["name"] != "2025-06-01" {
		t.Errorf("name = %v", payload["name"])
	}
	if payload["rate"] != 36.5 {
		t.Errorf("rate = %v", payload["rate"])
	}

	rate.CurrencyName = "XXX"
	_, err = newTestBuilder(remote, newMemStore()).BuildRate(rate)
	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected MappingError for unknown currency, got %v", err)
	}
}
