package replication

import "github.com/xelth-com/branchsync/internal/services/odoo"

// Remote is the RPC surface of the target (Main) deployment. The production
// implementation is odoo.Client; tests substitute an in-memory fake.
type Remote interface {
	Authenticate() (int, error)
	SearchRead(model string, domain odoo.Domain, fields []string, limit int) ([]map[string]interface{}, error)
	Search(model string, domain odoo.Domain, limit int) ([]int64, error)
	Create(model string, values map[string]interface{}) (int64, error)
	Write(model string, ids []int64, values map[string]interface{}) error
	Unlink(model string, ids []int64) error
	Execute(model, method string, ids []int64) error
}

// Remote model names. Journal entries go straight into the remote ledger;
// invoices, payments and transfers land in staging models the main
// deployment reviews before materializing real documents.
const (
	modelMove            = "account.move"
	modelMoveLine        = "account.move.line"
	modelInvoiceStaging  = "account.move.custom"
	modelInvoiceLine     = "account.move.custom.line"
	modelPaymentStaging  = "account.payment.custom"
	modelTransferStaging = "bank.statement.line.custom"
	modelRate            = "res.currency.rate"
	modelPartner         = "res.partner"
	modelCompany         = "res.company"
	modelJournal         = "account.journal"
	modelAccount         = "account.account"
	modelTax             = "account.tax"
	modelAnalytic        = "account.analytic.account"
	modelCurrency        = "res.currency"
	modelCountry         = "res.country"
	modelProduct         = "product.product"
)
