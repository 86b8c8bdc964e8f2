package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Document lifecycle states, owned by the host ERP.
const (
	StateDraft  = "draft"
	StatePosted = "posted"
	StateCancel = "cancel"
)

// Move types. "entry" is a plain journal entry; the rest are invoice/bill
// variants replicated through the invoice path.
const (
	MoveTypeEntry      = "entry"
	MoveTypeOutInvoice = "out_invoice"
	MoveTypeOutRefund  = "out_refund"
	MoveTypeInInvoice  = "in_invoice"
	MoveTypeInRefund   = "in_refund"
)

// Line types: journal items vs invoice product lines.
const (
	LineItem    = "item"
	LineProduct = "product"
)

// AccountMove is a local accounting document (journal entry, invoice or
// bill). Reference fields hold natural keys (names/codes) because primary
// keys differ between the branch and the main database.
type AccountMove struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"index" json:"name"`
	MoveType  string `gorm:"index" json:"move_type"`
	State     string `gorm:"index" json:"state"`
	Date      time.Time `json:"date"`
	Ref       string    `json:"ref"`
	Narration string    `json:"narration"`

	PartnerName string `json:"partner_name"`
	JournalName string `json:"journal_name"`
	BranchName  string `json:"branch_name"` // optional; falls back to CompanyName
	CompanyName string `json:"company_name"`
	CurrencyName string `json:"currency_name"`

	InvoiceDate      *time.Time `json:"invoice_date"`
	InvoiceDateDue   *time.Time `json:"invoice_date_due"`
	InvoiceOrigin    string     `json:"invoice_origin"`
	PaymentReference string     `json:"payment_reference"`
	PaymentState     string     `json:"payment_state"`

	AmountUntaxed  decimal.Decimal `gorm:"type:numeric(16,2)" json:"amount_untaxed"`
	AmountTax      decimal.Decimal `gorm:"type:numeric(16,2)" json:"amount_tax"`
	AmountTotal    decimal.Decimal `gorm:"type:numeric(16,2)" json:"amount_total"`
	AmountResidual decimal.Decimal `gorm:"type:numeric(16,2)" json:"amount_residual"`

	Lines []AccountMoveLine `gorm:"foreignKey:MoveID" json:"lines"`

	SyncState
	// LastPayload keeps the most recent payload sent to the remote store,
	// for operator triage of failed documents.
	LastPayload datatypes.JSON `json:"last_payload"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AccountMove) TableName() string { return "account_move" }

// IsEntry reports whether the move replicates through the journal-entry path.
func (m *AccountMove) IsEntry() bool { return m.MoveType == MoveTypeEntry }

// AccountMoveLine is a child row of an AccountMove. It has no replication
// state of its own: remote lines are fully replaced on update, never merged.
type AccountMoveLine struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	MoveID   uint   `gorm:"index" json:"move_id"`
	LineType string `gorm:"default:item" json:"line_type"`

	AccountCode string `json:"account_code"`
	Label       string `json:"label"`

	Debit          decimal.Decimal `gorm:"type:numeric(16,2)" json:"debit"`
	Credit         decimal.Decimal `gorm:"type:numeric(16,2)" json:"credit"`
	AmountCurrency decimal.Decimal `gorm:"type:numeric(16,2)" json:"amount_currency"`

	PartnerName  string `json:"partner_name"`
	CurrencyName string `json:"currency_name"`

	// Optional classification dimensions, resolved best-effort.
	TaxNames      datatypes.JSON `json:"tax_names"`
	AnalyticNames datatypes.JSON `json:"analytic_names"`

	// Invoice product-line fields, unused on journal items.
	ProductName   string          `json:"product_name"`
	Quantity      decimal.Decimal `gorm:"type:numeric(16,3)" json:"quantity"`
	PriceUnit     decimal.Decimal `gorm:"type:numeric(16,2)" json:"price_unit"`
	PriceSubtotal decimal.Decimal `gorm:"type:numeric(16,2)" json:"price_subtotal"`
}

func (AccountMoveLine) TableName() string { return "account_move_line" }
