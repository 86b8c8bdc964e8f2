package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment directions.
const (
	PaymentOutbound = "outbound"
	PaymentInbound  = "inbound"
)

// AccountPayment is a local payment. An internal transfer is a payment that
// moves funds between two of the branch's own journals; it replicates as a
// single outbound leg tagged with the destination journal (the remote system
// materializes the paired inbound leg itself).
type AccountPayment struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"index" json:"name"`

	PaymentType string `json:"payment_type"` // outbound / inbound
	PartnerType string `json:"partner_type"` // customer / supplier
	State       string `gorm:"index" json:"state"`
	Date        time.Time `json:"date"`
	Memo        string    `json:"memo"`

	Amount decimal.Decimal `gorm:"type:numeric(16,2)" json:"amount"`

	PartnerName            string `json:"partner_name"`
	JournalName            string `json:"journal_name"`
	DestinationJournalName string `json:"destination_journal_name"`
	BranchName             string `json:"branch_name"`
	CompanyName            string `json:"company_name"`
	CurrencyName           string `json:"currency_name"`

	IsInternalTransfer bool `gorm:"index" json:"is_internal_transfer"`

	SyncState
	LastPayload datatypes.JSON `json:"last_payload"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AccountPayment) TableName() string { return "account_payment" }
