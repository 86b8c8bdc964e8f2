package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyRate is a local exchange-rate quotation. Name carries the rate
// date in ISO form, matching the remote store's natural key for rates.
type CurrencyRate struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"index" json:"name"`

	CurrencyName   string `json:"currency_name"`
	CurrencySymbol string `gorm:"index" json:"currency_symbol"`
	CompanyName    string `json:"company_name"`

	Rate               decimal.Decimal `gorm:"type:numeric(18,8)" json:"rate"`
	CompanyRate        decimal.Decimal `gorm:"type:numeric(18,8)" json:"company_rate"`
	InverseCompanyRate decimal.Decimal `gorm:"type:numeric(18,8)" json:"inverse_company_rate"`

	SyncState

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CurrencyRate) TableName() string { return "res_currency_rate" }
