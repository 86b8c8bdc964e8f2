package models

import "time"

// ResPartner is a local customer/supplier contact. ReceivableCode and
// PayableCode are the codes of the partner's control accounts; a partner
// cannot be created remotely without both resolving.
type ResPartner struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"index" json:"name"`

	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Mobile  string `json:"mobile"`
	Street  string `json:"street"`
	Street2 string `json:"street2"`
	City    string `json:"city"`
	Zip     string `json:"zip"`

	CountryName string `json:"country_name"`
	Vat         string `json:"vat"`

	IsCompany    bool   `json:"is_company"`
	CompanyType  string `json:"company_type"` // 'person' or 'company'
	CustomerRank int    `json:"customer_rank"`
	SupplierRank int    `json:"supplier_rank"`

	ReceivableCode string `json:"receivable_code"`
	PayableCode    string `json:"payable_code"`

	SentToRemote bool   `gorm:"index;default:false" json:"sent_to_remote"`
	SyncNote     string `json:"sync_note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ResPartner) TableName() string { return "res_partner" }
