package models

// AccountAccount is a local chart-of-accounts entry. SubstituteCode, when
// set, redirects replication of this account's transactions to a different
// account's identity on the remote side.
type AccountAccount struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"uniqueIndex" json:"code"`
	Name string `json:"name"`

	CompanyName    string `json:"company_name"`
	SubstituteCode string `json:"substitute_code"`
}

func (AccountAccount) TableName() string { return "account_account" }

// AccountJournal is a local journal. Journals flagged DontSynchronize have
// all of their documents skipped during replication, without marking them
// failed.
type AccountJournal struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"index" json:"name"`

	CompanyName     string `json:"company_name"`
	DontSynchronize bool   `gorm:"default:false" json:"dont_synchronize"`
}

func (AccountJournal) TableName() string { return "account_journal" }
