package main

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xelth-com/branchsync/internal/config"
	"github.com/xelth-com/branchsync/internal/database"
	"github.com/xelth-com/branchsync/internal/models"
)

// Seeds a branch database with a small set of documents for manual testing
// against a live main deployment.
func main() {
	fmt.Println("🌱 branchsync Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	err = db.AutoMigrate(
		&models.AccountMove{},
		&models.AccountMoveLine{},
		&models.AccountPayment{},
		&models.CurrencyRate{},
		&models.ResPartner{},
		&models.AccountAccount{},
		&models.AccountJournal{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	var count int64
	db.Model(&models.AccountMove{}).Count(&count)
	if count > 0 {
		fmt.Printf("⚠️  Database already has %d moves. Clear it first? (y/N): ", count)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}
		db.Exec("TRUNCATE TABLE account_move_line CASCADE")
		db.Exec("TRUNCATE TABLE account_move CASCADE")
		db.Exec("TRUNCATE TABLE account_payment CASCADE")
		db.Exec("TRUNCATE TABLE res_currency_rate CASCADE")
		db.Exec("TRUNCATE TABLE res_partner CASCADE")
		db.Exec("TRUNCATE TABLE account_account CASCADE")
		db.Exec("TRUNCATE TABLE account_journal CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println("📦 Creating demo data...")

	db.Create(&models.AccountJournal{Name: "Miscellaneous Operations", CompanyName: "Branch A"})
	db.Create(&models.AccountJournal{Name: "Customer Invoices", CompanyName: "Branch A"})
	db.Create(&models.AccountJournal{Name: "Bank", CompanyName: "Branch A"})
	db.Create(&models.AccountJournal{Name: "Cash", CompanyName: "Branch A"})
	db.Create(&models.AccountJournal{Name: "Payroll", CompanyName: "Branch A", DontSynchronize: true})

	db.Create(&models.AccountAccount{Code: "1000", Name: "Cash on Hand", CompanyName: "Branch A"})
	db.Create(&models.AccountAccount{Code: "1200", Name: "Accounts Receivable", CompanyName: "Branch A"})
	db.Create(&models.AccountAccount{Code: "2100", Name: "Accounts Payable", CompanyName: "Branch A"})
	db.Create(&models.AccountAccount{Code: "4000", Name: "Product Sales", CompanyName: "Branch A"})
	// Local-only account whose transactions replicate under 4000's identity
	db.Create(&models.AccountAccount{Code: "4090", Name: "Branch Adjustments", CompanyName: "Branch A", SubstituteCode: "4000"})

	db.Create(&models.ResPartner{
		Name: "Acme GmbH", Email: "billing@acme.example", City: "Berlin",
		CountryName: "Germany", IsCompany: true, CompanyType: "company",
		CustomerRank: 1, ReceivableCode: "1200", PayableCode: "2100",
	})

	today := time.Now().UTC().Truncate(24 * time.Hour)

	entry := models.AccountMove{
		Name: "MISC/0001", MoveType: models.MoveTypeEntry, State: models.StatePosted,
		Date: today, Ref: "demo opening entry",
		JournalName: "Miscellaneous Operations", BranchName: "Branch A",
		Lines: []models.AccountMoveLine{
			{AccountCode: "1000", Label: "opening balance", Debit: decimal.NewFromInt(1000)},
			{AccountCode: "4090", Label: "opening balance", Credit: decimal.NewFromInt(1000)},
		},
	}
	db.Create(&entry)

	invoice := models.AccountMove{
		Name: "INV/0001", MoveType: models.MoveTypeOutInvoice, State: models.StatePosted,
		Date: today, PartnerName: "Acme GmbH",
		JournalName: "Customer Invoices", BranchName: "Branch A", CurrencyName: "USD",
		AmountUntaxed: decimal.NewFromInt(100), AmountTotal: decimal.NewFromInt(100),
		Lines: []models.AccountMoveLine{
			{
				LineType: models.LineProduct, AccountCode: "4000", Label: "widgets",
				Quantity: decimal.NewFromInt(10), PriceUnit: decimal.NewFromInt(10),
				PriceSubtotal: decimal.NewFromInt(100),
			},
			{AccountCode: "1200", Label: "receivable", Debit: decimal.NewFromInt(100)},
		},
	}
	db.Create(&invoice)

	db.Create(&models.AccountPayment{
		Name: "PAY/0001", PaymentType: models.PaymentInbound, PartnerType: "customer",
		State: models.StatePosted, Date: today, Amount: decimal.NewFromInt(100),
		PartnerName: "Acme GmbH", JournalName: "Bank", BranchName: "Branch A",
		CurrencyName: "USD",
	})

	db.Create(&models.AccountPayment{
		Name: "TRF/0001", PaymentType: models.PaymentOutbound,
		State: models.StatePosted, Date: today, Amount: decimal.NewFromInt(500),
		JournalName: "Bank", DestinationJournalName: "Cash",
		BranchName: "Branch A", IsInternalTransfer: true, Memo: "till float",
	})

	db.Create(&models.CurrencyRate{
		Name: today.Format("2006-01-02"), CurrencyName: "USD", CurrencySymbol: "$",
		CompanyName: "Branch A",
		Rate:        decimal.NewFromFloat(36.5), CompanyRate: decimal.NewFromFloat(36.5),
		InverseCompanyRate: decimal.NewFromFloat(0.0274),
	})

	fmt.Println("✅ Demo data created: 2 moves, 2 payments, 1 rate, 1 partner")
	fmt.Println("   Run the service and POST /api/sync/run to replicate.")
}
