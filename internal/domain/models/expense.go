package models

import "strings"

// ExpenseCategory is the closed set of expense categories.
type ExpenseCategory string

const (
	CategoryFeed        ExpenseCategory = "Feed"
	CategoryMedicine    ExpenseCategory = "Medicine"
	CategoryEquipment   ExpenseCategory = "Equipment"
	CategoryLabor       ExpenseCategory = "Labor"
	CategoryUtilities   ExpenseCategory = "Utilities"
	CategoryMaintenance ExpenseCategory = "Maintenance"
	CategoryTransport   ExpenseCategory = "Transport"
	CategoryOther       ExpenseCategory = "Other"
)

// ExpenseCategories lists the categories in display order.
var ExpenseCategories = []ExpenseCategory{
	CategoryFeed, CategoryMedicine, CategoryEquipment, CategoryLabor,
	CategoryUtilities, CategoryMaintenance, CategoryTransport, CategoryOther,
}

// ParseExpenseCategory matches s case-insensitively against ExpenseCategories.
func ParseExpenseCategory(s string) (ExpenseCategory, bool) {
	trimmed := strings.TrimSpace(s)
	for _, c := range ExpenseCategories {
		if strings.EqualFold(trimmed, string(c)) {
			return c, true
		}
	}
	return "", false
}

// PaymentMethod is the closed set of payment methods.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentCreditCard   PaymentMethod = "Credit Card"
	PaymentCheck        PaymentMethod = "Check"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentBankTransfer, PaymentCreditCard, PaymentCheck}

// ParsePaymentMethod matches s case-insensitively against PaymentMethods.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	trimmed := strings.TrimSpace(s)
	for _, m := range PaymentMethods {
		if strings.EqualFold(trimmed, string(m)) {
			return m, true
		}
	}
	return "", false
}

// Expense is one farm expenditure. Date is YYYY-MM-DD.
type Expense struct {
	ID            int             `json:"id"`
	Date          string          `json:"date"`
	Category      ExpenseCategory `json:"category"`
	Description   string          `json:"description"`
	Amount        float64         `json:"amount"`
	Vendor        string          `json:"vendor"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ReceiptNumber string          `json:"receipt_number"`
	Notes         string          `json:"notes"`
	Author        int             `json:"author"`
	AuthorName    string          `json:"author_name"`
}

// Month returns the YYYY-MM prefix of the expense date.
func (e Expense) Month() string {
	if len(e.Date) < 7 {
		return ""
	}
	return e.Date[:7]
}
