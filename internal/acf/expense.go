package acf

import "github.com/mamadbah2/dfarm/internal/domain/models"

// ExpenseResource is an expense post as returned by the content API.
type ExpenseResource struct {
	ID         int                `json:"id"`
	Date       string             `json:"date"`
	Modified   string             `json:"modified"`
	Author     FlexInt            `json:"author"`
	AuthorName FlexString         `json:"author_name"`
	Status     string             `json:"status"`
	Title      Rendered           `json:"title"`
	ACF        Bag[ExpenseFields] `json:"acf"`
}

// ExpenseFields is the custom-field bag of an expense post.
type ExpenseFields struct {
	Date          FlexString    `json:"date"`
	Category      FlexString    `json:"category"`
	Description   FlexString    `json:"description"`
	Amount        models.Number `json:"amount"`
	Vendor        FlexString    `json:"vendor"`
	PaymentMethod FlexString    `json:"payment_method"`
	ReceiptNumber FlexString    `json:"receipt_number"`
	Notes         FlexString    `json:"notes"`
}

// DecodeExpense decodes one expense payload.
func DecodeExpense(data []byte) (ExpenseResource, error) {
	var res ExpenseResource
	if err := decodeObject(data, &res); err != nil {
		return ExpenseResource{}, err
	}
	return res, nil
}

// ExpenseWrite is the create/update payload for an expense post.
type ExpenseWrite struct {
	Status string             `json:"status"`
	Title  string             `json:"title"`
	Meta   WriteMeta          `json:"meta"`
	ACF    ExpenseFieldsWrite `json:"acf"`
}

// ExpenseFieldsWrite carries the expense custom fields. Date is YYYY-MM-DD.
type ExpenseFieldsWrite struct {
	Date          string  `json:"date"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Vendor        string  `json:"vendor"`
	PaymentMethod string  `json:"payment_method"`
	ReceiptNumber string  `json:"receipt_number"`
	Notes         string  `json:"notes"`
}
