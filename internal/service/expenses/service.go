package expenses

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	repo "github.com/mamadbah2/dfarm/internal/repository/wordpress"
)

const monthLayout = "2006-01"

var (
	// ErrInvalidRecord marks input rejected before anything is written.
	ErrInvalidRecord = errors.New("invalid expense")
	// ErrNotOwner is returned when the session user does not own the expense.
	ErrNotOwner = errors.New("expense belongs to another user")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, msg)
}

// Filter narrows an expense listing. An empty or "all" category and an empty
// month match everything.
type Filter struct {
	Category string
	Month    string
}

// Validate checks the month format.
func (f Filter) Validate() error {
	if f.Month == "" {
		return nil
	}
	if _, err := time.Parse(monthLayout, f.Month); err != nil {
		return invalid("month must be YYYY-MM")
	}
	return nil
}

func (f Filter) matches(e models.Expense) bool {
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, "all") &&
		!strings.EqualFold(c, string(e.Category)) {
		return false
	}
	return f.Month == "" || e.Month() == f.Month
}

// Input is the body of an expense create or update.
type Input struct {
	Date          string  `json:"date"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Vendor        string  `json:"vendor"`
	PaymentMethod string  `json:"payment_method"`
	ReceiptNumber string  `json:"receipt_number"`
	Notes         string  `json:"notes"`
}

// Validate checks the required fields.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return invalid("description is required")
	}
	if in.Amount <= 0 {
		return invalid("amount must be positive")
	}
	if in.Date == "" {
		return invalid("date is required")
	}
	if _, err := time.Parse(models.ISODateLayout, in.Date); err != nil {
		return invalid("date must be YYYY-MM-DD")
	}
	return nil
}

// expense maps the input onto the closed enums. Unknown categories become
// Other and unknown payment methods are left unset.
func (in Input) expense() models.Expense {
	category, ok := models.ParseExpenseCategory(in.Category)
	if !ok {
		category = models.CategoryOther
	}
	method, _ := models.ParsePaymentMethod(in.PaymentMethod)

	return models.Expense{
		Date:          in.Date,
		Category:      category,
		Description:   strings.TrimSpace(in.Description),
		Amount:        in.Amount,
		Vendor:        strings.TrimSpace(in.Vendor),
		PaymentMethod: method,
		ReceiptNumber: strings.TrimSpace(in.ReceiptNumber),
		Notes:         in.Notes,
	}
}

// CategoryTotal is the spend of one category.
type CategoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Total    float64                `json:"total"`
	Count    int                    `json:"count"`
}

// Summary aggregates a filtered expense listing.
type Summary struct {
	Total      float64         `json:"total"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// Service manages the expenses of the session user.
type Service struct {
	repo   repo.ExpenseRepository
	logger *zap.Logger
}

// NewService wires an expense service.
func NewService(expenses repo.ExpenseRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: expenses, logger: logger}
}

// List returns the session user's expenses matching f, newest first.
func (s *Service) List(ctx context.Context, sess models.Session, f Filter) ([]models.Expense, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	all, err := s.repo.List(ctx, sess)
	if err != nil {
		return nil, err
	}

	out := make([]models.Expense, 0, len(all))
	for _, e := range all {
		if e.Author != sess.UserID {
			continue
		}
		if !f.matches(e) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// Create records a new expense for the session user.
func (s *Service) Create(ctx context.Context, sess models.Session, in Input) (models.Expense, error) {
	if err := in.Validate(); err != nil {
		return models.Expense{}, err
	}

	created, err := s.repo.Create(ctx, sess, in.expense())
	if err != nil {
		return models.Expense{}, err
	}
	s.logger.Info("expense created",
		zap.Int("expense_id", created.ID),
		zap.Int("user_id", sess.UserID),
		zap.String("category", string(created.Category)),
		zap.Float64("amount", created.Amount))
	return created, nil
}

// Update replaces an expense owned by the session user.
func (s *Service) Update(ctx context.Context, sess models.Session, id int, in Input) (models.Expense, error) {
	if err := in.Validate(); err != nil {
		return models.Expense{}, err
	}
	if err := s.checkOwner(ctx, sess, id); err != nil {
		return models.Expense{}, err
	}

	e := in.expense()
	e.ID = id
	return s.repo.Update(ctx, sess, e)
}

// Delete removes an expense owned by the session user.
func (s *Service) Delete(ctx context.Context, sess models.Session, id int) error {
	if err := s.checkOwner(ctx, sess, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sess, id); err != nil {
		return err
	}
	s.logger.Info("expense deleted", zap.Int("expense_id", id), zap.Int("user_id", sess.UserID))
	return nil
}

func (s *Service) checkOwner(ctx context.Context, sess models.Session, id int) error {
	existing, err := s.repo.Get(ctx, sess, id)
	if err != nil {
		return err
	}
	if existing.Author != sess.UserID {
		return fmt.Errorf("expense %d: %w", id, ErrNotOwner)
	}
	return nil
}

// Summary totals the session user's expenses matching f. Categories are
// ordered by spend, largest first.
func (s *Service) Summary(ctx context.Context, sess models.Session, f Filter) (Summary, error) {
	list, err := s.List(ctx, sess, f)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(list), nil
}

// Summarize totals expenses with decimal arithmetic.
func Summarize(list []models.Expense) Summary {
	total := decimal.Zero
	byCategory := make(map[models.ExpenseCategory]decimal.Decimal)
	counts := make(map[models.ExpenseCategory]int)

	for _, e := range list {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)
		byCategory[e.Category] = byCategory[e.Category].Add(amount)
		counts[e.Category]++
	}

	summary := Summary{Total: total.Round(2).InexactFloat64(), Count: len(list)}
	for _, category := range models.ExpenseCategories {
		if counts[category] == 0 {
			continue
		}
		summary.ByCategory = append(summary.ByCategory, CategoryTotal{
			Category: category,
			Total:    byCategory[category].Round(2).InexactFloat64(),
			Count:    counts[category],
		})
	}
	sort.SliceStable(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].Total > summary.ByCategory[j].Total
	})
	return summary
}
