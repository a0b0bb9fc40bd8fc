package wordpress

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/acf"
	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/normalizer"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

// ExpenseRepository defines the operations on expense posts.
type ExpenseRepository interface {
	List(ctx context.Context, sess models.Session) ([]models.Expense, error)
	Get(ctx context.Context, sess models.Session, id int) (models.Expense, error)
	Create(ctx context.Context, sess models.Session, expense models.Expense) (models.Expense, error)
	Update(ctx context.Context, sess models.Session, expense models.Expense) (models.Expense, error)
	Delete(ctx context.Context, sess models.Session, id int) error
}

// Expenses implements ExpenseRepository on top of a Gateway.
type Expenses struct {
	gateway    wp.Gateway
	normalizer *normalizer.Normalizer
	logger     *zap.Logger
	pageSize   int
}

// NewExpenses builds an expense repository.
func NewExpenses(gateway wp.Gateway, norm *normalizer.Normalizer, logger *zap.Logger) *Expenses {
	if logger == nil {
		logger = zap.NewNop()
	}
	if norm == nil {
		norm = normalizer.New(logger)
	}
	return &Expenses{gateway: gateway, normalizer: norm, logger: logger, pageSize: 100}
}

// List returns every readable expense visible to the session.
func (r *Expenses) List(ctx context.Context, sess models.Session) ([]models.Expense, error) {
	items, err := r.gateway.List(ctx, sess, wp.ResourceExpenses, wp.ListParams{PerPage: r.pageSize})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	expenses := make([]models.Expense, 0, len(items))
	for i, item := range items {
		res, err := acf.DecodeExpense(item)
		if err != nil {
			r.logger.Debug("skip unreadable expense", zap.Int("index", i), zap.Error(err))
			continue
		}
		expenses = append(expenses, r.normalizer.Expense(res))
	}
	return expenses, nil
}

// Get fetches one expense.
func (r *Expenses) Get(ctx context.Context, sess models.Session, id int) (models.Expense, error) {
	raw, err := r.gateway.Get(ctx, sess, wp.ResourceExpenses, id)
	if err != nil {
		return models.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return r.decode(raw, id)
}

// Create posts a new expense.
func (r *Expenses) Create(ctx context.Context, sess models.Session, expense models.Expense) (models.Expense, error) {
	raw, err := r.gateway.Create(ctx, sess, wp.ResourceExpenses, r.normalizer.ExpensePayload(expense))
	if err != nil {
		return models.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return r.decode(raw, 0)
}

// Update replaces the fields of an expense.
func (r *Expenses) Update(ctx context.Context, sess models.Session, expense models.Expense) (models.Expense, error) {
	raw, err := r.gateway.Update(ctx, sess, wp.ResourceExpenses, expense.ID, r.normalizer.ExpensePayload(expense))
	if err != nil {
		return models.Expense{}, fmt.Errorf("update expense %d: %w", expense.ID, err)
	}
	return r.decode(raw, expense.ID)
}

// Delete removes an expense.
func (r *Expenses) Delete(ctx context.Context, sess models.Session, id int) error {
	if err := r.gateway.Delete(ctx, sess, wp.ResourceExpenses, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

func (r *Expenses) decode(raw []byte, id int) (models.Expense, error) {
	res, err := acf.DecodeExpense(raw)
	if err != nil {
		r.logger.Debug("expense response unreadable", zap.Int("expense_id", id), zap.Error(err))
		return models.Expense{}, fmt.Errorf("expense %d: %w", id, ErrUnreadable)
	}
	return r.normalizer.Expense(res), nil
}
