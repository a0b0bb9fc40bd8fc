package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/normalizer"
	"github.com/mamadbah2/dfarm/internal/repository/mongodb"
	"github.com/mamadbah2/dfarm/internal/repository/sheets"
	repo "github.com/mamadbah2/dfarm/internal/repository/wordpress"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

const chartDays = 7

// ErrSnapshotsDisabled is returned when no snapshot store is configured.
var ErrSnapshotsDisabled = errors.New("report snapshots are not configured")

// DayPoint is one bar of the milk chart.
type DayPoint struct {
	Date   string  `json:"date"`
	Label  string  `json:"label"`
	Liters float64 `json:"liters"`
}

// Dashboard is the overview shown on the home screen.
type Dashboard struct {
	TotalAnimals      int        `json:"total_animals"`
	LactatingAnimals  int        `json:"lactating_animals"`
	PregnantAnimals   int        `json:"pregnant_animals"`
	MilkToday         float64    `json:"milk_today"`
	MilkThisMonth     float64    `json:"milk_this_month"`
	ExpensesThisMonth float64    `json:"expenses_this_month"`
	LastSevenDays     []DayPoint `json:"last_seven_days"`
}

// Service computes herd statistics and publishes the nightly report.
type Service struct {
	animals  repo.AnimalRepository
	expenses repo.ExpenseRepository
	store    mongodb.Repository
	sheet    sheets.Repository
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a reporting service. store and sheet may be nil.
func NewService(animals repo.AnimalRepository, expenses repo.ExpenseRepository, store mongodb.Repository, sheet sheets.Repository, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		animals:  animals,
		expenses: expenses,
		store:    store,
		sheet:    sheet,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Dashboard computes the overview for the session user. Expenses only count
// the user's own records.
func (s *Service) Dashboard(ctx context.Context, sess models.Session) (Dashboard, error) {
	animals, err := s.animals.List(ctx, sess, wp.ListParams{})
	if err != nil {
		return Dashboard{}, fmt.Errorf("load animals: %w", err)
	}
	expenses, err := s.expenses.List(ctx, sess)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load expenses: %w", err)
	}

	now := s.now().In(s.loc)
	today := civilDay(now)
	month := today.Format("2006-01")

	d := Dashboard{TotalAnimals: len(animals)}
	daily := make(map[string]float64)
	for _, a := range animals {
		if !a.Dry {
			d.LactatingAnimals++
		}
		if a.Pregnant {
			d.PregnantAnimals++
		}
		for _, group := range a.MilkRecords {
			for _, rec := range group {
				day, ok := normalizer.ParsePersistedDate(rec.Date)
				if !ok {
					continue
				}
				liters := rec.Yield.Value()
				daily[day.Format(models.ISODateLayout)] += liters
				if day.Format("2006-01") == month {
					d.MilkThisMonth += liters
				}
			}
		}
	}
	d.MilkToday = daily[today.Format(models.ISODateLayout)]

	spent := decimal.Zero
	for _, e := range expenses {
		if e.Author == sess.UserID && e.Month() == month {
			spent = spent.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	d.ExpensesThisMonth = spent.Round(2).InexactFloat64()

	for i := chartDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(models.ISODateLayout)
		d.LastSevenDays = append(d.LastSevenDays, DayPoint{
			Date:   key,
			Label:  day.Format("Jan 02"),
			Liters: daily[key],
		})
	}
	return d, nil
}

// DailyReport totals the herd's milk and the expenses of one calendar day.
func (s *Service) DailyReport(ctx context.Context, sess models.Session, day time.Time) (models.DailyReport, error) {
	animals, err := s.animals.List(ctx, sess, wp.ListParams{})
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load animals: %w", err)
	}
	expenses, err := s.expenses.List(ctx, sess)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load expenses: %w", err)
	}

	target := civilDay(day.In(s.loc))
	report := models.DailyReport{Date: target, CreatedAt: s.now()}

	for _, a := range animals {
		milked := false
		for _, group := range a.MilkRecords {
			for _, rec := range group {
				recDay, ok := normalizer.ParsePersistedDate(rec.Date)
				if !ok {
					s.logger.Debug("skip milk record with invalid date",
						zap.Int("animal_id", a.ID), zap.String("value", rec.Date))
					continue
				}
				if !recDay.Equal(target) {
					continue
				}
				liters := rec.Yield.Value()
				report.MilkLiters += liters
				switch t, _ := models.ParseMilkingTime(string(rec.Time)); t {
				case models.MilkingMorning:
					report.MorningLiters += liters
				case models.MilkingEvening:
					report.EveningLiters += liters
				}
				milked = true
			}
		}
		if milked {
			report.AnimalsMilked++
		}
	}

	spent := decimal.Zero
	isoDay := target.Format(models.ISODateLayout)
	for _, e := range expenses {
		if e.Date == isoDay {
			spent = spent.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	report.Expenses = spent.Round(2).InexactFloat64()

	return report, nil
}

// PublishDailyReport builds the report of day and hands it to every
// configured sink. A failing sink is logged and does not stop the others.
func (s *Service) PublishDailyReport(ctx context.Context, sess models.Session, day time.Time) (models.DailyReport, error) {
	report, err := s.DailyReport(ctx, sess, day)
	if err != nil {
		return models.DailyReport{}, err
	}

	var errs []error
	if s.store != nil {
		if err := s.store.SaveDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to store daily report", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if s.sheet != nil {
		if err := s.sheet.AppendDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to export daily report", zap.Error(err))
			errs = append(errs, err)
		}
	}

	s.logger.Info("daily report published",
		zap.String("date", report.Date.Format(models.ISODateLayout)),
		zap.Float64("milk_liters", report.MilkLiters),
		zap.Int("animals_milked", report.AnimalsMilked))
	return report, errors.Join(errs...)
}

// RecentReports returns the stored snapshots, most recent first.
func (s *Service) RecentReports(ctx context.Context, limit int) ([]models.DailyReport, error) {
	if s.store == nil {
		return nil, ErrSnapshotsDisabled
	}
	reports, err := s.store.RecentReports(ctx, limit)
	if errors.Is(err, mongodb.ErrNoReports) {
		return []models.DailyReport{}, nil
	}
	return reports, err
}

func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
