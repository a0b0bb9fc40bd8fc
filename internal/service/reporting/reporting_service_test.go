package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/repository/mongodb"
	repo "github.com/mamadbah2/dfarm/internal/repository/wordpress"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

type stubAnimals struct {
	repo.AnimalRepository
	animals []models.Animal
	err     error
}

func (s stubAnimals) List(context.Context, models.Session, wp.ListParams) ([]models.Animal, error) {
	return s.animals, s.err
}

type stubExpenses struct {
	repo.ExpenseRepository
	expenses []models.Expense
}

func (s stubExpenses) List(context.Context, models.Session) ([]models.Expense, error) {
	return s.expenses, nil
}

type memoryStore struct {
	saved []models.DailyReport
	err   error
}

func (m *memoryStore) SaveDailyReport(_ context.Context, r models.DailyReport) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *memoryStore) RecentReports(context.Context, int) ([]models.DailyReport, error) {
	if len(m.saved) == 0 {
		return nil, mongodb.ErrNoReports
	}
	return m.saved, nil
}

type memorySheet struct {
	rows []models.DailyReport
}

func (m *memorySheet) AppendDailyReport(_ context.Context, r models.DailyReport) error {
	m.rows = append(m.rows, r)
	return nil
}

var sess = models.Session{Token: "t", UserID: 7}

func record(date, yield string, t models.MilkingTime) models.MilkingRecord {
	return models.MilkingRecord{Date: date, Yield: models.Number(yield), Time: t}
}

func herd() []models.Animal {
	return []models.Animal{
		{ID: 1, Pregnant: true, MilkRecords: []models.MilkGroup{
			{record("08/09/2025", "5", models.MilkingMorning), record("08/09/2025", "4", models.MilkingEvening)},
			{record("07/09/2025", "6", models.MilkingMorning)},
			{record("28/08/2025", "10", models.MilkingMorning)},
		}},
		{ID: 2, Dry: true},
		{ID: 3, MilkRecords: []models.MilkGroup{
			{record("08/09/2025", "3.5", models.MilkingMorning)},
			{record("2025-09-08", "100", models.MilkingMorning)},
			{record("02/09/2025", "oops", models.MilkingMorning)},
		}},
	}
}

func spending() []models.Expense {
	return []models.Expense{
		{ID: 1, Author: 7, Date: "2025-09-08", Amount: 100.10},
		{ID: 2, Author: 7, Date: "2025-09-01", Amount: 200.20},
		{ID: 3, Author: 9, Date: "2025-09-08", Amount: 50},
		{ID: 4, Author: 7, Date: "2025-08-31", Amount: 999},
	}
}

func newTestService(store mongodb.Repository, sheet *memorySheet) *Service {
	svc := NewService(stubAnimals{animals: herd()}, stubExpenses{expenses: spending()}, store, nil, time.UTC, nil)
	if sheet != nil {
		svc.sheet = sheet
	}
	svc.now = func() time.Time { return time.Date(2025, 9, 8, 21, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboard(t *testing.T) {
	svc := newTestService(nil, nil)

	d, err := svc.Dashboard(context.Background(), sess)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if d.TotalAnimals != 3 || d.LactatingAnimals != 2 || d.PregnantAnimals != 1 {
		t.Errorf("counts = %+v", d)
	}
	if d.MilkToday != 12.5 {
		t.Errorf("MilkToday = %v", d.MilkToday)
	}
	if d.MilkThisMonth != 18.5 {
		t.Errorf("MilkThisMonth = %v", d.MilkThisMonth)
	}
	if d.ExpensesThisMonth != 300.3 {
		t.Errorf("ExpensesThisMonth = %v", d.ExpensesThisMonth)
	}
	if len(d.LastSevenDays) != 7 {
		t.Fatalf("LastSevenDays has %d points", len(d.LastSevenDays))
	}
	first, last := d.LastSevenDays[0], d.LastSevenDays[6]
	if first.Date != "2025-09-02" || last.Date != "2025-09-08" || last.Liters != 12.5 || last.Label != "Sep 08" {
		t.Errorf("chart = %+v ... %+v", first, last)
	}
	if d.LastSevenDays[5].Liters != 6 {
		t.Errorf("Sep 07 = %v", d.LastSevenDays[5].Liters)
	}
}

func TestDashboardPropagatesErrors(t *testing.T) {
	boom := &wp.TransportError{Op: "list animals", StatusCode: 401, Message: "expired"}
	svc := NewService(stubAnimals{err: boom}, stubExpenses{}, nil, nil, nil, nil)

	var terr *wp.TransportError
	if _, err := svc.Dashboard(context.Background(), sess); !errors.As(err, &terr) {
		t.Errorf("Dashboard() error = %v", err)
	}
}

func TestDailyReport(t *testing.T) {
	svc := newTestService(nil, nil)

	report, err := svc.DailyReport(context.Background(), sess, time.Date(2025, 9, 8, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyReport() error = %v", err)
	}

	if report.MilkLiters != 12.5 || report.MorningLiters != 8.5 || report.EveningLiters != 4 {
		t.Errorf("liters = %+v", report)
	}
	if report.AnimalsMilked != 2 {
		t.Errorf("AnimalsMilked = %d", report.AnimalsMilked)
	}
	if report.Expenses != 150.1 {
		t.Errorf("Expenses = %v", report.Expenses)
	}
	if !report.Date.Equal(time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", report.Date)
	}
}

func TestDailyReportUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	svc := NewService(stubAnimals{animals: herd()}, stubExpenses{}, nil, nil, loc, nil)

	report, err := svc.DailyReport(context.Background(), sess, time.Date(2025, 9, 7, 20, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if report.MilkLiters != 12.5 {
		t.Errorf("report for the local day Sep 08 = %+v", report)
	}
}

func TestPublishDailyReport(t *testing.T) {
	store := &memoryStore{}
	sheet := &memorySheet{}
	svc := newTestService(store, sheet)

	report, err := svc.PublishDailyReport(context.Background(), sess, svc.now())
	if err != nil {
		t.Fatalf("PublishDailyReport() error = %v", err)
	}
	if len(store.saved) != 1 || len(sheet.rows) != 1 || store.saved[0].MilkLiters != report.MilkLiters {
		t.Errorf("sinks = %+v / %+v", store.saved, sheet.rows)
	}

	recent, err := svc.RecentReports(context.Background(), 5)
	if err != nil || len(recent) != 1 {
		t.Errorf("RecentReports() = %v, %v", recent, err)
	}
}

func TestPublishDailyReportSinkFailure(t *testing.T) {
	failure := errors.New("mongo down")
	sheet := &memorySheet{}
	svc := newTestService(&memoryStore{err: failure}, sheet)

	_, err := svc.PublishDailyReport(context.Background(), sess, svc.now())
	if !errors.Is(err, failure) {
		t.Errorf("PublishDailyReport() error = %v", err)
	}
	if len(sheet.rows) != 1 {
		t.Error("sheet export should still run when the store fails")
	}
}

func TestRecentReports(t *testing.T) {
	svc := newTestService(nil, nil)
	if _, err := svc.RecentReports(context.Background(), 3); !errors.Is(err, ErrSnapshotsDisabled) {
		t.Errorf("RecentReports() error = %v", err)
	}

	svc = newTestService(&memoryStore{}, nil)
	reports, err := svc.RecentReports(context.Background(), 3)
	if err != nil || reports == nil || len(reports) != 0 {
		t.Errorf("RecentReports() = %v, %v", reports, err)
	}
}
