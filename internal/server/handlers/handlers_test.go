package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/export"
	repo "github.com/mamadbah2/dfarm/internal/repository/wordpress"
	"github.com/mamadbah2/dfarm/internal/server/middleware"
	"github.com/mamadbah2/dfarm/internal/service/expenses"
	"github.com/mamadbah2/dfarm/internal/service/herd"
	"github.com/mamadbah2/dfarm/internal/service/reporting"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

var testSession = models.Session{Token: "tok", UserID: 7}

type mockHerd struct {
	animals []models.Animal
	err     error
	query   herd.AnimalQuery
	milk    herd.MilkInput
	id      int
}

func (m *mockHerd) List(_ context.Context, _ models.Session, q herd.AnimalQuery) ([]models.Animal, error) {
	m.query = q
	return m.animals, m.err
}

func (m *mockHerd) Latest(_ context.Context, _ models.Session, limit int) ([]models.Animal, error) {
	m.query = herd.AnimalQuery{Limit: limit}
	return m.animals, m.err
}

func (m *mockHerd) Profile(_ context.Context, _ models.Session, id int) (herd.Profile, error) {
	m.id = id
	if m.err != nil {
		return herd.Profile{}, m.err
	}
	return herd.Profile{Animal: models.Animal{ID: id, Name: "Gauri"}}, nil
}

func (m *mockHerd) Create(_ context.Context, _ models.Session, in herd.AnimalInput) (models.Animal, error) {
	return models.Animal{ID: 1, Name: in.Name}, m.err
}

func (m *mockHerd) Update(_ context.Context, _ models.Session, id int, in herd.AnimalInput) (models.Animal, error) {
	m.id = id
	return models.Animal{ID: id, Name: in.Name}, m.err
}

func (m *mockHerd) Delete(_ context.Context, _ models.Session, id int) error {
	m.id = id
	return m.err
}

func (m *mockHerd) AddMilkRecord(_ context.Context, _ models.Session, id int, in herd.MilkInput) (models.Animal, error) {
	m.id, m.milk = id, in
	return models.Animal{ID: id}, m.err
}

func (m *mockHerd) AddVaccination(_ context.Context, _ models.Session, id int, _ herd.VaccinationInput) (models.Animal, error) {
	m.id = id
	return models.Animal{ID: id}, m.err
}

func (m *mockHerd) MilkHistory(_ context.Context, _ models.Session, id int) (herd.MilkHistory, error) {
	m.id = id
	return herd.MilkHistory{AnimalID: id}, m.err
}

type mockExpenses struct {
	list   []models.Expense
	err    error
	filter expenses.Filter
}

func (m *mockExpenses) List(_ context.Context, _ models.Session, f expenses.Filter) ([]models.Expense, error) {
	m.filter = f
	return m.list, m.err
}

func (m *mockExpenses) Create(_ context.Context, _ models.Session, in expenses.Input) (models.Expense, error) {
	return models.Expense{ID: 3, Description: in.Description}, m.err
}

func (m *mockExpenses) Update(_ context.Context, _ models.Session, id int, in expenses.Input) (models.Expense, error) {
	return models.Expense{ID: id, Description: in.Description}, m.err
}

func (m *mockExpenses) Delete(context.Context, models.Session, int) error {
	return m.err
}

func (m *mockExpenses) Summary(_ context.Context, _ models.Session, f expenses.Filter) (expenses.Summary, error) {
	m.filter = f
	return expenses.Summary{Total: 250, Count: 2}, m.err
}

type mockReporting struct {
	err error
	day time.Time
}

func (m *mockReporting) Dashboard(context.Context, models.Session) (reporting.Dashboard, error) {
	return reporting.Dashboard{TotalAnimals: 4, MilkToday: 12.5}, m.err
}

func (m *mockReporting) PublishDailyReport(_ context.Context, _ models.Session, day time.Time) (models.DailyReport, error) {
	m.day = day
	return models.DailyReport{Date: day, MilkLiters: 12.5}, m.err
}

func (m *mockReporting) RecentReports(context.Context, int) ([]models.DailyReport, error) {
	return nil, m.err
}

func setupRouter(h *mockHerd, e *mockExpenses, rep *mockReporting) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.WithSession(c, testSession)
		c.Next()
	})

	ah := NewAnimalHandler(h, nil)
	r.GET("/api/animals", ah.List)
	r.GET("/api/animals/latest", ah.Latest)
	r.GET("/api/animals/:id", ah.Get)
	r.POST("/api/animals", ah.Create)
	r.PUT("/api/animals/:id", ah.Update)
	r.DELETE("/api/animals/:id", ah.Delete)
	r.GET("/api/animals/:id/milk", ah.MilkHistory)
	r.POST("/api/animals/:id/milk", ah.AddMilkRecord)
	r.POST("/api/animals/:id/vaccinations", ah.AddVaccination)
	r.GET("/api/milk/export", ah.ExportMilk)

	eh := NewExpenseHandler(e, nil)
	r.GET("/api/expenses", eh.List)
	r.POST("/api/expenses", eh.Create)
	r.GET("/api/expenses/summary", eh.Summary)
	r.GET("/api/expenses/export", eh.Export)
	r.PUT("/api/expenses/:id", eh.Update)
	r.DELETE("/api/expenses/:id", eh.Delete)

	dh := NewDashboardHandler(rep, nil)
	r.GET("/api/dashboard", dh.Dashboard)
	r.GET("/api/reports", dh.RecentReports)
	r.POST("/api/reports/daily", dh.PublishDailyReport)
	return r
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnimalRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		err      error
		expected int
	}{
		{name: "list", method: http.MethodGet, path: "/api/animals?filter=Pregnant&limit=3", expected: http.StatusOK},
		{name: "list bad limit", method: http.MethodGet, path: "/api/animals?limit=x", expected: http.StatusBadRequest},
		{name: "latest", method: http.MethodGet, path: "/api/animals/latest", expected: http.StatusOK},
		{name: "profile", method: http.MethodGet, path: "/api/animals/12", expected: http.StatusOK},
		{name: "profile bad id", method: http.MethodGet, path: "/api/animals/abc", expected: http.StatusBadRequest},
		{name: "profile zero id", method: http.MethodGet, path: "/api/animals/0", expected: http.StatusBadRequest},
		{name: "profile not found", method: http.MethodGet, path: "/api/animals/12",
			err:      &wp.TransportError{Op: "get animals/12", StatusCode: http.StatusNotFound, Message: "Invalid post ID."},
			expected: http.StatusNotFound},
		{name: "gateway failure", method: http.MethodGet, path: "/api/animals",
			err:      &wp.TransportError{Op: "list animals", StatusCode: http.StatusInternalServerError, Message: "boom"},
			expected: http.StatusBadGateway},
		{name: "unreadable", method: http.MethodGet, path: "/api/animals/12",
			err: fmt.Errorf("get animal 12: %w", repo.ErrUnreadable), expected: http.StatusBadGateway},
		{name: "create", method: http.MethodPost, path: "/api/animals", body: `{"name":"Gauri","animal_type":"Cow"}`, expected: http.StatusCreated},
		{name: "create malformed", method: http.MethodPost, path: "/api/animals", body: `{"name":`, expected: http.StatusBadRequest},
		{name: "create invalid", method: http.MethodPost, path: "/api/animals", body: `{"name":""}`,
			err: fmt.Errorf("%w: name is required", herd.ErrInvalidRecord), expected: http.StatusBadRequest},
		{name: "update", method: http.MethodPut, path: "/api/animals/4", body: `{"name":"Gauri"}`, expected: http.StatusOK},
		{name: "delete", method: http.MethodDelete, path: "/api/animals/4", expected: http.StatusNoContent},
		{name: "milk history", method: http.MethodGet, path: "/api/animals/4/milk", expected: http.StatusOK},
		{name: "add milk", method: http.MethodPost, path: "/api/animals/4/milk",
			body: `{"date":"2024-05-01","yield":"8.5","time":"Morning"}`, expected: http.StatusCreated},
		{name: "add vaccination", method: http.MethodPost, path: "/api/animals/4/vaccinations",
			body: `{"date":"2024-05-01","vaccine":"FMD"}`, expected: http.StatusCreated},
		{name: "unexpected error", method: http.MethodDelete, path: "/api/animals/4", err: errors.New("boom"),
			expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&mockHerd{err: tt.err}, &mockExpenses{}, &mockReporting{})
			w := perform(r, tt.method, tt.path, tt.body)
			if w.Code != tt.expected {
				t.Fatalf("expected status %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestAnimalListPassesQuery(t *testing.T) {
	h := &mockHerd{animals: []models.Animal{{ID: 1, Name: "Gauri"}}}
	r := setupRouter(h, &mockExpenses{}, &mockReporting{})

	w := perform(r, http.MethodGet, "/api/animals?filter=HighMilk&query=gau&limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := herd.AnimalQuery{Filter: "HighMilk", Query: "gau", Limit: 2}
	if h.query != want {
		t.Fatalf("expected query %+v, got %+v", want, h.query)
	}

	var got []models.Animal
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Gauri" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAddMilkRecordBindsInput(t *testing.T) {
	h := &mockHerd{}
	r := setupRouter(h, &mockExpenses{}, &mockReporting{})

	w := perform(r, http.MethodPost, "/api/animals/9/milk", `{"date":"2024-05-01","yield":8.5,"time":"Evening"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if h.id != 9 || h.milk.Time != "Evening" || h.milk.Date != "2024-05-01" {
		t.Fatalf("unexpected input id=%d milk=%+v", h.id, h.milk)
	}
}

func TestErrorBody(t *testing.T) {
	h := &mockHerd{err: &wp.TransportError{StatusCode: http.StatusForbidden, Message: "Sorry, you are not allowed to edit this post."}}
	r := setupRouter(h, &mockExpenses{}, &mockReporting{})

	w := perform(r, http.MethodDelete, "/api/animals/4", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "Sorry, you are not allowed to edit this post." {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestExpenseRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		err      error
		expected int
	}{
		{name: "list", method: http.MethodGet, path: "/api/expenses?category=Feed&month=2024-05", expected: http.StatusOK},
		{name: "list bad month", method: http.MethodGet, path: "/api/expenses?month=May",
			err: fmt.Errorf("%w: month must be YYYY-MM", expenses.ErrInvalidRecord), expected: http.StatusBadRequest},
		{name: "summary", method: http.MethodGet, path: "/api/expenses/summary", expected: http.StatusOK},
		{name: "create", method: http.MethodPost, path: "/api/expenses",
			body: `{"date":"2024-05-01","category":"Feed","description":"Hay","amount":150}`, expected: http.StatusCreated},
		{name: "create malformed", method: http.MethodPost, path: "/api/expenses", body: `[`, expected: http.StatusBadRequest},
		{name: "update", method: http.MethodPut, path: "/api/expenses/3",
			body: `{"date":"2024-05-01","category":"Feed","description":"Hay","amount":150}`, expected: http.StatusOK},
		{name: "update not owner", method: http.MethodPut, path: "/api/expenses/3",
			body: `{"date":"2024-05-01","category":"Feed","description":"Hay","amount":150}`,
			err:  expenses.ErrNotOwner, expected: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, path: "/api/expenses/3", expected: http.StatusNoContent},
		{name: "delete bad id", method: http.MethodDelete, path: "/api/expenses/-1", expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&mockHerd{}, &mockExpenses{err: tt.err}, &mockReporting{})
			w := perform(r, tt.method, tt.path, tt.body)
			if w.Code != tt.expected {
				t.Fatalf("expected status %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestExpenseExport(t *testing.T) {
	e := &mockExpenses{list: []models.Expense{
		{ID: 1, Date: "2024-05-01", Category: models.CategoryFeed, Description: "Hay", Amount: 150},
	}}
	r := setupRouter(&mockHerd{}, e, &mockReporting{})

	w := perform(r, http.MethodGet, "/api/expenses/export?month=2024-05", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != export.ContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="expenses-2024-05.xlsx"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if e.filter.Month != "2024-05" {
		t.Fatalf("expected month filter to pass through, got %+v", e.filter)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Expenses")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) < 2 || rows[1][0] != "2024-05-01" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestMilkExport(t *testing.T) {
	r := setupRouter(&mockHerd{animals: []models.Animal{{ID: 1, Name: "Gauri"}}}, &mockExpenses{}, &mockReporting{})

	w := perform(r, http.MethodGet, "/api/milk/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Fatalf("open workbook: %v", err)
	}
}

func TestDashboardRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		err      error
		expected int
	}{
		{name: "dashboard", method: http.MethodGet, path: "/api/dashboard", expected: http.StatusOK},
		{name: "reports", method: http.MethodGet, path: "/api/reports?limit=3", expected: http.StatusOK},
		{name: "reports disabled", method: http.MethodGet, path: "/api/reports",
			err: reporting.ErrSnapshotsDisabled, expected: http.StatusServiceUnavailable},
		{name: "publish today", method: http.MethodPost, path: "/api/reports/daily", expected: http.StatusCreated},
		{name: "publish date", method: http.MethodPost, path: "/api/reports/daily?date=2024-05-01", expected: http.StatusCreated},
		{name: "publish bad date", method: http.MethodPost, path: "/api/reports/daily?date=01/05/2024", expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&mockHerd{}, &mockExpenses{}, &mockReporting{err: tt.err})
			w := perform(r, tt.method, tt.path, "")
			if w.Code != tt.expected {
				t.Fatalf("expected status %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestMissingSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/dashboard", NewDashboardHandler(&mockReporting{}, nil).Dashboard)

	w := perform(r, http.MethodGet, "/api/dashboard", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
