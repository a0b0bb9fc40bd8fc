package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/dfarm/internal/domain/models"
)

func TestReportRow(t *testing.T) {
	report := models.DailyReport{
		Date:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		MilkLiters:    12.5,
		MorningLiters: 8.5,
		EveningLiters: 4,
		AnimalsMilked: 2,
		Expenses:      150.1,
		CreatedAt:     time.Date(2024, 5, 1, 21, 0, 5, 0, time.UTC),
	}

	row := ReportRow(report)
	if len(row) != 7 {
		t.Fatalf("expected 7 columns, got %d", len(row))
	}
	if row[0] != "2024-05-01" || row[1] != 12.5 || row[4] != 2 || row[6] != "2024-05-01 21:00:05" {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestAppendDailyReport(t *testing.T) {
	var gotPath string
	var gotBody sheetsapi.ValueRange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc, err := sheetsapi.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	repo := &GoogleSheetRepository{service: svc, spreadsheetID: "sheet-1", logger: zap.NewNop()}

	report := models.DailyReport{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), MilkLiters: 12.5}
	if err := repo.AppendDailyReport(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-1/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(gotBody.Values) != 1 || gotBody.Values[0][0] != "2024-05-01" {
		t.Fatalf("unexpected values %v", gotBody.Values)
	}
}
