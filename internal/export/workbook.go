// Package export renders expense and milk data as XLSX workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/milk"
	"github.com/mamadbah2/dfarm/internal/service/expenses"
)

// ContentType is the MIME type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	ExpensesSheet    = "Expenses"
	CategoriesSheet  = "By Category"
	MilkRecordsSheet = "Milk Records"
	DailyTotalsSheet = "Daily Totals"

	defaultSheet = "Sheet1"
)

var (
	expenseHeader  = []interface{}{"Date", "Category", "Description", "Amount", "Vendor", "Payment Method", "Receipt No", "Notes"}
	categoryHeader = []interface{}{"Category", "Entries", "Total"}
	milkHeader     = []interface{}{"Animal ID", "Animal", "Tag No", "Date", "Time", "Yield (L)", "Quality"}
	dailyHeader    = []interface{}{"Animal ID", "Animal", "Date", "Morning (L)", "Evening (L)", "Total (L)", "Entries"}
)

// ExpensesWorkbook lists the expenses on one sheet and their per-category
// totals on a second one.
func ExpensesWorkbook(list []models.Expense) (*excelize.File, error) {
	rows := make([][]interface{}, 0, len(list)+1)
	for _, e := range list {
		rows = append(rows, []interface{}{
			e.Date, string(e.Category), e.Description, e.Amount,
			e.Vendor, string(e.PaymentMethod), e.ReceiptNumber, e.Notes,
		})
	}

	summary := expenses.Summarize(list)
	rows = append(rows, []interface{}{"Total", "", "", summary.Total})

	categories := make([][]interface{}, 0, len(summary.ByCategory))
	for _, c := range summary.ByCategory {
		categories = append(categories, []interface{}{string(c.Category), c.Count, c.Total})
	}

	return build([]sheet{
		{name: ExpensesSheet, header: expenseHeader, rows: rows},
		{name: CategoriesSheet, header: categoryHeader, rows: categories},
	})
}

// MilkWorkbook lists every milk record of the given animals and one total row
// per animal and day.
func MilkWorkbook(animals []models.Animal) (*excelize.File, error) {
	var records, totals [][]interface{}
	for _, a := range animals {
		name := a.Name
		if name == "" {
			name = a.Title
		}
		for _, group := range a.MilkRecords {
			for _, rec := range group {
				records = append(records, []interface{}{
					a.ID, name, a.TagNo, rec.Date, string(rec.Time), rec.Yield.Value(), rec.Quality,
				})
			}
		}
		for _, day := range milk.Summaries(a.MilkRecords) {
			totals = append(totals, []interface{}{
				a.ID, name, day.Date, day.Morning, day.Evening, day.Total, day.Entries,
			})
		}
	}

	return build([]sheet{
		{name: MilkRecordsSheet, header: milkHeader, rows: records},
		{name: DailyTotalsSheet, header: dailyHeader, rows: totals},
	})
}

type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

func build(sheets []sheet) (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets {
		if err := writeSheet(f, i == 0, s, bold); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, first bool, s sheet, headerStyle int) error {
	if first {
		if err := f.SetSheetName(defaultSheet, s.name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", s.name, err)
		}
	} else if _, err := f.NewSheet(s.name); err != nil {
		return fmt.Errorf("create sheet %s: %w", s.name, err)
	}

	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return fmt.Errorf("write %s header: %w", s.name, err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return fmt.Errorf("header width of %s: %w", s.name, err)
	}
	if err := f.SetCellStyle(s.name, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", s.name, err)
	}
	if err := f.SetColWidth(s.name, "A", lastCol, 16); err != nil {
		return fmt.Errorf("size %s columns: %w", s.name, err)
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("locate %s row %d: %w", s.name, i+2, err)
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", s.name, i+2, err)
		}
	}
	return nil
}
