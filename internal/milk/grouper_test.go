package milk

import (
	"reflect"
	"testing"

	"github.com/mamadbah2/dfarm/internal/domain/models"
)

func rec(date, yield string, t models.MilkingTime) models.MilkingRecord {
	return models.MilkingRecord{Date: date, Yield: models.Number(yield), Time: t}
}

func TestGroupByDate(t *testing.T) {
	tests := []struct {
		name     string
		input    []models.MilkGroup
		expected []models.MilkGroup
	}{
		{
			name:     "empty input",
			input:    nil,
			expected: []models.MilkGroup{},
		},
		{
			name: "split mixed group keeps first-seen order",
			input: []models.MilkGroup{{
				rec("02/09/2025", "4", models.MilkingMorning),
				rec("01/09/2025", "5", models.MilkingMorning),
				rec("02/09/2025", "3", models.MilkingEvening),
			}},
			expected: []models.MilkGroup{
				{rec("02/09/2025", "4", models.MilkingMorning), rec("02/09/2025", "3", models.MilkingEvening)},
				{rec("01/09/2025", "5", models.MilkingMorning)},
			},
		},
		{
			name: "merge duplicate groups across the list",
			input: []models.MilkGroup{
				{rec("01/09/2025", "5", models.MilkingMorning)},
				{rec("03/09/2025", "6", models.MilkingMorning)},
				{rec("01/09/2025", "2", models.MilkingEvening)},
			},
			expected: []models.MilkGroup{
				{rec("01/09/2025", "5", models.MilkingMorning), rec("01/09/2025", "2", models.MilkingEvening)},
				{rec("03/09/2025", "6", models.MilkingMorning)},
			},
		},
		{
			name: "different spellings of the same day stay apart",
			input: []models.MilkGroup{
				{rec("01/09/2025", "5", models.MilkingMorning)},
				{rec("2025-09-01", "2", models.MilkingEvening)},
			},
			expected: []models.MilkGroup{
				{rec("01/09/2025", "5", models.MilkingMorning)},
				{rec("2025-09-01", "2", models.MilkingEvening)},
			},
		},
		{
			name:     "empty inner groups vanish",
			input:    []models.MilkGroup{{}, {rec("01/09/2025", "5", models.MilkingMorning)}, {}},
			expected: []models.MilkGroup{{rec("01/09/2025", "5", models.MilkingMorning)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupByDate(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("GroupByDate() = %v, expected %v", got, tt.expected)
			}
			again := GroupByDate(got)
			if !reflect.DeepEqual(again, got) {
				t.Errorf("GroupByDate is not idempotent: %v != %v", again, got)
			}
		})
	}
}

func TestGroupByDateDoesNotModifyInput(t *testing.T) {
	input := []models.MilkGroup{
		{rec("01/09/2025", "5", models.MilkingMorning), rec("02/09/2025", "4", models.MilkingMorning)},
	}
	GroupByDate(input)
	if len(input) != 1 || len(input[0]) != 2 {
		t.Fatalf("input was modified: %v", input)
	}
}

func TestAddRecordExistingDate(t *testing.T) {
	existing := []models.MilkGroup{{rec("01/09/2025", "5", models.MilkingMorning)}}

	got := AddRecord(existing, rec("01/09/2025", "3", models.MilkingEvening))

	expected := []models.MilkGroup{{
		rec("01/09/2025", "5", models.MilkingMorning),
		rec("01/09/2025", "3", models.MilkingEvening),
	}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("AddRecord() = %v, expected %v", got, expected)
	}
	if len(existing[0]) != 1 {
		t.Errorf("existing groups were modified: %v", existing)
	}
}

func TestAddRecordEmpty(t *testing.T) {
	got := AddRecord(nil, rec("02/09/2025", "4", models.MilkingMorning))

	expected := []models.MilkGroup{{rec("02/09/2025", "4", models.MilkingMorning)}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("AddRecord() = %v, expected %v", got, expected)
	}
}

func TestAddRecordGroupCounts(t *testing.T) {
	existing := []models.MilkGroup{
		{rec("01/09/2025", "5", models.MilkingMorning), rec("01/09/2025", "6", models.MilkingEvening)},
		{rec("02/09/2025", "4", models.MilkingMorning)},
		{rec("03/09/2025", "7", models.MilkingMorning)},
	}
	n := len(existing)

	t.Run("new date adds exactly one trailing group", func(t *testing.T) {
		got := AddRecord(existing, rec("04/09/2025", "2", models.MilkingMorning))
		if len(got) != n+1 {
			t.Fatalf("expected %d groups, got %d", n+1, len(got))
		}
		if got[n].Date() != "04/09/2025" || len(got[n]) != 1 {
			t.Errorf("unexpected trailing group %v", got[n])
		}
		for i := 0; i < n; i++ {
			if !reflect.DeepEqual(got[i], existing[i]) {
				t.Errorf("group %d changed: %v != %v", i, got[i], existing[i])
			}
		}
	})

	t.Run("existing date grows one group by one", func(t *testing.T) {
		got := AddRecord(existing, rec("02/09/2025", "1", models.MilkingEvening))
		if len(got) != n {
			t.Fatalf("expected %d groups, got %d", n, len(got))
		}
		for i := range got {
			want := len(existing[i])
			if i == 1 {
				want++
			}
			if len(got[i]) != want {
				t.Errorf("group %d has %d records, expected %d", i, len(got[i]), want)
			}
		}
	})
}

func TestDailyTotal(t *testing.T) {
	tests := []struct {
		name           string
		group          models.MilkGroup
		expectedResult float64
		description    string
	}{
		{
			name:           "numeric yields",
			group:          models.MilkGroup{rec("01/09/2025", "5", models.MilkingMorning), rec("01/09/2025", "3.5", models.MilkingEvening)},
			expectedResult: 8.5,
			description:    "string-encoded liters are summed",
		},
		{
			name:           "non-numeric yield counts as zero",
			group:          models.MilkGroup{rec("01/09/2025", "5", models.MilkingMorning), rec("01/09/2025", "abc", models.MilkingEvening)},
			expectedResult: 5,
			description:    "garbage never turns the total into NaN",
		},
		{
			name:           "empty yield counts as zero",
			group:          models.MilkGroup{rec("01/09/2025", "", models.MilkingMorning)},
			expectedResult: 0,
			description:    "absent yield is zero",
		},
		{
			name:           "NaN text counts as zero",
			group:          models.MilkGroup{rec("01/09/2025", "NaN", models.MilkingMorning), rec("01/09/2025", "2", models.MilkingEvening)},
			expectedResult: 2,
			description:    "ParseFloat accepts NaN but the total must stay finite",
		},
		{
			name:           "empty group",
			group:          nil,
			expectedResult: 0,
			description:    "no records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DailyTotal(tt.group)
			if result != tt.expectedResult {
				t.Errorf("DailyTotal() = %f, expected %f. %s", result, tt.expectedResult, tt.description)
			}
		})
	}
}

func TestSummaries(t *testing.T) {
	groups := []models.MilkGroup{
		{rec("01/09/2025", "5", models.MilkingMorning), rec("01/09/2025", "3", "evening")},
		{},
		{rec("02/09/2025", "4", models.MilkingMorning)},
	}

	got := Summaries(groups)

	expected := []DaySummary{
		{Date: "01/09/2025", Total: 8, Morning: 5, Evening: 3, Entries: 2},
		{Date: "02/09/2025", Total: 4, Morning: 4, Entries: 1},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Summaries() = %+v, expected %+v", got, expected)
	}
}
