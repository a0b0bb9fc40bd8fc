// Package milk keeps an animal's milk records partitioned into one group per
// date.
//
// Dates are compared as literal strings. Callers are expected to pass records
// whose dates went through the persisted DD/MM/YYYY formatter first; two
// spellings of the same calendar day end up in two groups.
package milk

import (
	"github.com/mamadbah2/dfarm/internal/domain/models"
)

// GroupByDate flattens groups and re-partitions the records by date. Dates keep
// the order in which they were first seen and records keep their relative
// order within a date. The input is never modified.
func GroupByDate(groups []models.MilkGroup) []models.MilkGroup {
	out := make([]models.MilkGroup, 0, len(groups))
	index := make(map[string]int, len(groups))

	for _, group := range groups {
		for _, rec := range group {
			i, ok := index[rec.Date]
			if !ok {
				i = len(out)
				index[rec.Date] = i
				out = append(out, models.MilkGroup{})
			}
			out[i] = append(out[i], rec)
		}
	}

	return out
}

// AddRecord regroups existing and appends rec to the group of its date, or to
// a new trailing group when the date is not present yet.
func AddRecord(existing []models.MilkGroup, rec models.MilkingRecord) []models.MilkGroup {
	grouped := GroupByDate(existing)

	for i, group := range grouped {
		if group.Date() == rec.Date {
			grouped[i] = append(group, rec)
			return grouped
		}
	}

	return append(grouped, models.MilkGroup{rec})
}

// DailyTotal sums the yields of one group. Yields that are not numeric count
// as zero.
func DailyTotal(group models.MilkGroup) float64 {
	var total float64
	for _, rec := range group {
		total += rec.Yield.Value()
	}
	return total
}

// DaySummary condenses one date group.
type DaySummary struct {
	Date    string  `json:"date"`
	Total   float64 `json:"total"`
	Morning float64 `json:"morning"`
	Evening float64 `json:"evening"`
	Entries int     `json:"entries"`
}

// Summaries returns one DaySummary per group, in group order.
func Summaries(groups []models.MilkGroup) []DaySummary {
	out := make([]DaySummary, 0, len(groups))
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		summary := DaySummary{Date: group.Date(), Total: DailyTotal(group), Entries: len(group)}
		for _, rec := range group {
			switch t, _ := models.ParseMilkingTime(string(rec.Time)); t {
			case models.MilkingMorning:
				summary.Morning += rec.Yield.Value()
			case models.MilkingEvening:
				summary.Evening += rec.Yield.Value()
			}
		}
		out = append(out, summary)
	}
	return out
}
