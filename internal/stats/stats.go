// Package stats computes adherence figures over day records.
package stats

import (
	"math"
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"github.com/and161185/supp-tracker/internal/model"
)

// History summarizes every stored day.
type History struct {
	Days           []model.DayData `json:"days"` // newest first
	ByDay          []DayCompletion `json:"byDay"` // same order as Days
	DayCount       int             `json:"dayCount"`
	Total          int             `json:"totalSupplements"`
	Completed      int             `json:"totalCompleted"`
	CompletionRate int             `json:"completionRate"` // percent
	AveragePerDay  int             `json:"averagePerDay"`
}

// CategoryCount is the progress of one intake slot within a day.
type CategoryCount struct {
	Category  model.TimeCategory `json:"category"`
	Planned   int                `json:"planned"`
	Completed int                `json:"completed"`
}

// Done reports whether every planned entry of the slot is completed.
func (c CategoryCount) Done() bool { return c.Planned > 0 && c.Completed == c.Planned }

// DayCompletion is one column of the weekly view.
type DayCompletion struct {
	Date       civil.Date      `json:"date"`
	Planned    int             `json:"planned"`
	Completed  int             `json:"completed"`
	Percent    int             `json:"percent"`
	ByCategory []CategoryCount `json:"byCategory"` // display order, empty slots omitted
}

// Week summarizes a Sunday-start week.
type Week struct {
	Start        civil.Date      `json:"start"`
	End          civil.Date      `json:"end"`
	Days         []DayCompletion `json:"days"`
	TotalPlanned int             `json:"totalPlanned"`
	Completed    int             `json:"completed"`
	AvgDaily     int             `json:"avgDaily"` // percent over days with at least one entry
	PerfectDays  int             `json:"perfectDays"`
}

// round matches half-up rounding of non-negative display values.
func round(x float64) int { return int(math.Floor(x + 0.5)) }

// Percent returns round(part/whole*100), 0 when whole is 0.
func Percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return round(float64(part) / float64(whole) * 100)
}

// ByCategory counts supps per slot in display order; slots without entries are omitted.
func ByCategory(supps []model.Supplement) []CategoryCount {
	out := []CategoryCount{}
	for _, cat := range model.TimeCategories {
		c := CategoryCount{Category: cat}
		for _, s := range supps {
			if s.TimeCategory != cat {
				continue
			}
			c.Planned++
			if s.Completed {
				c.Completed++
			}
		}
		if c.Planned > 0 {
			out = append(out, c)
		}
	}
	return out
}

// dayCompletion summarizes one day.
func dayCompletion(date civil.Date, supps []model.Supplement) DayCompletion {
	dc := DayCompletion{Date: date, Planned: len(supps), ByCategory: ByCategory(supps)}
	for _, s := range supps {
		if s.Completed {
			dc.Completed++
		}
	}
	dc.Percent = Percent(dc.Completed, dc.Planned)
	return dc
}

// BuildHistory aggregates days, which may arrive in any order.
func BuildHistory(days []model.DayData) History {
	sorted := append([]model.DayData(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	h := History{Days: sorted, DayCount: len(sorted), ByDay: make([]DayCompletion, 0, len(sorted))}
	for _, d := range sorted {
		h.Total += len(d.Supplements)
		h.Completed += d.CompletedCount()
		h.ByDay = append(h.ByDay, dayCompletion(d.Date, d.Supplements))
	}
	h.CompletionRate = Percent(h.Completed, h.Total)
	if h.DayCount > 0 {
		h.AveragePerDay = round(float64(h.Total) / float64(h.DayCount))
	}
	if h.Days == nil {
		h.Days = []model.DayData{}
	}
	return h
}

// WeekStart returns the Sunday on or before d.
func WeekStart(d civil.Date) civil.Date {
	wd := d.In(time.UTC).Weekday()
	return d.AddDays(-int(wd))
}

// BuildWeek computes the week containing anchor from the stored days; missing days count as empty.
func BuildWeek(anchor civil.Date, days []model.DayData) Week {
	start := WeekStart(anchor)
	byDate := make(map[civil.Date]model.DayData, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}

	w := Week{Start: start, End: start.AddDays(6), Days: make([]DayCompletion, 0, 7)}
	var pctSum float64
	nonEmpty := 0
	for i := 0; i < 7; i++ {
		date := start.AddDays(i)
		d := byDate[date]
		dc := dayCompletion(date, d.Supplements)
		w.Days = append(w.Days, dc)

		w.TotalPlanned += dc.Planned
		w.Completed += dc.Completed
		if dc.Planned > 0 {
			nonEmpty++
			pctSum += float64(dc.Completed) / float64(dc.Planned) * 100
			if dc.Completed == dc.Planned {
				w.PerfectDays++
			}
		}
	}
	if nonEmpty > 0 {
		w.AvgDaily = round(pctSum / float64(nonEmpty))
	}
	return w
}
