// Package convert maps between the JSON wire shapes of the HTTP API and domain types.
package convert

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	u "github.com/gofrs/uuid/v5"

	"github.com/and161185/supp-tracker/internal/errs"
	model "github.com/and161185/supp-tracker/internal/model"
	"github.com/and161185/supp-tracker/internal/service"
)

// --- dates and ids ---

// ParseDate parses a YYYY-MM-DD path or query value.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: invalid date %q", errs.ErrValidation, s)
	}
	return d, nil
}

// ParseID parses a supplement id.
func ParseID(s string) (u.UUID, error) {
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil, fmt.Errorf("%w: invalid id %q", errs.ErrValidation, s)
	}
	return id, nil
}

// --- supplements (client -> server) ---

// SupplementIn is a supplement as sent by a client; id and takenAt are optional.
type SupplementIn struct {
	ID           string     `json:"id,omitempty"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	TimeCategory string     `json:"timeCategory"`
	TakenAt      *time.Time `json:"takenAt,omitempty"`
	Completed    bool       `json:"completed"`
}

// FromWireSupplement validates and converts one supplement.
func FromWireSupplement(in SupplementIn, now time.Time) (model.Supplement, error) {
	cat := model.TimeCategory(in.TimeCategory)
	if !cat.Valid() {
		return model.Supplement{}, fmt.Errorf("%w: unknown time category %q", errs.ErrValidation, in.TimeCategory)
	}
	out := model.Supplement{
		Name:         in.Name,
		Dosage:       in.Dosage,
		TimeCategory: cat,
		TakenAt:      now,
		Completed:    in.Completed,
	}
	if in.ID != "" {
		id, err := ParseID(in.ID)
		if err != nil {
			return model.Supplement{}, err
		}
		out.ID = id
	}
	if in.TakenAt != nil {
		out.TakenAt = *in.TakenAt
	}
	return out, nil
}

// FromWireSupplements converts a list, reporting the index of the first bad entry.
func FromWireSupplements(in []SupplementIn, now time.Time) ([]model.Supplement, error) {
	out := make([]model.Supplement, 0, len(in))
	for i, s := range in {
		m, err := FromWireSupplement(s, now)
		if err != nil {
			return nil, fmt.Errorf("supplement[%d]: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// --- days / templates (server -> client) ---

// DayOut is a day with its completion summary.
type DayOut struct {
	Date        string             `json:"date"`
	Supplements []model.Supplement `json:"supplements"`
	Completed   int                `json:"completed"`
	Total       int                `json:"total"`
}

// ToWireDay converts a day record.
func ToWireDay(d model.DayData) DayOut {
	supps := d.Supplements
	if supps == nil {
		supps = []model.Supplement{}
	}
	return DayOut{Date: d.Date.String(), Supplements: supps, Completed: d.CompletedCount(), Total: len(supps)}
}

// ToWireDays converts a list of day records.
func ToWireDays(in []model.DayData) []DayOut {
	out := make([]DayOut, 0, len(in))
	for _, d := range in {
		out = append(out, ToWireDay(d))
	}
	return out
}

// TemplateOut is the stored template shape.
type TemplateOut struct {
	Supplements []model.TemplateEntry `json:"supplements"`
	UpdatedAt   *time.Time            `json:"updatedAt,omitempty"`
}

// ToWireTemplate converts a template.
func ToWireTemplate(t *model.Template) TemplateOut {
	out := TemplateOut{Supplements: t.Entries}
	if out.Supplements == nil {
		out.Supplements = []model.TemplateEntry{}
	}
	if !t.UpdatedAt.IsZero() {
		ts := t.UpdatedAt
		out.UpdatedAt = &ts
	}
	return out
}

// --- range apply ---

// RangeIn is a bulk apply request; WindowFrom/WindowTo describe the range the caller displays.
type RangeIn struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	WindowFrom string `json:"windowFrom,omitempty"`
	WindowTo   string `json:"windowTo,omitempty"`
}

// Range holds the parsed request.
type Range struct {
	Start, End civil.Date
	// HasWindow is false when the caller sent no window.
	HasWindow          bool
	WindowFrom, WindowTo civil.Date
}

// FromWireRange parses a bulk apply request.
func FromWireRange(in RangeIn) (Range, error) {
	var r Range
	var err error
	if r.Start, err = ParseDate(in.Start); err != nil {
		return Range{}, err
	}
	if r.End, err = ParseDate(in.End); err != nil {
		return Range{}, err
	}
	if in.WindowFrom == "" && in.WindowTo == "" {
		return r, nil
	}
	if r.WindowFrom, err = ParseDate(in.WindowFrom); err != nil {
		return Range{}, err
	}
	if r.WindowTo, err = ParseDate(in.WindowTo); err != nil {
		return Range{}, err
	}
	r.HasWindow = true
	return r, nil
}

// NavigateTo suggests the range a caller should display to see applied days.
type NavigateTo struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RangeOut reports a bulk apply.
type RangeOut struct {
	Success      bool        `json:"success"`
	Partial      bool        `json:"partial"`
	SuccessCount int         `json:"successCount"`
	ErrorCount   int         `json:"errorCount"`
	Failed       []string    `json:"failed"`
	Message      string      `json:"message"`
	NavigateTo   *NavigateTo `json:"navigateTo,omitempty"`
	Window       []DayOut    `json:"window,omitempty"`
}

// ToWireRange converts a tally; window is the re-read displayed range (may be nil).
func ToWireRange(res service.RangeResult, req Range, window []model.DayData) RangeOut {
	out := RangeOut{
		Success:      res.ErrorCount == 0,
		Partial:      res.Partial(),
		SuccessCount: res.SuccessCount,
		ErrorCount:   res.ErrorCount,
		Failed:       make([]string, 0, len(res.Failed)),
	}
	for _, d := range res.Failed {
		out.Failed = append(out.Failed, d.String())
	}
	if out.Partial {
		out.Message = fmt.Sprintf("applied template to %d days, %d failed", res.SuccessCount, res.ErrorCount)
	} else {
		out.Message = fmt.Sprintf("applied template to %d days", res.SuccessCount)
	}
	if req.HasWindow && res.SuccessCount > 0 && res.OutsideWindow(req.WindowFrom, req.WindowTo) {
		out.NavigateTo = &NavigateTo{From: req.Start.String(), To: req.End.String()}
	}
	if window != nil {
		out.Window = ToWireDays(window)
	}
	return out
}
