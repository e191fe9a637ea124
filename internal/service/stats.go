package service

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/supp-tracker/internal/repository"
	"github.com/and161185/supp-tracker/internal/stats"
)

// StatsService reads adherence figures from the day store.
type StatsService interface {
	History(ctx context.Context, userID uuid.UUID) (stats.History, error)
	Weekly(ctx context.Context, userID uuid.UUID, anchor civil.Date) (stats.Week, error)
}

type StatsServiceImpl struct {
	days repository.DayRepository
}

// NewStatsService constructs StatsService.
func NewStatsService(days repository.DayRepository) *StatsServiceImpl {
	return &StatsServiceImpl{days: days}
}

// History aggregates every stored day.
func (s *StatsServiceImpl) History(ctx context.Context, userID uuid.UUID) (stats.History, error) {
	days, err := s.days.List(ctx, userID)
	if err != nil {
		return stats.History{}, err
	}
	return stats.BuildHistory(days), nil
}

// Weekly summarizes the Sunday-start week containing anchor.
func (s *StatsServiceImpl) Weekly(ctx context.Context, userID uuid.UUID, anchor civil.Date) (stats.Week, error) {
	start := stats.WeekStart(anchor)
	days, err := s.days.ListRange(ctx, userID, start, start.AddDays(6))
	if err != nil {
		return stats.Week{}, err
	}
	return stats.BuildWeek(anchor, days), nil
}
