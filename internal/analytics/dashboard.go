package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/babyscan/babyscan/internal/types"
)

// RecentLimit is how many measurements the dashboard lists.
const RecentLimit = 5

// listConcurrency bounds parallel measurement queries.
const listConcurrency = 4

// Lister is the read side of storage used by analytics.
type Lister interface {
	ListBabies(ctx context.Context) ([]*types.Baby, error)
	ListMeasurements(ctx context.Context, babyID string) ([]*types.Measurement, error)
}

// RecentMeasurement is a measurement labelled with its baby's name.
type RecentMeasurement struct {
	BabyName string `json:"baby_name"`
	*types.Measurement
}

// DashboardStats are the figures shown on the home screen.
type DashboardStats struct {
	TotalBabies       int                 `json:"total_babies"`
	TotalMeasurements int                 `json:"total_measurements"`
	MeasuredThisMonth int                 `json:"measured_this_month"`
	Recent            []RecentMeasurement `json:"recent"`
}

// Dashboard gathers totals, the RecentLimit most recent measurements across
// all babies, and how many measurements fall in now's calendar month.
func Dashboard(ctx context.Context, store Lister, now time.Time) (*DashboardStats, error) {
	babies, perBaby, err := loadAll(ctx, store)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalBabies: len(babies)}
	var all []RecentMeasurement
	for i, baby := range babies {
		for _, m := range perBaby[i] {
			all = append(all, RecentMeasurement{BabyName: baby.Name, Measurement: m})
			if sameMonth(m.MeasurementDate, now) {
				stats.MeasuredThisMonth++
			}
		}
	}
	stats.TotalMeasurements = len(all)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].MeasurementDate.After(all[j].MeasurementDate)
	})
	if len(all) > RecentLimit {
		all = all[:RecentLimit]
	}
	stats.Recent = all
	return stats, nil
}

func sameMonth(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// loadAll lists every baby and their measurements. perBaby[i] belongs to babies[i].
func loadAll(ctx context.Context, store Lister) ([]*types.Baby, [][]*types.Measurement, error) {
	babies, err := store.ListBabies(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list babies: %w", err)
	}

	perBaby := make([][]*types.Measurement, len(babies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, baby := range babies {
		g.Go(func() error {
			ms, err := store.ListMeasurements(gctx, baby.ID)
			if err != nil {
				return fmt.Errorf("failed to list measurements for %s: %w", baby.ID, err)
			}
			perBaby[i] = ms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return babies, perBaby, nil
}
