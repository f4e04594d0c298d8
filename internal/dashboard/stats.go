// Package dashboard calcule les indicateurs du back-office et les pousse
// périodiquement aux administrateurs connectés.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"noel_back_end/internal/models"
)

const (
	SeriesDays   = 7
	RecentLimit  = 5
	dayLayout    = "2006-01-02"
	fetchTimeout = 8 * time.Second
)

type Source interface {
	OrdersSince(ctx context.Context, since time.Time) ([]models.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	OutOfStockCount(ctx context.Context) (int, error)
}

type DayPoint struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Stats instantané du tableau de bord. Les montants excluent les commandes annulées.
type Stats struct {
	TodayOrders      int             `json:"todayOrders"`
	TodayRevenue     decimal.Decimal `json:"todayRevenue"`
	YesterdayOrders  int             `json:"yesterdayOrders"`
	YesterdayRevenue decimal.Decimal `json:"yesterdayRevenue"`
	PendingOrders    int             `json:"pendingOrders"`
	Series           []DayPoint      `json:"series"`
	RecentOrders     []models.Order  `json:"recentOrders"`
	OutOfStock       int             `json:"outOfStock"`
	LatestOrderID    string          `json:"latestOrderId"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// StartOfDay minuit du jour de t dans loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Fetch lance les agrégats en parallèle ; la première erreur annule les autres
func Fetch(ctx context.Context, src Source, now time.Time, loc *time.Location) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	since := StartOfDay(now, loc).AddDate(0, 0, -(SeriesDays - 1))

	var (
		week       []models.Order
		recent     []models.Order
		pending    int
		outOfStock int
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		week, err = src.OrdersSince(ctx, since)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		recent, err = src.RecentOrders(ctx, RecentLimit)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		pending, err = src.CountByStatus(ctx, models.PaymentStatusPending)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		outOfStock, err = src.OutOfStockCount(ctx)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("agrégats tableau de bord: %w", err)
	}

	return Compute(week, recent, pending, outOfStock, now, loc), nil
}

// Compute assemble les indicateurs à partir des données brutes
func Compute(week, recent []models.Order, pending, outOfStock int, now time.Time, loc *time.Location) *Stats {
	today := StartOfDay(now, loc)
	first := today.AddDate(0, 0, -(SeriesDays - 1))

	series := make([]DayPoint, SeriesDays)
	for i := range series {
		series[i] = DayPoint{Date: first.AddDate(0, 0, i).Format(dayLayout), Revenue: decimal.Zero}
	}

	for _, o := range week {
		day := StartOfDay(o.CreatedAt, loc)
		if day.Before(first) || day.After(today) {
			continue
		}
		i := dayIndex(first, day)
		series[i].Orders++
		if o.PaymentStatus != models.PaymentStatusCancelled {
			series[i].Revenue = series[i].Revenue.Add(o.Total)
		}
	}

	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}

	stats := &Stats{
		TodayOrders:      series[SeriesDays-1].Orders,
		TodayRevenue:     series[SeriesDays-1].Revenue,
		YesterdayOrders:  series[SeriesDays-2].Orders,
		YesterdayRevenue: series[SeriesDays-2].Revenue,
		PendingOrders:    pending,
		Series:           series,
		RecentOrders:     recent,
		OutOfStock:       outOfStock,
		GeneratedAt:      now,
	}
	if len(recent) > 0 {
		stats.LatestOrderID = recent[0].ID
	}
	return stats
}

// dayIndex compte en jours calendaires (les jours de changement d'heure ne font pas 24h)
func dayIndex(first, day time.Time) int {
	i := 0
	for d := first; d.Before(day); d = d.AddDate(0, 0, 1) {
		i++
	}
	return i
}
