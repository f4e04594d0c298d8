package dashboard

import (
	"context"
	"log"
	"time"

	"noel_back_end/internal/models"
)

const (
	DefaultDelay    = 3 * time.Second
	DefaultInterval = 10 * time.Second
)

// Poller recharge les indicateurs : une fois au démarrage, puis toutes les
// Interval après Delay. Une nouvelle commande est signalée quand l'identifiant
// de la plus récente change entre deux rafraîchissements.
type Poller struct {
	src      Source
	loc      *time.Location
	delay    time.Duration
	interval time.Duration
	now      func() time.Time

	OnStats    func(*Stats)
	OnNewOrder func(models.Order)

	lastID string
	polled bool
}

func NewPoller(src Source, loc *time.Location, delay, interval time.Duration) *Poller {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Poller{src: src, loc: loc, delay: delay, interval: interval, now: time.Now}
}

// Run bloque jusqu'à l'annulation du contexte
func (p *Poller) Run(ctx context.Context) error {
	p.poll(ctx)

	settle := time.NewTimer(p.delay)
	defer settle.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-settle.C:
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	stats, err := Fetch(ctx, p.src, p.now(), p.loc)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("⚠️ Rafraîchissement tableau de bord: %v", err)
		}
		return
	}

	if p.OnStats != nil {
		p.OnStats(stats)
	}

	// pas d'alerte au premier passage ; N commandes entre deux passages = une alerte
	if p.polled && stats.LatestOrderID != "" && stats.LatestOrderID != p.lastID {
		log.Printf("🔔 Nouvelle commande %s", stats.LatestOrderID)
		if p.OnNewOrder != nil {
			p.OnNewOrder(stats.RecentOrders[0])
		}
	}
	p.lastID = stats.LatestOrderID
	p.polled = true
}
