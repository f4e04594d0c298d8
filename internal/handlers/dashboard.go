package handlers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"noel_back_end/internal/dashboard"
	"noel_back_end/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// dashboardEvent message poussé sur le websocket
type dashboardEvent struct {
	Type  string           `json:"type"` // "stats" ou "new_order"
	Stats *dashboard.Stats `json:"stats,omitempty"`
	Order *models.Order    `json:"order,omitempty"`
}

// DashboardSnapshot GET /api/admin/dashboard
func (h *Handler) DashboardSnapshot(c *gin.Context) {
	stats, err := dashboard.Fetch(c.Request.Context(), h.dashboard, time.Now(), h.loc)
	if err != nil {
		h.serverError(c, "Erro ao carregar painel", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DashboardSocket GET /api/admin/dashboard/ws : une boucle de rafraîchissement par connexion
func (h *Handler) DashboardSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var mu sync.Mutex
	send := func(ev dashboardEvent) {
		mu.Lock()
		defer mu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			cancel()
		}
	}

	poller := dashboard.NewPoller(h.dashboard, h.loc, h.cfg.Dashboard.Delay, h.cfg.Dashboard.Interval)
	poller.OnStats = func(s *dashboard.Stats) {
		send(dashboardEvent{Type: "stats", Stats: s})
	}
	poller.OnNewOrder = func(o models.Order) {
		send(dashboardEvent{Type: "new_order", Order: &o})
	}

	// lecture : seule la fermeture côté client nous intéresse
	go func() {
		defer cancel()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
				mu.Unlock()
				if err != nil {
					cancel()
					return
				}
			}
		}
	}()

	log.Println("📡 Tableau de bord connecté")
	_ = poller.Run(ctx)
	log.Println("📴 Tableau de bord déconnecté")
}
