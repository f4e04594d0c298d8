// Package orders valide, enregistre et administre les commandes.
package orders

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"

	"noel_back_end/internal/checkout"
	"noel_back_end/internal/models"
	"noel_back_end/internal/notify"
)

type Repository interface {
	CreateOrder(ctx context.Context, order models.Order) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id, status string) error
	SetPaid(ctx context.Context, id string, paid bool) error
	DeleteOrder(ctx context.Context, id string) error
}

// SiteConfig source de la configuration clé → valeur
type SiteConfig interface {
	SiteConfig(ctx context.Context) (map[string]string, error)
}

type Mailer interface {
	OrderEmail(ctx context.Context, to string, order models.Order, kind notify.Kind) error
}

// Result réponse d'une commande acceptée
type Result struct {
	OrderID     string `json:"orderId"`
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
	Message     string `json:"message"`
}

type Service struct {
	repo          Repository
	config        SiteConfig
	mailer        Mailer
	deliveryDates []string
	now           func() time.Time

	// envois en arrière-plan, attendus par Wait
	background conc.WaitGroup
}

func NewService(repo Repository, config SiteConfig, mailer Mailer, deliveryDates []string) *Service {
	return &Service{
		repo:          repo,
		config:        config,
		mailer:        mailer,
		deliveryDates: deliveryDates,
		now:           time.Now,
	}
}

// Submit valide puis enregistre la commande. Les notifications partent en
// arrière-plan et n'influencent jamais le résultat.
func (s *Service) Submit(ctx context.Context, in Input) (*Result, error) {
	if s.repo == nil || s.config == nil {
		return nil, ErrNotConfigured
	}

	items, err := in.validate(s.deliveryDates)
	if err != nil {
		return nil, err
	}

	siteConfig, err := s.config.SiteConfig(ctx)
	if err != nil {
		log.Printf("⚠️ Configuration du site indisponible: %v", err)
		siteConfig = nil
	}

	order := models.Order{
		ID:              uuid.NewString(),
		CustomerName:    strings.TrimSpace(in.Name),
		CustomerPhone:   strings.TrimSpace(in.Phone),
		Email:           strings.TrimSpace(in.Email),
		Items:           items,
		DeliveryType:    strings.TrimSpace(in.DeliveryType),
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		DeliveryDate:    strings.TrimSpace(in.DeliveryDate),
		PaymentStatus:   models.PaymentStatusPending,
		Paid:            false,
		CreatedAt:       s.now().UTC(),
	}
	if order.DeliveryType == models.DeliveryTypePickup {
		order.DeliveryAddress = models.PickupAddress
	}

	fee := checkout.DeliveryFee(siteConfig)
	order.Total = s.total(order, in.Total, fee, siteConfig != nil)

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("enregistrement commande: %w", err)
	}
	log.Printf("🧾 Commande %s enregistrée (%s, %s)", order.ID, order.CustomerName, notify.FormatBRL(order.Total))

	message := BuildMessage(order, fee, siteConfig[models.ConfigStoreName])
	result := &Result{OrderID: order.ID, Message: "Pedido realizado com sucesso!"}
	if phone := siteConfig[models.ConfigDeliveryPhone]; phone != "" {
		result.WhatsAppURL = notify.WhatsAppURL(phone, message)
	}

	s.sendEmails(order, siteConfig[models.ConfigSalesEmail])
	return result, nil
}

// total recalcule sous-total + frais. Sans configuration, le total client est conservé.
func (s *Service) total(order models.Order, clientTotal *decimal.Decimal, fee decimal.Decimal, configured bool) decimal.Decimal {
	computed := checkout.Summarize(order.Subtotal(), order.DeliveryType, fee).Total
	if !configured && clientTotal != nil {
		return *clientTotal
	}
	if clientTotal != nil && !clientTotal.Equal(computed) {
		log.Printf("⚠️ Total client %s différent du total recalculé %s (commande %s)",
			clientTotal.String(), computed.String(), order.ID)
	}
	return computed
}

func (s *Service) sendEmails(order models.Order, salesEmail string) {
	if s.mailer == nil {
		return
	}
	s.background.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var wg conc.WaitGroup
		if salesEmail != "" {
			wg.Go(func() {
				if err := s.mailer.OrderEmail(ctx, salesEmail, order, notify.KindAdmin); err != nil {
					log.Printf("❌ E-mail admin commande %s: %v", order.ID, err)
				}
			})
		}
		if order.Email != "" {
			wg.Go(func() {
				if err := s.mailer.OrderEmail(ctx, order.Email, order, notify.KindCustomer); err != nil {
					log.Printf("❌ E-mail client commande %s: %v", order.ID, err)
				}
			})
		}
		if r := wg.WaitAndRecover(); r != nil {
			log.Printf("❌ Panique pendant l'envoi des e-mails (commande %s): %v", order.ID, r.Value)
		}
	})
}

// Wait attend la fin des envois en arrière-plan
func (s *Service) Wait() {
	s.background.Wait()
}
