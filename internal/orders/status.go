package orders

import (
	"context"
	"fmt"
	"log"

	"noel_back_end/internal/models"
)

// List commandes, les plus récentes d'abord
func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	if s.repo == nil {
		return nil, ErrNotConfigured
	}
	return s.repo.ListOrders(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	if s.repo == nil {
		return nil, ErrNotConfigured
	}
	return s.repo.GetOrder(ctx, id)
}

// SetStatus accepte toute transition entre les quatre statuts. Paid n'est pas modifié.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	if s.repo == nil {
		return ErrNotConfigured
	}
	if !models.ValidPaymentStatus(status) {
		return invalid(fmt.Sprintf("Status inválido: %q", status))
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return fmt.Errorf("mise à jour statut %s: %w", id, err)
	}
	log.Printf("📋 Commande %s → %s", id, status)
	return nil
}

// SetPaid marque l'argent reçu (ou non). PaymentStatus n'est pas modifié.
func (s *Service) SetPaid(ctx context.Context, id string, paid bool) error {
	if s.repo == nil {
		return ErrNotConfigured
	}
	if err := s.repo.SetPaid(ctx, id, paid); err != nil {
		return fmt.Errorf("mise à jour paiement %s: %w", id, err)
	}
	log.Printf("💰 Commande %s payée=%t", id, paid)
	return nil
}

// TogglePaid inverse Paid et retourne la nouvelle valeur
func (s *Service) TogglePaid(ctx context.Context, id string) (bool, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	paid := !order.Paid
	return paid, s.SetPaid(ctx, id, paid)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s.repo == nil {
		return ErrNotConfigured
	}
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("suppression commande %s: %w", id, err)
	}
	log.Printf("🗑️ Commande %s supprimée", id)
	return nil
}
