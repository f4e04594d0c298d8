// Package checkout synchronise le brouillon du formulaire de commande
// et calcule le récapitulatif affiché avant validation.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"noel_back_end/internal/debounce"
	"noel_back_end/internal/models"
	"noel_back_end/internal/repository"
	"noel_back_end/internal/storage"
)

const (
	DefaultDraftTTL = 24 * time.Hour
	DefaultDebounce = 500 * time.Millisecond

	fallbackPrefix = "draft:"
	saveTimeout    = 5 * time.Second
)

// ErrSessionMissing opération sans identifiant de session
var ErrSessionMissing = errors.New("checkout: session absente")

type DraftRepository interface {
	GetDraft(ctx context.Context, sessionID string) (*models.CheckoutDraft, error)
	UpsertDraft(ctx context.Context, draft models.CheckoutDraft) error
	DeleteDraft(ctx context.Context, sessionID string) error
}

// DraftSync : la table des brouillons fait autorité, fallback ne sert que
// lorsqu'elle est injoignable.
type DraftSync struct {
	repo     DraftRepository
	fallback storage.KV
	ttl      time.Duration
	delay    time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingSave
}

type pendingSave struct {
	task *debounce.Task
	form models.CheckoutForm
}

func NewDraftSync(repo DraftRepository, fallback storage.KV, ttl, delay time.Duration) *DraftSync {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &DraftSync{
		repo:     repo,
		fallback: fallback,
		ttl:      ttl,
		delay:    delay,
		now:      time.Now,
		pending:  make(map[string]*pendingSave),
	}
}

func fallbackKey(sessionID string) string {
	return fallbackPrefix + sessionID
}

// Load retourne le formulaire en cours ou nil. Ne retourne jamais d'erreur :
// un brouillon expiré est supprimé, une panne ou une ligne absente bascule
// sur le repli.
func (d *DraftSync) Load(ctx context.Context, sessionID string) *models.CheckoutForm {
	if sessionID == "" {
		return nil
	}

	draft, err := d.repo.GetDraft(ctx, sessionID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return d.loadFallback(ctx, sessionID)
	case err != nil:
		log.Printf("⚠️ Brouillon %s indisponible, lecture du repli: %v", sessionID, err)
		return d.loadFallback(ctx, sessionID)
	}

	if draft.Expired(d.now()) {
		if err := d.repo.DeleteDraft(ctx, sessionID); err != nil {
			log.Printf("⚠️ Suppression brouillon expiré %s: %v", sessionID, err)
		}
		return nil
	}
	form := draft.FormData
	return &form
}

func (d *DraftSync) loadFallback(ctx context.Context, sessionID string) *models.CheckoutForm {
	data, err := d.fallback.Get(ctx, fallbackKey(sessionID))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("❌ Lecture repli brouillon %s: %v", sessionID, err)
		}
		return nil
	}
	var form models.CheckoutForm
	if err := json.Unmarshal(data, &form); err != nil {
		log.Printf("⚠️ Repli brouillon %s illisible: %v", sessionID, err)
		return nil
	}
	return &form
}

// Save écrit le brouillon avec expiresAt = maintenant + ttl. En cas d'échec
// l'écriture part dans le repli ; l'appelant n'est jamais prévenu.
func (d *DraftSync) Save(ctx context.Context, sessionID string, form models.CheckoutForm) {
	if sessionID == "" {
		return
	}

	now := d.now()
	draft := models.CheckoutDraft{
		SessionID: sessionID,
		FormData:  form,
		ExpiresAt: now.Add(d.ttl),
		UpdatedAt: now,
	}

	if err := d.repo.UpsertDraft(ctx, draft); err != nil {
		log.Printf("⚠️ Sauvegarde brouillon %s en échec, écriture du repli: %v", sessionID, err)
		data, err := json.Marshal(form)
		if err != nil {
			log.Printf("❌ Sérialisation brouillon %s: %v", sessionID, err)
			return
		}
		if err := d.fallback.Set(ctx, fallbackKey(sessionID), data); err != nil {
			log.Printf("❌ Écriture repli brouillon %s: %v", sessionID, err)
		}
		return
	}
	// la ligne serveur fait foi, le repli ne doit pas lui survivre
	if err := d.fallback.Delete(ctx, fallbackKey(sessionID)); err != nil {
		log.Printf("⚠️ Suppression repli brouillon %s: %v", sessionID, err)
	}
}

// Schedule programme Save après le délai d'inactivité de la session.
// Seul le dernier formulaire reçu est écrit.
func (d *DraftSync) Schedule(sessionID string, form models.CheckoutForm) error {
	if sessionID == "" {
		return ErrSessionMissing
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[sessionID]
	if !ok {
		p = &pendingSave{}
		p.task = debounce.New(d.delay, func() { d.fire(sessionID, p) })
		d.pending[sessionID] = p
	}
	p.form = form
	p.task.Trigger()
	return nil
}

func (d *DraftSync) fire(sessionID string, p *pendingSave) {
	d.mu.Lock()
	form := p.form
	if !p.task.Pending() && d.pending[sessionID] == p {
		delete(d.pending, sessionID)
	}
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	d.Save(ctx, sessionID, form)
}

// Clear supprime le brouillon de la session. C'est la seule opération
// qui remonte ses erreurs.
func (d *DraftSync) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionMissing
	}

	d.mu.Lock()
	if p, ok := d.pending[sessionID]; ok {
		p.task.Cancel()
		delete(d.pending, sessionID)
	}
	d.mu.Unlock()

	if err := d.fallback.Delete(ctx, fallbackKey(sessionID)); err != nil {
		log.Printf("⚠️ Suppression repli brouillon %s: %v", sessionID, err)
	}
	if err := d.repo.DeleteDraft(ctx, sessionID); err != nil {
		return fmt.Errorf("suppression brouillon: %w", err)
	}
	return nil
}

// Pending vrai si une sauvegarde est programmée pour la session
func (d *DraftSync) Pending(sessionID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[sessionID]
	return ok && p.task.Pending()
}

// Close écrit immédiatement les sauvegardes programmées
func (d *DraftSync) Close() {
	d.mu.Lock()
	tasks := make([]*debounce.Task, 0, len(d.pending))
	for _, p := range d.pending {
		tasks = append(tasks, p.task)
	}
	d.mu.Unlock()

	for _, t := range tasks {
		t.Flush()
	}
}
