package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noel_back_end/internal/models"
	"noel_back_end/internal/repository"
	"noel_back_end/internal/storage"
)

type fakeDraftRepo struct {
	mu      sync.Mutex
	drafts  map[string]models.CheckoutDraft
	err     error
	upserts int
	deletes int
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[string]models.CheckoutDraft)}
}

func (f *fakeDraftRepo) GetDraft(_ context.Context, id string) (*models.CheckoutDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.drafts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDraftRepo) UpsertDraft(_ context.Context, d models.CheckoutDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts++
	f.drafts[d.SessionID] = d
	return nil
}

func (f *fakeDraftRepo) DeleteDraft(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deletes++
	delete(f.drafts, id)
	return nil
}

func (f *fakeDraftRepo) count() (upserts int, stored int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts, len(f.drafts)
}

var sampleForm = models.CheckoutForm{
	Name:          "Maria",
	Phone:         "11 99999-0000",
	DeliveryType:  models.DeliveryTypePickup,
	PaymentMethod: models.PaymentMethodPix,
	DeliveryDate:  "24/12",
}

func TestDraft_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	repo := newFakeDraftRepo()
	d := NewDraftSync(repo, storage.NewMemoryKV(), time.Hour, time.Millisecond)

	d.Save(ctx, "s1", sampleForm)

	got := d.Load(ctx, "s1")
	require.NotNil(t, got)
	assert.Equal(t, sampleForm, *got)
	assert.WithinDuration(t, time.Now().Add(time.Hour), repo.drafts["s1"].ExpiresAt, 5*time.Second)
}

func TestDraft_ExpiredIsDeletedOnLoad(t *testing.T) {
	ctx := context.Background()
	repo := newFakeDraftRepo()
	repo.drafts["s1"] = models.CheckoutDraft{
		SessionID: "s1",
		FormData:  sampleForm,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	d := NewDraftSync(repo, storage.NewMemoryKV(), time.Hour, time.Millisecond)

	assert.Nil(t, d.Load(ctx, "s1"))
	_, ok := repo.drafts["s1"]
	assert.False(t, ok)
	assert.Equal(t, 1, repo.deletes)
}

func TestDraft_MissingIsNil(t *testing.T) {
	d := NewDraftSync(newFakeDraftRepo(), storage.NewMemoryKV(), 0, 0)
	assert.Nil(t, d.Load(context.Background(), "inconnue"))
	assert.Nil(t, d.Load(context.Background(), ""))
}

func TestDraft_FallbackWhenRepositoryFails(t *testing.T) {
	ctx := context.Background()
	repo := newFakeDraftRepo()
	repo.err = errors.New("unconfigured table checkout_drafts")
	kv := storage.NewMemoryKV()
	d := NewDraftSync(repo, kv, time.Hour, time.Millisecond)

	// ni Save ni Load ne remontent l'erreur
	d.Save(ctx, "s1", sampleForm)
	assert.True(t, kv.Has("draft:s1"))

	got := d.Load(ctx, "s1")
	require.NotNil(t, got)
	assert.Equal(t, sampleForm.Name, got.Name)
}

func TestDraft_FallbackSurvivesRepositoryRecovery(t *testing.T) {
	ctx := context.Background()
	repo := newFakeDraftRepo()
	repo.err = errors.New("no hosts available")
	kv := storage.NewMemoryKV()
	d := NewDraftSync(repo, kv, time.Hour, time.Millisecond)

	d.Save(ctx, "s1", sampleForm)
	repo.err = nil

	got := d.Load(ctx, "s1")
	require.NotNil(t, got)
	assert.Equal(t, sampleForm, *got)

	// une écriture serveur réussie retire le repli
	d.Save(ctx, "s1", sampleForm)
	assert.False(t, kv.Has("draft:s1"))
}

func TestDraft_FallbackUnreadableIsNil(t *testing.T) {
	ctx := context.Background()
	repo := newFakeDraftRepo()
	repo.err = errors.New("timeout")
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "draft:s1", []byte("{")))

	d := NewDraftSync(repo, kv, time.Hour, time.Millisecond)
	assert.Nil(t, d.Load(ctx, "s1"))
}

func TestDraft_ScheduleKeepsLastFormOnly(t *testing.T) {
	repo := newFakeDraftRepo()
	d := NewDraftSync(repo, storage.NewMemoryKV(), time.Hour, 30*time.Millisecond)

	for _, name := range []string{"M", "Ma", "Mar", "Maria"} {
		form := sampleForm
		form.Name = name
		require.NoError(t, d.Schedule("s1", form))
	}
	assert.True(t, d.Pending("s1"))

	assert.Eventually(t, func() bool {
		_, stored := repo.count()
		return stored == 1
	}, time.Second, 5*time.Millisecond)

	upserts, _ := repo.count()
	assert.Equal(t, 1, upserts)
	assert.Equal(t, "Maria", d.Load(context.Background(), "s1").Name)
	assert.False(t, d.Pending("s1"))
}

func TestDraft_ScheduleRequiresSession(t *testing.T) {
	d := NewDraftSync(newFakeDraftRepo(), storage.NewMemoryKV(), 0, 0)
	assert.ErrorIs(t, d.Schedule("", sampleForm), ErrSessionMissing)
	assert.ErrorIs(t, d.Clear(context.Background(), ""), ErrSessionMissing)
}

func TestDraft_ClearCancelsPendingAndReportsErrors(t *testing.T) {
	ctx := context.Background()
	repo := newFakeDraftRepo()
	d := NewDraftSync(repo, storage.NewMemoryKV(), time.Hour, 20*time.Millisecond)

	d.Save(ctx, "s1", sampleForm)
	require.NoError(t, d.Schedule("s1", sampleForm))
	require.NoError(t, d.Clear(ctx, "s1"))
	assert.False(t, d.Pending("s1"))

	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, d.Load(ctx, "s1"))

	repo.err = errors.New("cluster down")
	assert.Error(t, d.Clear(ctx, "s1"))
}

func TestDraft_CloseFlushesPending(t *testing.T) {
	repo := newFakeDraftRepo()
	d := NewDraftSync(repo, storage.NewMemoryKV(), time.Hour, time.Hour)

	require.NoError(t, d.Schedule("s1", sampleForm))
	d.Close()

	_, stored := repo.count()
	assert.Equal(t, 1, stored)
}
