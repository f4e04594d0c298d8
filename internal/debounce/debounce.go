// Package debounce regroupe des déclenchements rapprochés en une seule exécution.
package debounce

import (
	"sync"
	"time"
)

// Task exécute fn une seule fois, delay après le dernier Trigger.
// Chaque Trigger annule et reprogramme l'unique minuteur en attente.
type Task struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	pending bool
	gen     uint64
}

func New(delay time.Duration, fn func()) *Task {
	return &Task{delay: delay, fn: fn}
}

// Trigger (re)programme l'exécution
func (t *Task) Trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.pending = true
	t.timer = time.AfterFunc(t.delay, func() { t.fire(gen) })
}

func (t *Task) fire(gen uint64) {
	t.mu.Lock()
	// un Trigger/Cancel plus récent a invalidé ce minuteur
	if gen != t.gen || !t.pending {
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.timer = nil
	t.mu.Unlock()

	t.fn()
}

// Cancel abandonne l'exécution en attente
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Flush exécute immédiatement l'exécution en attente, s'il y en a une
func (t *Task) Flush() {
	t.mu.Lock()
	if !t.pending {
		t.mu.Unlock()
		return
	}
	t.stopLocked()
	t.mu.Unlock()

	t.fn()
}

// Pending vrai si une exécution est programmée
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

func (t *Task) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	t.pending = false
}
