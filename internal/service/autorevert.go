package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AutoRevert schedules the pickup/drop-off window: an on_duty_not_driving
// entry flagged as pickup/drop-off reverts to driving after the window
// elapses unless the driver changes status first.
//
// Timers live in-process. The fire callback re-validates against the
// database before acting, so a restart simply drops pending timers and a
// stale fire is a no-op.
type AutoRevert struct {
	delay time.Duration
	log   *slog.Logger

	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
	fire   func(entryID, driverID uuid.UUID)
}

// NewAutoRevert constructs a scheduler firing after delay.
func NewAutoRevert(delay time.Duration, log *slog.Logger) *AutoRevert {
	return &AutoRevert{
		delay:  delay,
		log:    log,
		timers: make(map[uuid.UUID]*time.Timer),
	}
}

// Bind sets the fire callback. Called once at wiring time, before any
// Schedule; breaks the construction cycle between scheduler and DutyService.
func (a *AutoRevert) Bind(fire func(entryID, driverID uuid.UUID)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fire = fire
}

// Schedule arms the revert timer for an entry. Re-scheduling the same entry
// resets its timer.
func (a *AutoRevert) Schedule(entryID, driverID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fire == nil {
		a.log.Warn("auto-revert: schedule before bind, dropping", "entry_id", entryID)
		return
	}
	if t, ok := a.timers[entryID]; ok {
		t.Stop()
	}
	a.timers[entryID] = time.AfterFunc(a.delay, func() {
		a.mu.Lock()
		delete(a.timers, entryID)
		fire := a.fire
		a.mu.Unlock()
		fire(entryID, driverID)
	})
	a.log.Info("auto-revert: timer armed", "entry_id", entryID, "driver_id", driverID, "delay", a.delay)
}

// Cancel disarms the timer for an entry, if one is pending.
func (a *AutoRevert) Cancel(entryID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if t, ok := a.timers[entryID]; ok {
		t.Stop()
		delete(a.timers, entryID)
	}
}

// Stop disarms all pending timers. Called on shutdown.
func (a *AutoRevert) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, t := range a.timers {
		t.Stop()
		delete(a.timers, id)
	}
}
