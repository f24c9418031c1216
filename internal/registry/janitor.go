package registry

import (
	"context"
	"time"
)

// RunJanitor sweeps idle rooms until ctx is cancelled. A room is idle
// when no command has touched it for the configured TTL; abandoned rooms
// otherwise accumulate forever since sessions outlive their connections.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	if r.cfg.IdleTTL <= 0 {
		return
	}
	ticker := r.clock.NewTicker(interval, "janitor")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep disposes of every room idle past the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.clock.Now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for code, rm := range r.rooms {
		// lastActive is only written under the room lock, but a stale read
		// here just defers the removal to the next sweep.
		if rm.lastActive.After(cutoff) {
			continue
		}
		delete(r.rooms, code)
		for identity, seated := range r.seated {
			if seated == code {
				delete(r.seated, identity)
			}
		}
		removed++
		r.logger.Info().Str("room", code).Msg("Swept idle room")
	}
	return removed
}
