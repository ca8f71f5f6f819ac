package room

import "time"

// The round timer is a single deferred callback stamped with the generation
// it was armed under. Any other termination path bumps the generation and
// stops the timer, so a fire that loses the race is a no-op.

func (r *Room) armTimerLocked(d time.Duration, gen uint64) {
	r.stopTimerLocked()
	r.timer = time.AfterFunc(d, func() { r.expireRound(gen) })
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// expireRound is the timer-driven termination trigger. It funnels into the
// same endRoundLocked used by skip, completion and removal, under the same
// lock, so a guess processed in the same instant cannot double-end the round.
func (r *Room) expireRound(gen uint64) {
	r.mtx.Lock()
	if r.destroyed || r.gen != gen || r.status != StatusPlaying || r.current == nil {
		r.mtx.Unlock()
		return
	}

	evs := r.endRoundLocked(ReasonTimeout)
	r.mtx.Unlock()

	r.notify(r.id, evs...)
}
