package pipeline

import (
	"context"
	"time"
)

// beginWork reserves a queue slot and then an execution slot, FIFO.
// Returns a release func to be deferred. The wait at each stage is bounded
// by maxWait and by ctx; once both slots are held the unit runs to
// completion regardless of ctx.
func (p *Pipeline) beginWork(ctx context.Context) (func(), error) {
	p.mu.RLock()
	st := p.state
	p.mu.RUnlock()
	switch st {
	case StateReady:
	case StateDraining, StateClosed:
		// Reject new work so drain can complete.
		return nil, tooBusyError{}
	default:
		return nil, notReadyError{state: st}
	}

	// Fast path: respect an already-canceled context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := time.NewTimer(p.maxWait)
	defer timer.Stop()
	select {
	case p.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, tooBusyError{}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-p.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer2 := time.NewTimer(p.maxWait)
	defer timer2.Stop()
	select {
	case p.slotCh <- struct{}{}:
		acquired = true
		return func() { <-p.slotCh; <-p.queueCh }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer2.C:
		return nil, tooBusyError{}
	}
}
