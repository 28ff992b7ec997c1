package pipeline

import "time"

// Close initiates a graceful drain and releases the engine handle.
//   - Sets state to draining so admission rejects new units.
//   - Waits up to DrainTimeout for queued and in-flight units to finish.
//   - After the deadline, outstanding units are force-abandoned and logged.
//   - Releases the engine session last.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.state == StateClosed {
		p.mu.Unlock()
		return nil
	}
	p.state = StateDraining
	p.mu.Unlock()
	p.publisher.Publish(Event{Name: "drain_start", Model: p.model.ID})

	deadline := time.Now().Add(p.drainTimeout)
	for {
		inflight := len(p.slotCh)
		queued := len(p.queueCh)
		if inflight == 0 && queued == 0 {
			break
		}
		if time.Now().After(deadline) {
			p.publisher.Publish(Event{Name: "drain_timeout", Model: p.model.ID, Fields: map[string]any{"inflight": inflight, "queued": queued}})
			p.log.Warn().Int("inflight", inflight).Int("queued", queued).Msg("drain deadline reached; abandoning outstanding units")
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.state = StateClosed
	p.mu.Unlock()
	p.publisher.Publish(Event{Name: "drain_done", Model: p.model.ID})

	if p.session != nil {
		return p.session.Close()
	}
	return nil
}
