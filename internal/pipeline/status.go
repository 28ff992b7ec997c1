package pipeline

import (
	"sync/atomic"
	"time"

	"rembgd/pkg/types"
)

// Status builds a detailed status response for /status.
func (p *Pipeline) Status() types.StatusResponse {
	p.mu.RLock()
	state := p.state
	lastErr := p.lastErr
	p.mu.RUnlock()
	now := time.Now()
	return types.StatusResponse{
		State:          string(state),
		Model:          p.model.ID,
		Workers:        p.workers,
		QueueLen:       len(p.queueCh),
		Inflight:       len(p.slotCh),
		MaxQueueDepth:  cap(p.queueCh),
		ProcessedTotal: atomic.LoadUint64(&p.processedTotal),
		FailedTotal:    atomic.LoadUint64(&p.failedTotal),
		LastError:      lastErr,
		UptimeSeconds:  int64(now.Sub(p.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}
