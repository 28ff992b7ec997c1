package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"rembgd/internal/imaging"
)

// Process runs one unit of work: admission into the pool, engine invocation
// under the exclusivity discipline, decode, transparency guarantee, and
// re-encode per the requested format. Elapsed time is measured from
// submission, so queue wait counts toward it. Every fault from the engine or
// codec stages comes back as a classified engine error, never a panic.
func (p *Pipeline) Process(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	if req.Quality <= 0 {
		req.Quality = defaultQuality
	}

	release, err := p.beginWork(ctx)
	if err != nil {
		p.recordFailure(err)
		return Result{}, err
	}
	defer release()

	out, err := p.runUnit(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		p.recordFailure(err)
		p.log.Error().Err(err).Dur("elapsed", elapsed).Msg("unit of work failed")
		return Result{}, err
	}
	atomic.AddUint64(&p.processedTotal, 1)
	return Result{Data: out, Size: len(out), Elapsed: elapsed, Format: req.Format}, nil
}

// runUnit performs exactly one engine invocation followed by one re-encode.
func (p *Pipeline) runUnit(ctx context.Context, req Request) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = engineError{stage: stageInvoke, msg: fmt.Sprintf("engine panic: %v", r)}
		}
	}()

	cut, err := p.invokeEngine(ctx, req.Data)
	if err != nil {
		return nil, engineError{stage: stageInvoke, msg: err.Error()}
	}
	img, err := imaging.Decode(cut)
	if err != nil {
		return nil, engineError{stage: stageDecode, msg: err.Error()}
	}
	buf := imaging.EnsureAlpha(img)
	enc, err := imaging.Encode(buf, req.Format, req.Quality)
	if err != nil {
		return nil, engineError{stage: stageEncode, msg: err.Error()}
	}
	return enc, nil
}

// invokeEngine enters the engine under mutual exclusion. The session handle
// is shared by reference and never reassigned; the capacity-1 channel is the
// only guard it needs. The call itself is treated as non-interruptible.
func (p *Pipeline) invokeEngine(ctx context.Context, data []byte) ([]byte, error) {
	p.engineCh <- struct{}{}
	defer func() { <-p.engineCh }()
	return p.session.Remove(ctx, data)
}

func (p *Pipeline) recordFailure(err error) {
	atomic.AddUint64(&p.failedTotal, 1)
	p.mu.Lock()
	p.lastErr = err.Error()
	p.mu.Unlock()
}
