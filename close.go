package membuf

import "context"

// Close tears the pool down: every allocated resource is destroyed in
// descending id order, which makes all open handles stale. Afterwards
// SetActiveCount and Open fail with ErrClosed. Close is idempotent.
func (p *Pool) Close() error {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	var firstErr error
	destroyed := 0
	for p.active > 0 {
		p.active--
		if err := p.destroyResource(p.active); err != nil && firstErr == nil {
			firstErr = err
		}
		destroyed++
	}
	p.closed = true

	p.metrics.RecordActiveCount(0, 0, firstErr)
	p.logger.LogTeardown(context.Background(), destroyed, firstErr)

	return firstErr
}
