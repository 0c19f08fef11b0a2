package player

import (
	"context"
	"time"

	"github.com/mgoltzsche/dialogue-player/internal/audio"
)

// startProgressLocked samples the audio position on a fixed interval while it plays.
func (c *Controller) startProgressLocked(h audio.Handle) {
	c.stopProgressLocked()

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelProgress = cancel

	go func() {
		ticker := time.NewTicker(c.progressInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-h.Done():
				return
			case <-ticker.C:
				c.reportProgress(ctx, h)
			}
		}
	}()
}

func (c *Controller) reportProgress(ctx context.Context, h audio.Handle) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// the reporter may have been stopped while waiting for the lock
	if ctx.Err() != nil {
		return
	}

	c.sampleLocked(h)
	c.publishLocked()
}

func (c *Controller) stopProgressLocked() {
	if c.cancelProgress != nil {
		c.cancelProgress()
		c.cancelProgress = nil
	}
}

func (c *Controller) sampleLocked(h audio.Handle) {
	c.currentTime = h.Position()
	c.duration = h.Duration()
	c.progress = 0

	if c.duration > 0 {
		c.progress = 100 * float64(c.currentTime) / float64(c.duration)
	}
}

func (c *Controller) resetProgressLocked() {
	c.currentTime = 0
	c.duration = 0
	c.progress = 0
}
