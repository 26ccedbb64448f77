package analytics

import (
	"context"
	"time"
)

// StreamText emits text one character at a time on the returned channel,
// pausing delay between characters. The channel closes after the last
// character, or as soon as ctx is canceled; the internal timer is released
// on both paths so a disconnected consumer leaves no delayed work behind.
//
// Every call replays the full text from the start; concurrent streams of
// the same text are independent.
func StreamText(ctx context.Context, text string, delay time.Duration) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		t := time.NewTimer(delay)
		defer t.Stop()

		for _, r := range text {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}

			select {
			case <-ctx.Done():
				return
			case out <- string(r):
			}

			t.Reset(delay)
		}
	}()

	return out
}
