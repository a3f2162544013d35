package client

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trailmeet/internal/app/chat"
	"trailmeet/internal/pkg/logx"
)

const (
	// DefaultPollInterval is the delay between two chat polls.
	DefaultPollInterval = 3 * time.Second

	// DefaultPollOverlap is how far before the newest delivered timestamp a
	// poll starts reading.
	DefaultPollOverlap = 5 * time.Second

	// seenLimit bounds the message IDs remembered for de-duplication.
	seenLimit = 512
)

// ChatPoller fetches new chat messages of one event at a fixed interval.
//
// Message timestamps are taken at insert time, so a message can become
// visible after a newer one was already delivered. Each poll therefore reads
// from the newest delivered timestamp minus an overlap window and drops
// messages whose IDs were delivered before.
type ChatPoller struct {
	api        *Client
	eventID    string
	interval   time.Duration
	overlap    time.Duration
	onMessages func([]chat.Message)
	onError    func(error)
	log        zerolog.Logger

	mu     sync.Mutex
	since  time.Time
	cancel context.CancelFunc
	done   chan struct{}

	// Touched only by the polling goroutine.
	seen  map[string]struct{}
	order []string
}

// PollerOption configures a ChatPoller.
type PollerOption func(*ChatPoller)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *ChatPoller) { p.interval = d }
}

// WithPollOverlap overrides DefaultPollOverlap. A negative value disables
// the overlap window.
func WithPollOverlap(d time.Duration) PollerOption {
	return func(p *ChatPoller) { p.overlap = d }
}

// WithPollErrors receives failed polls. Polling continues after an error.
func WithPollErrors(fn func(error)) PollerOption {
	return func(p *ChatPoller) { p.onError = fn }
}

// WithSince starts polling after t instead of loading the latest messages.
func WithSince(t time.Time) PollerOption {
	return func(p *ChatPoller) { p.since = t }
}

// NewChatPoller returns a stopped poller for eventID. onMessages is called from
// the polling goroutine with each non-empty batch, oldest first.
func NewChatPoller(api *Client, eventID string, onMessages func([]chat.Message), opts ...PollerOption) *ChatPoller {
	p := &ChatPoller{
		api:        api,
		eventID:    eventID,
		interval:   DefaultPollInterval,
		overlap:    DefaultPollOverlap,
		onMessages: onMessages,
		log:        logx.Component("chat_poller"),
		seen:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.overlap < 0 {
		p.overlap = 0
	}
	return p
}

// Start polls once immediately and then every interval until Stop or until
// ctx is done. Starting a running poller does nothing.
func (p *ChatPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancels polling and waits for the polling goroutine to exit.
func (p *ChatPoller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Since returns the timestamp of the newest message delivered so far.
func (p *ChatPoller) Since() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.since
}

func (p *ChatPoller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *ChatPoller) poll(ctx context.Context) {
	from := p.Since()
	if !from.IsZero() {
		from = from.Add(-p.overlap)
	}

	messages, err := p.api.ListChat(ctx, p.eventID, from)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log.Debug().Err(err).Str("event_id", p.eventID).Msg("chat poll failed")
		if p.onError != nil {
			p.onError(err)
		}
		return
	}
	if len(messages) == 0 || ctx.Err() != nil {
		return
	}

	fresh := make([]chat.Message, 0, len(messages))
	for _, m := range messages {
		if p.markSeen(m.ID) {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) == 0 {
		return
	}

	p.mu.Lock()
	for _, m := range fresh {
		if m.Timestamp.After(p.since) {
			p.since = m.Timestamp
		}
	}
	p.mu.Unlock()

	if p.onMessages != nil {
		p.onMessages(fresh)
	}
}

// markSeen records id and reports whether it was new. The oldest IDs are
// forgotten once seenLimit is reached.
func (p *ChatPoller) markSeen(id string) bool {
	if _, ok := p.seen[id]; ok {
		return false
	}
	if len(p.order) >= seenLimit {
		delete(p.seen, p.order[0])
		p.order = p.order[1:]
	}
	p.seen[id] = struct{}{}
	p.order = append(p.order, id)
	return true
}
