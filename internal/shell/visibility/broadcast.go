package visibility

import "sync"

// Update is pushed to UI subscribers when the window should change.
type Update struct {
	State State
	Focus bool
}

// Broadcaster is a Window whose native counterpart lives in the UI process:
// every effect is published to subscribers, which show or hide themselves.
type Broadcaster struct {
	mu      sync.RWMutex
	current Update
	subs    map[string]chan Update
}

// NewBroadcaster creates a Broadcaster that starts visible.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		current: Update{State: Visible, Focus: true},
		subs:    make(map[string]chan Update),
	}
}

// Show publishes a visible update.
func (b *Broadcaster) Show() error {
	b.publish(Update{State: Visible})
	return nil
}

// Hide publishes a hidden update.
func (b *Broadcaster) Hide() error {
	b.publish(Update{State: Hidden})
	return nil
}

// Focus publishes a visible, focused update.
func (b *Broadcaster) Focus() error {
	b.publish(Update{State: Visible, Focus: true})
	return nil
}

// Current returns the last published update.
func (b *Broadcaster) Current() Update {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Subscribe registers a subscriber. The channel first receives the current
// state.
func (b *Broadcaster) Subscribe(id string) <-chan Update {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Update, 16)
	ch <- b.current
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// publish sends u to every subscriber without blocking. A full channel
// loses its oldest update so the newest one is always delivered.
func (b *Broadcaster) publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = u
	for _, ch := range b.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		// Only publish sends, under the lock, so one receive makes room.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}
