// Package events реализует типизированную шину уведомлений между компонентами витрины.
package events

import (
	"sync"
	"time"
)

// Kind задаёт тип события.
type Kind string

const (
	// CartChanged публикуется после любого изменения локальной копии корзины.
	CartChanged Kind = "cart.changed"
	// AuthChanged публикуется при входе пользователя и при сбросе сессии из-за ErrAuth.
	AuthChanged Kind = "auth.changed"
	// Logout публикуется при явном выходе пользователя.
	Logout Kind = "logout"
)

const subscriberBuffer = 16

// Event описывает уведомление, привязанное к сессии.
type Event struct {
	Kind      Kind      `json:"kind"`
	SessionID string    `json:"-"`
	At        time.Time `json:"at"`
}

// New создаёт событие с текущим временем.
func New(kind Kind, sid string) Event {
	return Event{Kind: kind, SessionID: sid, At: time.Now()}
}

type subscriber struct {
	sid string
	ch  chan Event
}

// Bus рассылает события подписчикам без блокировки издателя.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
}

// NewBus создаёт пустую шину.
func NewBus() *Bus {
	return &Bus{subs: make(map[*subscriber]struct{})}
}

// Publish отправляет событие всем подписчикам сессии. Переполненный подписчик пропускает событие.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for s := range b.subs {
		if s.sid != "" && s.sid != e.SessionID {
			continue
		}
		select {
		case s.ch <- e:
		default:
		}
	}
}

// Subscribe подписывается на события сессии; пустой sid означает все сессии.
// Возвращаемая функция отменяет подписку и закрывает канал.
func (b *Bus) Subscribe(sid string) (<-chan Event, func()) {
	s := &subscriber{sid: sid, ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[s]; ok {
				delete(b.subs, s)
				close(s.ch)
			}
		})
	}
	return s.ch, cancel
}

// Close закрывает каналы всех подписчиков; последующие публикации игнорируются.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
		delete(b.subs, s)
	}
}
