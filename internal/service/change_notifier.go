package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"massage-booking/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotifierStopped = errors.New("change notifier is stopped")
	ErrNilListener     = errors.New("listener must not be nil")
)

// ChangeListener is invoked once per delivered change signal
type ChangeListener func(change entity.BookingChange)

// ChangeNotifier fans booking changes out to in-process listeners.
//
// All instances of the service share one Redis Pub/Sub channel, so a write handled by one
// process reaches listeners in every other process. Each notifier holds a single Redis
// subscription and dispatches to its local subscribers.
//
// Delivery per listener is coalescing: while a signal is pending, further signals are
// absorbed into it. A listener therefore runs at least once after every change, never
// concurrently with itself, and never blocks the publisher.
type ChangeNotifier struct {
	redisClient *redis.Client
	channel     string
	log         *logrus.Logger

	mu      sync.RWMutex
	subs    map[uint64]*Subscription
	nextID  uint64
	stopped bool // guarded by mu so Subscribe cannot register after Stop drained subs

	pubsub   *redis.PubSub
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
}

func NewChangeNotifier(redisClient *redis.Client, channel string, log *logrus.Logger) *ChangeNotifier {
	return &ChangeNotifier{
		redisClient: redisClient,
		channel:     channel,
		log:         log,
		subs:        make(map[uint64]*Subscription),
		stopChan:    make(chan struct{}),
	}
}

// Start subscribes to the Redis channel and begins dispatching.
// It returns once the subscription is confirmed by the server.
func (n *ChangeNotifier) Start(ctx context.Context) error {
	if n.isStopped() {
		return ErrNotifierStopped
	}
	if !n.started.CompareAndSwap(false, true) {
		return nil
	}

	pubsub := n.redisClient.Subscribe(ctx, n.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		n.started.Store(false)
		return fmt.Errorf("subscribe %s: %w", n.channel, err)
	}
	n.pubsub = pubsub

	n.wg.Add(1)
	go n.receiveLoop(pubsub.Channel())

	n.log.WithField("channel", n.channel).Info("Change notifier started")
	return nil
}

// Stop closes the Redis subscription and unsubscribes every listener.
// Safe to call multiple times.
func (n *ChangeNotifier) Stop() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	n.mu.Unlock()

	close(n.stopChan)
	if n.pubsub != nil {
		if err := n.pubsub.Close(); err != nil {
			n.log.Warnf("Failed to close pubsub: %+v", err)
		}
	}
	n.wg.Wait()

	n.mu.RLock()
	subs := make([]*Subscription, 0, len(n.subs))
	for _, s := range n.subs {
		subs = append(subs, s)
	}
	n.mu.RUnlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	n.log.Info("Change notifier stopped")
}

// Publish announces a committed change to every process.
// When Redis is unreachable the change is still delivered to local listeners and the
// error is returned so the caller can log it.
func (n *ChangeNotifier) Publish(ctx context.Context, change entity.BookingChange) error {
	if !n.started.Load() {
		n.dispatch(change)
	}

	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}

	if err := n.redisClient.Publish(ctx, n.channel, payload).Err(); err != nil {
		if n.started.Load() {
			n.dispatch(change)
		}
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe registers listener until the returned subscription is released
func (n *ChangeNotifier) Subscribe(listener ChangeListener) (*Subscription, error) {
	if listener == nil {
		return nil, ErrNilListener
	}
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return nil, ErrNotifierStopped
	}
	n.nextID++
	sub := &Subscription{
		id:       n.nextID,
		notifier: n,
		listener: listener,
		pending:  make(chan entity.BookingChange, 1),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	n.subs[sub.id] = sub
	n.mu.Unlock()

	go sub.run()
	return sub, nil
}

func (n *ChangeNotifier) isStopped() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stopped
}

// SubscriberCount returns the number of live local subscriptions
func (n *ChangeNotifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

func (n *ChangeNotifier) receiveLoop(messages <-chan *redis.Message) {
	defer n.wg.Done()

	for {
		select {
		case <-n.stopChan:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var change entity.BookingChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				// the payload is only a hint; listeners re-query anyway
				n.log.Warnf("Failed to decode change payload %q: %+v", msg.Payload, err)
				change = entity.NewBookingChange(entity.ChangeUpdated, time.Now())
			}
			n.dispatch(change)
		}
	}
}

func (n *ChangeNotifier) dispatch(change entity.BookingChange) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, s := range n.subs {
		s.signal(change)
	}
}

func (n *ChangeNotifier) remove(id uint64) {
	n.mu.Lock()
	delete(n.subs, id)
	n.mu.Unlock()
}

// Subscription is a live listener registration. Release it with Unsubscribe.
type Subscription struct {
	id       uint64
	notifier *ChangeNotifier
	listener ChangeListener

	pending  chan entity.BookingChange
	done     chan struct{}
	finished chan struct{}
	once     sync.Once
}

// Unsubscribe stops delivery. It returns after any in-flight callback has completed, and no
// callback starts afterwards. Idempotent. Must not be called from inside the listener.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.notifier.remove(s.id)
		close(s.done)
	})
	<-s.finished
}

func (s *Subscription) signal(change entity.BookingChange) {
	select {
	case s.pending <- change:
	default:
		// a signal is already pending; it will cover this change too
	}
}

func (s *Subscription) run() {
	defer close(s.finished)

	for {
		select {
		case <-s.done:
			return
		case change := <-s.pending:
			select {
			case <-s.done:
				return
			default:
			}
			s.listener(change)
		}
	}
}
