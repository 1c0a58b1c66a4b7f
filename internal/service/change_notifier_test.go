package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"massage-booking/internal/domain/entity"
	"massage-booking/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChannel = "bookings:changes:test"

func startedNotifier(t *testing.T, client *redis.Client) *ChangeNotifier {
	t.Helper()

	n := NewChangeNotifier(client, testChannel, testutil.Logger())
	require.NoError(t, n.Start(context.Background()))
	t.Cleanup(n.Stop)
	return n
}

func createdChange() entity.BookingChange {
	return entity.NewBookingChange(entity.ChangeCreated, time.Now())
}

func TestChangeNotifier_DeliversAcrossInstances(t *testing.T) {
	_, client := testutil.NewRedis(t)
	writer := startedNotifier(t, client)
	reader := startedNotifier(t, client)

	received := make(chan entity.BookingChange, 1)
	sub, err := reader.Subscribe(func(change entity.BookingChange) {
		select {
		case received <- change:
		default:
		}
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, writer.Publish(context.Background(), createdChange()))

	select {
	case change := <-received:
		assert.Equal(t, entity.ChangeCreated, change.Type)
		assert.Equal(t, "bookings", change.Table)
	case <-time.After(2 * time.Second):
		t.Fatal("change was not delivered")
	}
}

func TestChangeNotifier_NoCallbackAfterUnsubscribe(t *testing.T) {
	_, client := testutil.NewRedis(t)
	n := startedNotifier(t, client)
	ctx := context.Background()

	var calls atomic.Int32
	sub, err := n.Subscribe(func(entity.BookingChange) { calls.Add(1) })
	require.NoError(t, err)

	require.NoError(t, n.Publish(ctx, createdChange()))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	sub.Unsubscribe()
	seen := calls.Load()
	assert.Equal(t, 0, n.SubscriberCount())

	for i := 0; i < 5; i++ {
		require.NoError(t, n.Publish(ctx, createdChange()))
	}
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, seen, calls.Load())
}

func TestChangeNotifier_UnsubscribeWaitsForInFlightCallback(t *testing.T) {
	_, client := testutil.NewRedis(t)
	n := NewChangeNotifier(client, testChannel, testutil.Logger())

	entered := make(chan struct{})
	release := make(chan struct{})
	sub, err := n.Subscribe(func(entity.BookingChange) {
		close(entered)
		<-release
	})
	require.NoError(t, err)

	require.NoError(t, n.Publish(context.Background(), createdChange()))
	<-entered

	var returned atomic.Bool
	go func() {
		sub.Unsubscribe()
		returned.Store(true)
	}()

	assert.Never(t, returned.Load, 100*time.Millisecond, 10*time.Millisecond)
	close(release)
	assert.Eventually(t, returned.Load, time.Second, 10*time.Millisecond)

	// idempotent
	sub.Unsubscribe()
}

func TestChangeNotifier_CoalescesWhileBusy(t *testing.T) {
	_, client := testutil.NewRedis(t)
	n := NewChangeNotifier(client, testChannel, testutil.Logger())
	ctx := context.Background()

	var calls atomic.Int32
	entered := make(chan struct{}, 10)
	release := make(chan struct{})
	sub, err := n.Subscribe(func(entity.BookingChange) {
		calls.Add(1)
		entered <- struct{}{}
		<-release
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, n.Publish(ctx, createdChange()))
	<-entered

	for i := 0; i < 5; i++ {
		require.NoError(t, n.Publish(ctx, createdChange()))
	}
	close(release)

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return calls.Load() > 2 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestChangeNotifier_LocalDeliveryWhenRedisDown(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	n := startedNotifier(t, client)

	var calls atomic.Int32
	sub, err := n.Subscribe(func(entity.BookingChange) { calls.Add(1) })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	mr.Close()

	assert.Error(t, n.Publish(context.Background(), createdChange()))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestChangeNotifier_Stop(t *testing.T) {
	_, client := testutil.NewRedis(t)
	n := NewChangeNotifier(client, testChannel, testutil.Logger())
	require.NoError(t, n.Start(context.Background()))

	_, err := n.Subscribe(func(entity.BookingChange) {})
	require.NoError(t, err)

	n.Stop()
	n.Stop()

	assert.Equal(t, 0, n.SubscriberCount())

	_, err = n.Subscribe(func(entity.BookingChange) {})
	assert.ErrorIs(t, err, ErrNotifierStopped)
	assert.ErrorIs(t, n.Start(context.Background()), ErrNotifierStopped)
}

func TestChangeNotifier_SubscribeRacingStop(t *testing.T) {
	_, client := testutil.NewRedis(t)
	n := NewChangeNotifier(client, testChannel, testutil.Logger())
	require.NoError(t, n.Start(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := n.Subscribe(func(entity.BookingChange) {})
			if err != nil {
				assert.ErrorIs(t, err, ErrNotifierStopped)
				return
			}
			assert.NotNil(t, sub)
		}()
	}
	n.Stop()
	wg.Wait()

	assert.Equal(t, 0, n.SubscriberCount(), "no subscription may outlive Stop")
}

func TestChangeNotifier_SubscribeNilListener(t *testing.T) {
	_, client := testutil.NewRedis(t)
	n := NewChangeNotifier(client, testChannel, testutil.Logger())

	_, err := n.Subscribe(nil)
	assert.ErrorIs(t, err, ErrNilListener)
}
