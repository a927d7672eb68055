package storefront

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, ttl time.Duration) (*Registry, *Metrics) {
	t.Helper()
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewRegistry(func() *Controller { return newTestController(t) }, ttl, metrics, testLogger()), metrics
}

func Test_Registry_Session(t *testing.T) {
	// given
	reg, metrics := newTestRegistry(t, time.Minute)
	// when
	first, created := reg.Session("")
	again, createdAgain := reg.Session(first.ID)
	unknown, createdUnknown := reg.Session("not-a-session")
	// then
	assert.True(t, created)
	assert.False(t, createdAgain)
	assert.Same(t, first, again)
	assert.True(t, createdUnknown)
	assert.NotEqual(t, "not-a-session", unknown.ID)
	assert.Equal(t, 2, reg.Len())
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SessionsActive), 0)
}

func Test_Registry_SessionsAreIsolated(t *testing.T) {
	reg, _ := newTestRegistry(t, time.Minute)
	a, _ := reg.Session("")
	b, _ := reg.Session("")

	require.NoError(t, a.Do(func(c *Controller) error {
		_, err := c.Handle(context.Background(), Event{Action: ActionAdd, ProductID: 1})
		return err
	}))

	_ = b.Do(func(c *Controller) error {
		assert.True(t, c.Cart().IsEmpty())
		return nil
	})
}

func Test_Registry_Sweep(t *testing.T) {
	// given
	reg, metrics := newTestRegistry(t, time.Minute)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return start }
	stale, _ := reg.Session("")
	reg.now = func() time.Time { return start.Add(50 * time.Second) }
	fresh, _ := reg.Session("")
	// when
	dropped := reg.Sweep(start.Add(90 * time.Second))
	// then
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, reg.Len())
	_, created := reg.Session(fresh.ID)
	assert.False(t, created)
	_, created = reg.Session(stale.ID)
	assert.True(t, created)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SessionsEvicted), 0)
}

func Test_Registry_BusySessionDoesNotBlockOthers(t *testing.T) {
	// given
	reg, _ := newTestRegistry(t, time.Minute)
	busy, _ := reg.Session("")
	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = busy.Do(func(*Controller) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered
	defer close(release)

	// when
	swept := make(chan int, 1)
	go func() { swept <- reg.Sweep(time.Now()) }()
	created := make(chan bool, 1)
	go func() {
		_, ok := reg.Session("")
		created <- ok
	}()

	// then
	select {
	case dropped := <-swept:
		assert.Zero(t, dropped)
	case <-time.After(2 * time.Second):
		t.Fatal("sweep waited on a session that is handling an event")
	}
	select {
	case ok := <-created:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("new session lookup waited on a session that is handling an event")
	}
	assert.Equal(t, 2, reg.Len())
}

func Test_Registry_RunStopsOnCancel(t *testing.T) {
	reg, _ := newTestRegistry(t, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- reg.Run(ctx, 10*time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func Test_Session_DoSerializesEvents(t *testing.T) {
	// given
	reg, _ := newTestRegistry(t, time.Minute)
	s, _ := reg.Session("")
	var wg sync.WaitGroup
	// when
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(c *Controller) error {
				_, err := c.Handle(context.Background(), Event{Action: ActionAdd, ProductID: 0})
				return err
			})
		}()
	}
	wg.Wait()
	// then
	_ = s.Do(func(c *Controller) error {
		assert.Equal(t, 50, c.Cart().QuantityOf(0))
		card, _ := c.Surface().Card(0)
		assert.Equal(t, 50, card.Quantity)
		return nil
	})
}

func Test_Metrics_Observe(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Observe(ActionAdd, nil)
	m.Observe(ActionAdd, nil)
	m.Observe(ActionIncrement, assert.AnError)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Actions.WithLabelValues("add", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Actions.WithLabelValues("increment", "error")), 0)
}
