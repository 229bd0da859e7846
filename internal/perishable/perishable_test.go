package perishable_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tempest-exporter/internal/perishable"
)

func withFakeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	fake := clockwork.NewFakeClock()
	perishable.SetClock(fake)
	t.Cleanup(func() { perishable.SetClock(nil) })
	return fake
}

func TestValue_StartsStale(t *testing.T) {
	withFakeClock(t)

	v := perishable.New(42)
	_, ok := v.Fresh()
	assert.False(t, ok, "value must be stale until the first Freshen")
}

func TestValue_FreshenThenExpire(t *testing.T) {
	fake := withFakeClock(t)

	v := perishable.New(0)
	payload := v.Freshen(50 * time.Millisecond)
	*payload = 7

	got, ok := v.Fresh()
	require.True(t, ok)
	assert.Equal(t, 7, *got)

	fake.Advance(49 * time.Millisecond)
	_, ok = v.Fresh()
	assert.True(t, ok, "still inside the validity window")

	fake.Advance(1 * time.Millisecond)
	_, ok = v.Fresh()
	assert.False(t, ok, "expiry instant itself is stale")
}

func TestValue_FreshenResetsFromNow(t *testing.T) {
	fake := withFakeClock(t)

	v := perishable.New("payload")
	v.Freshen(time.Second)
	fake.Advance(900 * time.Millisecond)
	v.Freshen(time.Second)
	fake.Advance(900 * time.Millisecond)

	_, ok := v.Fresh()
	assert.True(t, ok, "expiry counts from the most recent Freshen")
}

func TestValue_PayloadSurvivesExpiry(t *testing.T) {
	fake := withFakeClock(t)

	v := perishable.New(11)
	v.Freshen(time.Second)
	fake.Advance(2 * time.Second)

	_, ok := v.Fresh()
	require.False(t, ok)
	assert.Equal(t, 11, *v.Peek(), "expiry hides the payload, it does not clear it")

	got, ok := v.Fresh()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMap(t *testing.T) {
	fake := withFakeClock(t)

	v := perishable.New(21)
	v.Freshen(time.Second)

	doubled, ok := perishable.Map(v, func(n *int) int { return *n * 2 })
	require.True(t, ok)
	assert.Equal(t, 42, doubled)

	fake.Advance(2 * time.Second)
	doubled, ok = perishable.Map(v, func(n *int) int { return *n * 2 })
	assert.False(t, ok)
	assert.Zero(t, doubled)
}

// One writer freshening while many readers poll; the race detector verifies
// the expiry exchange is tear-free.
func TestValue_ConcurrentFreshenAndFresh(t *testing.T) {
	v := perishable.New(1)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v.Freshen(time.Millisecond)
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					v.Fresh()
				}
			}
		}()
	}

	wg.Wait()
}
