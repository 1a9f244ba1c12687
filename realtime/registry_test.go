package realtime

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSubscribeRequiresTable(t *testing.T) {
	reg := NewRegistry(NewChanFeed(), nil)
	_, err := reg.Subscribe("", "", EventAll, Handlers{})
	assert.Error(t, err)
}

func TestInsertFiresHandlersOnce(t *testing.T) {
	feed := NewChanFeed()
	reg := NewRegistry(feed, nil)

	var inserts, updates, changes atomic.Int32
	sub, err := reg.Subscribe("tasks", "", EventAll, Handlers{
		OnInsert: func(Event) { inserts.Add(1) },
		OnUpdate: func(Event) { updates.Add(1) },
		OnChange: func(Event) { changes.Add(1) },
	})
	require.NoError(t, err)
	defer sub.Close()

	feed.Publish(Event{
		Table:  "tasks",
		Type:   EventInsert,
		Record: json.RawMessage(`{"id":"t1"}`),
	})

	waitFor(t, func() bool { return changes.Load() == 1 }, "OnChange never fired")
	assert.Equal(t, int32(1), inserts.Load())
	assert.Equal(t, int32(0), updates.Load())
	assert.Equal(t, int32(1), changes.Load())
}

func TestMaskFiltersEventTypes(t *testing.T) {
	feed := NewChanFeed()
	reg := NewRegistry(feed, nil)

	var deletes, changes atomic.Int32
	sub, err := reg.Subscribe("tasks", "", EventDelete, Handlers{
		OnDelete: func(Event) { deletes.Add(1) },
		OnChange: func(Event) { changes.Add(1) },
	})
	require.NoError(t, err)
	defer sub.Close()

	feed.Publish(Event{Table: "tasks", Type: EventInsert})
	feed.Publish(Event{Table: "tasks", Type: EventDelete})

	waitFor(t, func() bool { return deletes.Load() == 1 }, "OnDelete never fired")
	// the masked-out insert must not have reached OnChange either
	assert.Equal(t, int32(1), changes.Load())
}

func TestOtherTableEventsNotDelivered(t *testing.T) {
	feed := NewChanFeed()
	reg := NewRegistry(feed, nil)

	var changes atomic.Int32
	sub, err := reg.Subscribe("tasks", "", EventAll, Handlers{
		OnChange: func(Event) { changes.Add(1) },
	})
	require.NoError(t, err)
	defer sub.Close()

	feed.Publish(Event{Table: "shifts", Type: EventInsert})
	feed.Publish(Event{Table: "tasks", Type: EventInsert})

	waitFor(t, func() bool { return changes.Load() == 1 }, "tasks event never arrived")
	assert.Equal(t, int32(1), changes.Load())
}

func TestSameScopeSharesOneChannel(t *testing.T) {
	feed := NewChanFeed()
	reg := NewRegistry(feed, nil)

	var first, second atomic.Int32
	subA, err := reg.Subscribe("shifts", "employeeId=eq.e1", EventAll, Handlers{
		OnChange: func(Event) { first.Add(1) },
	})
	require.NoError(t, err)
	subB, err := reg.Subscribe("shifts", "employeeId=eq.e1", EventAll, Handlers{
		OnChange: func(Event) { second.Add(1) },
	})
	require.NoError(t, err)

	assert.Equal(t, 1, reg.ChannelCount())

	feed.Publish(Event{Table: "shifts", Filter: "employeeId=eq.e1", Type: EventUpdate})
	waitFor(t, func() bool { return first.Load() == 1 && second.Load() == 1 }, "both subscribers should see the event")

	// first close keeps the shared channel alive
	subA.Close()
	assert.Equal(t, 1, reg.ChannelCount())

	feed.Publish(Event{Table: "shifts", Filter: "employeeId=eq.e1", Type: EventUpdate})
	waitFor(t, func() bool { return second.Load() == 2 }, "remaining subscriber should still receive events")
	assert.Equal(t, int32(1), first.Load())

	subB.Close()
	assert.Equal(t, 0, reg.ChannelCount())
}

func TestDistinctFiltersGetDistinctChannels(t *testing.T) {
	feed := NewChanFeed()
	reg := NewRegistry(feed, nil)

	subA, err := reg.Subscribe("shifts", "employeeId=eq.e1", EventAll, Handlers{})
	require.NoError(t, err)
	defer subA.Close()

	subB, err := reg.Subscribe("shifts", "employeeId=eq.e2", EventAll, Handlers{})
	require.NoError(t, err)
	defer subB.Close()

	assert.Equal(t, 2, reg.ChannelCount())
}

func TestConnectedReflectsFeedStatus(t *testing.T) {
	feed := NewChanFeed()
	reg := NewRegistry(feed, nil)

	sub, err := reg.Subscribe("tasks", "", EventAll, Handlers{})
	require.NoError(t, err)
	defer sub.Close()

	assert.True(t, sub.Connected())
}

func TestCloseIsIdempotent(t *testing.T) {
	feed := NewChanFeed()
	reg := NewRegistry(feed, nil)

	sub, err := reg.Subscribe("tasks", "", EventAll, Handlers{})
	require.NoError(t, err)

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, reg.ChannelCount())
}
