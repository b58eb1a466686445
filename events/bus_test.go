package events_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/jrsteele09/resume-matcher-client/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers only matching events in order", func(t *testing.T) {
		bus := events.NewBus(zerolog.Nop())
		var got []string

		bus.Subscribe("a", events.Login, func(_ context.Context, ev events.Event) {
			got = append(got, "a:"+ev.User.Email())
		})
		bus.Subscribe("b", events.Login, func(_ context.Context, ev events.Event) {
			got = append(got, "b:"+ev.User.Email())
		})
		bus.Subscribe("c", events.Logout, func(_ context.Context, _ events.Event) {
			got = append(got, "c")
		})

		bus.Publish(ctx, events.Event{Name: events.Login, User: authapi.User{"email": "a@x.com"}})
		require.Equal(t, []string{"a:a@x.com", "b:a@x.com"}, got)

		bus.Publish(ctx, events.Event{Name: events.Logout})
		require.Equal(t, []string{"a:a@x.com", "b:a@x.com", "c"}, got)
	})

	t.Run("same id registers once", func(t *testing.T) {
		bus := events.NewBus(zerolog.Nop())
		calls := 0
		listener := func(context.Context, events.Event) { calls++ }

		bus.Subscribe("nav", events.Logout, listener)
		bus.Subscribe("nav", events.Logout, listener)

		bus.Publish(ctx, events.Event{Name: events.Logout})
		require.Equal(t, 1, calls)
	})

	t.Run("duplicate unsubscribe leaves original in place", func(t *testing.T) {
		bus := events.NewBus(zerolog.Nop())
		calls := 0
		listener := func(context.Context, events.Event) { calls++ }

		unsubscribe := bus.Subscribe("nav", events.Logout, listener)
		duplicate := bus.Subscribe("nav", events.Logout, listener)

		duplicate()
		require.True(t, bus.Subscribed("nav"))
		bus.Publish(ctx, events.Event{Name: events.Logout})
		require.Equal(t, 1, calls)

		unsubscribe()
		require.False(t, bus.Subscribed("nav"))
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		bus := events.NewBus(zerolog.Nop())
		calls := 0
		unsubscribe := bus.Subscribe("x", events.Logout, func(context.Context, events.Event) { calls++ })
		require.True(t, bus.Subscribed("x"))

		unsubscribe()
		unsubscribe()
		require.False(t, bus.Subscribed("x"))

		bus.Publish(ctx, events.Event{Name: events.Logout})
		require.Zero(t, calls)
	})

	t.Run("panicking listener does not stop delivery", func(t *testing.T) {
		bus := events.NewBus(zerolog.Nop())
		delivered := false
		bus.Subscribe("boom", events.Login, func(context.Context, events.Event) { panic("boom") })
		bus.Subscribe("ok", events.Login, func(context.Context, events.Event) { delivered = true })

		require.NotPanics(t, func() {
			bus.Publish(ctx, events.Event{Name: events.Login})
		})
		require.True(t, delivered)
	})
}
