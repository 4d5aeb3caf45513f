package phaselight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_Broadcast(t *testing.T) {
	light := newFastLight(t)
	first, err := light.Subscribe()
	require.NoError(t, err)
	second, err := light.Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 2, light.Subscribers())

	simulate(t, light)

	// a waiter consuming from the single-notify queue does not steal broadcasts
	require.NoError(t, light.WaitForGreenContext(waitCtx(t)))

	ctx := waitCtx(t)
	for i := 1; i <= 4; i++ {
		a, err := first.Next(ctx)
		require.NoError(t, err)
		b, err := second.Next(ctx)
		require.NoError(t, err)

		assert.Equal(t, a.ID, b.ID)
		assert.EqualValues(t, i, a.Sequence)
		if i%2 == 1 {
			assert.Equal(t, "red->green", a.Transition())
		} else {
			assert.Equal(t, "green->red", a.Transition())
		}
	}
}

func TestSubscription_Unsubscribe(t *testing.T) {
	light := newFastLight(t)
	sub, err := light.Subscribe()
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Zero(t, light.Subscribers())

	_, err = sub.Next(waitCtx(t))
	assert.ErrorIs(t, err, ErrLightClosed)
	require.NoError(t, light.Close())
}

func TestSubscription_LightClosed(t *testing.T) {
	light := newFastLight(t)
	sub, err := light.Subscribe()
	require.NoError(t, err)
	simulate(t, light)

	ctx := waitCtx(t)
	_, err = sub.Next(ctx)
	require.NoError(t, err)

	require.NoError(t, light.Close())
	<-light.Done()
	assert.Zero(t, light.Subscribers())

	for {
		_, err = sub.Next(ctx)
		if err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, ErrLightClosed)
	assert.Zero(t, sub.Pending())

	_, err = light.Subscribe()
	assert.ErrorIs(t, err, ErrLightClosed)
}
