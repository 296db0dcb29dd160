package authflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoordinatorBroadcastInOrder(t *testing.T) {
	t.Parallel()

	var rc refreshCoordinator

	wait, leader := rc.begin(0)
	require.True(t, leader)
	require.Nil(t, wait)
	require.True(t, rc.inFlight())

	var waiters []<-chan bool
	for range 3 {
		w, lead := rc.begin(0)
		require.False(t, lead)
		waiters = append(waiters, w)
	}
	require.Equal(t, 3, rc.pending())

	rc.settle(true)
	require.False(t, rc.inFlight())
	require.Zero(t, rc.pending())
	for _, w := range waiters {
		require.True(t, <-w)
	}
}

func TestCoordinatorFailureBroadcast(t *testing.T) {
	t.Parallel()

	var rc refreshCoordinator
	_, leader := rc.begin(0)
	require.True(t, leader)

	w, _ := rc.begin(0)
	rc.settle(false)
	require.False(t, <-w)

	// A request sent before the failed refresh learns the failure without
	// refreshing again.
	require.EqualValues(t, 1, rc.current())
	w, leader = rc.begin(0)
	require.False(t, leader)
	require.False(t, <-w)
	require.False(t, rc.inFlight())

	// One sent afterwards leads a new refresh.
	_, leader = rc.begin(rc.current())
	require.True(t, leader)
}

func TestCoordinatorStaleRequestSkipsRefresh(t *testing.T) {
	t.Parallel()

	var rc refreshCoordinator
	seen := rc.current()

	_, leader := rc.begin(seen)
	require.True(t, leader)
	rc.settle(true)

	// A request sent before that refresh is told to replay straight away.
	w, leader := rc.begin(seen)
	require.False(t, leader)
	require.True(t, <-w)
	require.False(t, rc.inFlight())

	// One sent afterwards leads a new refresh.
	_, leader = rc.begin(rc.current())
	require.True(t, leader)
}
