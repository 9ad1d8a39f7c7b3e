package async_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/jrsteele09/go-learning-portal/async"
	"github.com/stretchr/testify/require"
)

func TestState_Variants(t *testing.T) {
	idle := async.NewIdle[int]()
	require.True(t, idle.IsIdle())
	require.False(t, idle.Settled())

	ok := async.NewSuccess(42)
	v, found := ok.Value()
	require.True(t, found)
	require.Equal(t, 42, v)
	require.NoError(t, ok.Err())

	boom := errors.New("boom")
	failed := async.NewFailure[int](boom)
	_, found = failed.Value()
	require.False(t, found)
	require.ErrorIs(t, failed.Err(), boom)
	require.True(t, failed.Settled())
	require.Equal(t, "failure", failed.Status().String())
}

func TestOp_StartDiscardsPreviousValue(t *testing.T) {
	var op async.Op[string]
	t1 := op.Start()
	require.True(t, op.Resolve(t1, "first"))

	op.Start()
	s := op.Snapshot()
	require.True(t, s.IsLoading())
	_, found := s.Value()
	require.False(t, found)
}

func TestOp_StaleTicketIgnored(t *testing.T) {
	var op async.Op[string]
	older := op.Start()
	newer := op.Start()

	require.True(t, op.Resolve(newer, "newer"))
	require.False(t, op.Resolve(older, "older"))
	require.False(t, op.Reject(older, errors.New("late failure")))

	v, _ := op.Snapshot().Value()
	require.Equal(t, "newer", v)
}

func TestOp_ResetInvalidatesTickets(t *testing.T) {
	var op async.Op[int]
	tk := op.Start()
	op.Reset()

	require.False(t, op.Current(tk))
	require.False(t, op.Resolve(tk, 1))
	require.True(t, op.Snapshot().IsIdle())
}

func TestOp_ConcurrentSettleKeepsLatest(t *testing.T) {
	var op async.Op[int]
	tickets := make([]async.Ticket, 50)
	for i := range tickets {
		tickets[i] = op.Start()
	}

	var wg sync.WaitGroup
	for i := len(tickets) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			op.Resolve(tickets[i], i)
		}(i)
	}
	wg.Wait()

	v, found := op.Snapshot().Value()
	require.True(t, found)
	require.Equal(t, len(tickets)-1, v)
}
