package connectivity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err   error
	calls int
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return f.err
}

func TestStatus_Online(t *testing.T) {
	assert.True(t, Status{IsConnected: true, IsInternetReachable: true}.Online())
	assert.False(t, Status{IsConnected: true}.Online())
	assert.False(t, Status{IsInternetReachable: true}.Online())
	assert.False(t, Status{}.Online())
}

func TestProber_FetchCurrent(t *testing.T) {
	pinger := &fakePinger{}
	p := NewProber(pinger, time.Second, logging.Discard())
	ctx := context.Background()

	p.linkUp = func() bool { return false }
	st, err := p.FetchCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, Status{}, st)
	assert.Equal(t, 0, pinger.calls, "no ping without a link")

	p.linkUp = func() bool { return true }
	st, err = p.FetchCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, Status{IsConnected: true, IsInternetReachable: true}, st)

	pinger.err = errors.New("unreachable")
	st, err = p.FetchCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, Status{IsConnected: true}, st)
}

func TestProber_NotifiesOnlyOnChange(t *testing.T) {
	pinger := &fakePinger{}
	p := NewProber(pinger, time.Second, logging.Discard())
	p.linkUp = func() bool { return true }
	ctx := context.Background()

	var got []Status
	unsubscribe := p.Subscribe(func(_ context.Context, st Status) { got = append(got, st) })

	p.probe(ctx)
	p.probe(ctx)
	pinger.err = errors.New("down")
	p.probe(ctx)
	p.probe(ctx)

	assert.Equal(t, []Status{
		{IsConnected: true, IsInternetReachable: true},
		{IsConnected: true},
	}, got)

	unsubscribe()
	pinger.err = nil
	p.probe(ctx)
	assert.Len(t, got, 2, "unsubscribed handler is not called")
}

func TestProber_RunStopsOnCancel(t *testing.T) {
	pinger := &fakePinger{}
	p := NewProber(pinger, 5*time.Millisecond, logging.Discard())
	p.linkUp = func() bool { return true }

	notified := make(chan Status, 1)
	p.Subscribe(func(_ context.Context, st Status) {
		select {
		case notified <- st:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case st := <-notified:
		assert.True(t, st.Online())
	case <-time.After(time.Second):
		t.Fatal("prober did not report status")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
