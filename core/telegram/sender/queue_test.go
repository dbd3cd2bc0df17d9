package sender

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func TestQueueRunsJobs(t *testing.T) {
	q := New(Options{Workers: 1})
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(context.Background(), "edit", func() error {
			calls.Add(1)
			return nil
		}))
	}
	q.Close()
	assert.EqualValues(t, 3, calls.Load())
	assert.Zero(t, q.Failures())
	assert.ErrorIs(t, q.Enqueue(context.Background(), "edit", func() error { return nil }), ErrQueueClosed)
}

func TestQueueRetriesTransientErrors(t *testing.T) {
	q := New(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	require.NoError(t, q.Enqueue(context.Background(), "edit", func() error {
		if calls.Add(1) < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		return nil
	}))
	q.Close()
	assert.EqualValues(t, 3, calls.Load())
	assert.Zero(t, q.Failures())
}

func TestQueueRetriesServerErrors(t *testing.T) {
	q := New(Options{Workers: 1, MaxRetries: 1, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	require.NoError(t, q.Enqueue(context.Background(), "edit", func() error {
		calls.Add(1)
		return tele.NewError(502, "Bad Gateway")
	}))
	q.Close()
	assert.EqualValues(t, 2, calls.Load())
	assert.EqualValues(t, 1, q.Failures())
}

func TestQueueGivesUpOnPermanentErrors(t *testing.T) {
	q := New(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	require.NoError(t, q.Enqueue(context.Background(), "edit", func() error {
		calls.Add(1)
		return errors.New("message is not modified")
	}))
	q.Close()
	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 1, q.Failures())
}

func TestQueueFull(t *testing.T) {
	q := New(Options{Workers: 1, QueueSize: 1})
	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, q.Enqueue(context.Background(), "block", func() error {
		close(started)
		<-block
		return nil
	}))
	<-started
	require.NoError(t, q.Enqueue(context.Background(), "buffered", func() error { return nil }))
	assert.ErrorIs(t, q.Enqueue(context.Background(), "overflow", func() error { return nil }), ErrQueueFull)
	close(block)
	q.Close()
}

func TestRedact(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AAbb-cc_dd/editMessageText": timeout`)
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/editMessageText": timeout`, Redact(err))
	assert.Empty(t, Redact(nil))
}
