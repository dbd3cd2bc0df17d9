package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(errors.New("bad request")))
	assert.False(t, ShouldRetry(context.Canceled))
	assert.True(t, ShouldRetry(dial))
	assert.True(t, ShouldRetry(timeoutErr{}))
	assert.True(t, ShouldRetry(&url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}))
	assert.False(t, ShouldRetry(&url.Error{Op: "Post", URL: "https://api.telegram.org", Err: errors.New("eof")}))
	assert.False(t, ShouldRetry(&net.OpError{Op: "read", Net: "tcp", Err: errors.New("reset")}))
}

func TestShouldRetryAPI(t *testing.T) {
	assert.True(t, ShouldRetryAPI(tele.NewError(502, "Bad Gateway")))
	assert.False(t, ShouldRetryAPI(tele.NewError(400, "Bad Request: message is not modified")))
	assert.True(t, ShouldRetryAPI(fmt.Errorf("edit: %w", tele.FloodError{RetryAfter: 3})))
	assert.True(t, ShouldRetryAPI(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.False(t, ShouldRetryAPI(nil))
}

func TestRetryAfter(t *testing.T) {
	d, ok := RetryAfter(tele.FloodError{RetryAfter: 3})
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	_, ok = RetryAfter(errors.New("nope"))
	assert.False(t, ok)
}
