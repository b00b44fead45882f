package github

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterUpdateFromResponse(t *testing.T) {
	r := NewRateLimiter()

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "4200")
	resp.Header.Set(HeaderRateLimit, "5000")
	resp.Header.Set(HeaderRateReset, "1700000000")

	r.UpdateFromResponse(resp)

	assert.Equal(t, 4200, r.Remaining())
	assert.Equal(t, 5000, r.Limit())
	assert.Equal(t, time.Unix(1700000000, 0), r.ResetTime())
}

func TestRateLimiterIgnoresMalformedHeaders(t *testing.T) {
	r := NewRateLimiter()

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "not-a-number")
	r.UpdateFromResponse(resp)

	assert.Equal(t, GitHubRateLimit, r.Remaining())
}

func TestRateLimiterWaitWithQuota(t *testing.T) {
	r := NewRateLimiter()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, r.Wait(ctx))
}

func TestRateLimiterWaitRespectsCancellation(t *testing.T) {
	r := NewRateLimiter()
	// Drain the bucket so Wait has to block.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx))

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	assert.Error(t, r.Wait(cancelled))
}
