package redis

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitCounterKey(t *testing.T) {
	c := &limitCounter{prefix: "finlet:ratelimit:sign-in"}
	window := time.Unix(1700000000, 0)

	assert.Equal(t, "finlet:ratelimit:sign-in:1700000000:10.0.0.1", c.key("10.0.0.1", window))
	assert.NotEqual(t, c.key("10.0.0.1", window), c.key("10.0.0.1", window.Add(time.Minute)))
}

func TestLimitCounterKeepsPrefix(t *testing.T) {
	repo := NewWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}))
	defer repo.Close()

	c, ok := repo.LimitCounter("finlet:ratelimit:sign-in").(*limitCounter)
	require.True(t, ok)

	assert.Equal(t, "finlet:ratelimit:sign-in:1700000000:10.0.0.1", c.key("10.0.0.1", time.Unix(1700000000, 0)))
}

func TestLimitCounterConfig(t *testing.T) {
	c := &limitCounter{}
	c.Config(10, 5*time.Minute)

	assert.Equal(t, 5*time.Minute, c.windowLength)
}

func TestToInt(t *testing.T) {
	n, err := toInt(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = toInt("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = toInt("x")
	assert.Error(t, err)

	_, err = toInt(3.5)
	assert.Error(t, err)
}
