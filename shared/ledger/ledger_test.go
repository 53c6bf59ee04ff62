package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	var l Ledger = Nop{}

	for i := 0; i < 3; i++ {
		ok, err := l.Claim(context.Background(), "boost_app_ref")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.NoError(t, l.Release(context.Background(), "boost_app_ref"))
}

func TestRedis_Key(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	r := NewRedisWithClient(client, "paystack:ref:", 72*time.Hour)
	assert.Equal(t, "paystack:ref:boost_1_abc", r.key("boost_1_abc"))
}

func TestRedis_ClaimUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := NewRedisWithClient(client, "paystack:ref:", time.Hour)

	ok, err := r.Claim(context.Background(), "boost_1_abc")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "failed to claim reference boost_1_abc")

	assert.Error(t, r.Release(context.Background(), "boost_1_abc"))
}
