package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCreateConsumerGroup_Idempotent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "dashboard:events", "g1"))
	// 第二次创建：BUSYGROUP 视为成功
	require.NoError(t, CreateConsumerGroup(ctx, client, "dashboard:events", "g1"))
}

func TestPublishAndReadFromStream(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "dashboard:events", "g1"))

	_, err := PublishJSONToStream(ctx, client, "dashboard:events", map[string]string{"company": "Acme"})
	require.NoError(t, err)
	_, err = PublishToStream(ctx, client, "dashboard:events", map[string]interface{}{
		"count":   3,
		"enabled": true,
	})
	require.NoError(t, err)

	msgs, err := ReadFromStream(ctx, client, "dashboard:events", "g1", "c1", 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &payload))
	assert.Equal(t, "Acme", payload["company"])
	assert.Equal(t, "3", msgs[1].Values["count"])
	assert.Equal(t, "true", msgs[1].Values["enabled"])

	require.NoError(t, AckMessage(ctx, client, "dashboard:events", "g1", msgs[0].ID))
}

func TestListPendingAndClaimMessages(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "dashboard:events", "g1"))
	id, err := PublishToStream(ctx, client, "dashboard:events", map[string]interface{}{"company": "Acme"})
	require.NoError(t, err)

	pending, err := ListPending(ctx, client, "dashboard:events", "g1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = ReadFromStream(ctx, client, "dashboard:events", "g1", "worker-1", 10, 10*time.Millisecond)
	require.NoError(t, err)

	pending, err = ListPending(ctx, client, "dashboard:events", "g1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, "worker-1", pending[0].Consumer)
	assert.Equal(t, int64(1), pending[0].Deliveries)

	msgs, err := ClaimMessages(ctx, client, "dashboard:events", "g1", "worker-2", 0, []string{id})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Acme", msgs[0].Values["company"])

	pending, err = ListPending(ctx, client, "dashboard:events", "g1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "worker-2", pending[0].Consumer)
	assert.Equal(t, int64(2), pending[0].Deliveries)

	msgs, err = ClaimMessages(ctx, client, "dashboard:events", "g1", "worker-2", 0, nil)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
