package redis_client

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	server := miniredis.RunT(t)

	t.Setenv("PIDBOARD_REDIS_ADDRESS", server.Addr())
	t.Setenv("PIDBOARD_REDIS_DATABASE", "0")

	assert.True(t, Configured())
	require.NoError(t, Connect())
	defer Close()

	require.NotNil(t, Client)
	require.NotNil(t, QueueConnection)
	assert.NoError(t, Client.Set(context.Background(), "pidboard:test", "ok", 0).Err())
	server.CheckGet(t, "pidboard:test", "ok")
}

func TestConnectInvalidDatabase(t *testing.T) {
	t.Setenv("PIDBOARD_REDIS_DATABASE", "zero")

	assert.Error(t, Connect())
}

func TestNotConfigured(t *testing.T) {
	t.Setenv("PIDBOARD_REDIS_ADDRESS", "")

	assert.False(t, Configured())
}
