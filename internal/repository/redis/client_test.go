package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/educhat-ai/educhat/internal/config"
)

func TestNewClient_UnreachableServer(t *testing.T) {
	cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	client, err := NewClient(context.Background(), cfg)

	assert.Nil(t, client)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
