package redis

import (
	"context"
	"testing"

	"github.com/lyzr/line-relay/common/logger"
	"github.com/stretchr/testify/assert"
)

func TestConnect_Unreachable(t *testing.T) {
	client, err := Connect(context.Background(), Options{Addr: "127.0.0.1:1"}, logger.Discard())

	assert.Error(t, err)
	assert.Nil(t, client)
}
