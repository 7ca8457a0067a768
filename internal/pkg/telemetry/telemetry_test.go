package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	res, err := newResource("chainhook-test")
	require.NoError(t, err)
	require.NotNil(t, res)

	var found bool
	for _, attr := range res.Attributes() {
		if string(attr.Key) == "service.name" {
			found = true
			assert.Equal(t, "chainhook-test", attr.Value.AsString())
		}
	}
	assert.True(t, found, "resource should carry the service name")
}

func TestInit(t *testing.T) {
	// The OTLP gRPC exporters dial lazily, so Init succeeds without a
	// collector listening; only the final flush would fail.
	shutdown, err := Init(context.Background(), "chainhook-test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NotNil(t, LoggerProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
