package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarin-claude-code/stocks/pkg/config"
	"github.com/yarin-claude-code/stocks/pkg/logger"
)

func TestServerStartAndShutdown(t *testing.T) {
	srv := New(&config.Config{Port: "0", Env: "development"}, logger.Nop(), http.NotFoundHandler())
	assert.Equal(t, 15*time.Second, srv.httpServer.ReadTimeout)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
