package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/modelweb-mcp-go/config"
	"github.com/slighter12/modelweb-mcp-go/llm"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/transport/hosted"
	"github.com/slighter12/modelweb-mcp-go/transport/socket"
)

var nopHandler = mcp.HandlerFunc(func(_ context.Context, _ []byte) mcp.Response {
	return mcp.NewSuccess("r", nil)
})

func TestNew_Socket(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Transport.SocketURL = "ws://localhost:1/socket"

	a, err := New(cfg, nopHandler)
	require.NoError(t, err)
	assert.Equal(t, socket.Mode, a.Mode())
	assert.False(t, a.Running())
}

func TestNew_HostedRequiresCredential(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Transport.Mode = config.ModeHosted
	cfg.Hosted.APIKeyEnv = "MODELWEB_TEST_HOSTED_KEY"
	t.Setenv("MODELWEB_TEST_HOSTED_KEY", "")

	_, err := New(cfg, nopHandler)
	require.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "MODELWEB_TEST_HOSTED_KEY")
}

func TestNew_Hosted(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Transport.Mode = config.ModeHosted
	cfg.Hosted.APIKeyEnv = "MODELWEB_TEST_HOSTED_KEY"
	t.Setenv("MODELWEB_TEST_HOSTED_KEY", "sk-test")

	a, err := New(cfg, nopHandler)
	require.NoError(t, err)
	assert.Equal(t, hosted.Mode, a.Mode())
}

func TestNew_UnknownMode(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Transport.Mode = "pigeon"
	_, err := New(cfg, nopHandler)
	assert.Error(t, err)
}
