// Package transport selects the channel that carries dispatch requests in
// and responses out. The variant is fixed when the adapter is built.
package transport

import (
	"context"
	"fmt"

	"github.com/slighter12/modelweb-mcp-go/config"
	"github.com/slighter12/modelweb-mcp-go/llm"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/transport/hosted"
	"github.com/slighter12/modelweb-mcp-go/transport/socket"
)

// Adapter is one outbound channel. Start is idempotent; Stop on a stopped
// adapter only warns.
type Adapter interface {
	Mode() string
	Start(ctx context.Context) error
	Stop() error
	Running() bool
	HandleMessage(ctx context.Context, data []byte) mcp.Response
}

var (
	_ Adapter = (*socket.Adapter)(nil)
	_ Adapter = (*hosted.Adapter)(nil)
)

// New builds the adapter named by cfg.Transport.Mode.
func New(cfg *config.Config, handler mcp.Handler) (Adapter, error) {
	switch cfg.Transport.Mode {
	case config.ModeSocket:
		return socket.New(socket.Options{
			URL:              cfg.Transport.SocketURL,
			HandshakeTimeout: cfg.Transport.HandshakeTimeout(),
		}, handler), nil
	case config.ModeHosted:
		client, err := llm.NewClient(llm.Options{
			URL:       cfg.Hosted.URL,
			Model:     cfg.Hosted.Model,
			APIKey:    cfg.Hosted.APIKey(),
			MaxTokens: cfg.Hosted.MaxTokens,
			Timeout:   cfg.Hosted.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("hosted transport (credential env %s): %w", cfg.Hosted.APIKeyEnv, err)
		}
		return hosted.New(client, handler, cfg.Hosted.MaxHistory), nil
	default:
		return nil, fmt.Errorf("unknown transport mode %q", cfg.Transport.Mode)
	}
}
