package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/scene"
	"github.com/slighter12/modelweb-mcp-go/sceneio"
	"github.com/slighter12/modelweb-mcp-go/session"
	"github.com/slighter12/modelweb-mcp-go/tools"
	"github.com/slighter12/modelweb-mcp-go/transport"
	mcphttp "github.com/slighter12/modelweb-mcp-go/transport/http"
	"github.com/slighter12/modelweb-mcp-go/transport/stdio"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Scene   string
	Watch   bool
	Stdio   bool
	Connect bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dispatcher over HTTP or stdio",
		Long: `Serve the dispatcher. By default requests are accepted over HTTP and
websocket on server.host:server.port; --stdio reads line-delimited requests
from stdin instead. The configured transport (socket or hosted) is built at
startup and connected with --connect or later through POST /transport/start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Scene, "scene", "", "scene document to mount in the default session")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "reload --scene when the file changes (clears history)")
	cmd.Flags().BoolVar(&opts.Stdio, "stdio", false, "serve line-delimited requests on stdin/stdout")
	cmd.Flags().BoolVar(&opts.Connect, "connect", false, "start the configured transport at boot")

	return cmd
}

func runServe(parent context.Context, opts *ServeOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	if opts.Watch && opts.Scene == "" {
		return NewExitError(ExitCommandError, "--watch requires --scene")
	}
	cfg := opts.Config

	sc := scene.New("")
	if opts.Scene != "" {
		loaded, err := sceneio.LoadFile(opts.Scene)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load scene", err)
		}
		sc = loaded
	}

	sessions := session.NewManager(session.Options{
		HistorySize:  cfg.History.MaxSize,
		EditDebounce: cfg.History.Debounce(),
	})
	def := sessions.CreateWithID(session.DefaultID, sc)
	toolManager := tools.NewDefaultManager()

	adapter, err := transport.New(cfg, toolManager.Handler(def))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build transport", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Connect {
		if err := adapter.Start(ctx); err != nil {
			logger.Warn("Transport did not start, continuing without it", "mode", adapter.Mode(), "error", err)
		}
	}
	defer func() {
		if adapter.Running() {
			_ = adapter.Stop()
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	if opts.Watch {
		watcher, err := newSceneWatcher(opts.Scene, def)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to watch scene", err)
		}
		g.Go(func() error { return watcher.run(gctx) })
	}

	if opts.Stdio {
		logger.Info("Starting dispatcher in stdio mode", "transport", adapter.Mode())
		server := stdio.NewStdioServer(mcp.HandlerFunc(adapter.HandleMessage))
		g.Go(func() error {
			defer stop()
			return server.Start(gctx)
		})
	} else {
		logger.Info("Starting dispatcher in HTTP mode", "port", cfg.Server.Port, "transport", adapter.Mode())
		server := mcphttp.NewServer(cfg, toolManager, sessions, adapter)
		g.Go(func() error { return server.Start(gctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		return err
	}
	return nil
}
