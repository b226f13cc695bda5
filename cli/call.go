package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/scene"
	"github.com/slighter12/modelweb-mcp-go/sceneio"
	"github.com/slighter12/modelweb-mcp-go/session"
	"github.com/slighter12/modelweb-mcp-go/tools"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Scene     string
	Params    string
	RequestID string
	Save      bool
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <function>",
		Short: "Dispatch one operation against a scene file",
		Long: `Dispatch one operation locally and print the response.

Example:
  modelweb call mcp_modelweb_modify_object --scene demo.json \
    --params '{"objectName":"Cube_1","position":[1,2,3]}' --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Scene, "scene", "", "scene document to load")
	cmd.Flags().StringVar(&opts.Params, "params", "{}", "operation parameters as JSON")
	cmd.Flags().StringVar(&opts.RequestID, "request-id", "", "request ID to echo (random when empty)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "write the scene back to --scene after a successful call")

	return cmd
}

func runCall(cmd *cobra.Command, opts *CallOptions, function string) error {
	var params map[string]any
	if err := json.Unmarshal([]byte(opts.Params), &params); err != nil {
		return WrapExitError(ExitCommandError, "invalid --params JSON", err)
	}
	if opts.Save && opts.Scene == "" {
		return NewExitError(ExitCommandError, "--save requires --scene")
	}

	sc := scene.New("")
	if opts.Scene != "" {
		loaded, err := sceneio.LoadFile(opts.Scene)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load scene", err)
		}
		sc = loaded
	}

	cfg := opts.Config
	sess := session.New(session.DefaultID, sc, session.Options{
		HistorySize:  cfg.History.MaxSize,
		EditDebounce: cfg.History.Debounce(),
	})

	requestID := opts.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	resp := tools.NewDefaultManager().Handle(cmd.Context(), sess, mcp.Request{
		Function:   function,
		Parameters: params,
		RequestID:  requestID,
	})

	if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
		return err
	}

	if resp.Status != mcp.StatusSuccess {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", resp.Error.Code, resp.Error.Message))
	}

	if opts.Save {
		sess.Lock()
		defer sess.Unlock()
		if err := sceneio.SaveFile(opts.Scene, sess.Scene()); err != nil {
			return WrapExitError(ExitCommandError, "failed to save scene", err)
		}
	}
	return nil
}
