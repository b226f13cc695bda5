// Package hosted resolves requests locally and asks a hosted chat model for
// commentary on each one.
package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/slighter12/modelweb-mcp-go/llm"
	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/mcp"
)

const (
	Mode = "hosted"

	DefaultMaxHistory = 10
	NoInsights        = "No AI insights available"
)

// Chatter is the part of llm.Client the adapter needs.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message) (string, bool, error)
}

// Adapter answers every request from the local dispatcher and, while started
// and the hosted endpoint replies, attaches the reply as aiInsights.
type Adapter struct {
	handler    mcp.Handler
	chat       Chatter
	maxHistory int

	mu      sync.Mutex
	history []llm.Message
	running atomic.Bool
}

// New returns an unstarted adapter. maxHistory <= 0 selects the default.
func New(chat Chatter, handler mcp.Handler, maxHistory int) *Adapter {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Adapter{
		handler:    handler,
		chat:       chat,
		maxHistory: maxHistory,
	}
}

func (a *Adapter) Mode() string { return Mode }

func (a *Adapter) Running() bool { return a.running.Load() }

// Start marks the adapter live. There is no connection to open.
func (a *Adapter) Start(context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		logger.Warn("Hosted transport is already running")
		return nil
	}
	logger.Info("Hosted transport started")
	return nil
}

// Stop clears the running flag.
func (a *Adapter) Stop() error {
	if !a.running.CompareAndSwap(true, false) {
		logger.Warn("Hosted transport is not running")
		return nil
	}
	logger.Info("Hosted transport stopped")
	return nil
}

// History returns a copy of the rolling conversation.
func (a *Adapter) History() []llm.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]llm.Message(nil), a.history...)
}

// HandleMessage dispatches locally first. The hosted endpoint is consulted
// only while the adapter is running, and a hosted failure leaves the local
// response untouched.
func (a *Adapter) HandleMessage(ctx context.Context, data []byte) mcp.Response {
	local := a.handler.ServeMCP(ctx, data)
	if !a.Running() {
		return local
	}

	compact := new(bytes.Buffer)
	if err := json.Compact(compact, data); err != nil {
		return local
	}
	pretty := new(bytes.Buffer)
	_ = json.Indent(pretty, compact.Bytes(), "", "  ")

	prompt := llm.Message{
		Role:    "user",
		Content: "Execute the following MCP command in the 3D editor:\n```json\n" + pretty.String() + "\n```",
	}
	messages := append(a.History(), prompt)

	reply, ok, err := a.chat.Chat(ctx, messages)
	if err != nil {
		logger.WarnContext(ctx, "Hosted call failed, returning local result", "request_id", local.RequestID, "error", err)
		return local
	}

	if !ok {
		local.AIInsights = NoInsights
		return local
	}

	a.remember(
		llm.Message{Role: "user", Content: "Execute MCP command: " + compact.String()},
		llm.Message{Role: "assistant", Content: reply},
	)
	local.AIInsights = reply
	return local
}

func (a *Adapter) remember(turns ...llm.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, turns...)
	if over := len(a.history) - a.maxHistory; over > 0 {
		a.history = append([]llm.Message(nil), a.history[over:]...)
	}
}
