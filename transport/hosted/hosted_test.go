package hosted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/modelweb-mcp-go/llm"
	"github.com/slighter12/modelweb-mcp-go/mcp"
)

type fakeChat struct {
	mu    sync.Mutex
	calls [][]llm.Message
	reply string
	ok    bool
	err   error
}

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]llm.Message(nil), messages...))
	return f.reply, f.ok, f.err
}

func localHandler() mcp.Handler {
	return mcp.HandlerFunc(func(_ context.Context, data []byte) mcp.Response {
		req, errResp := mcp.ParseRequest(data)
		if errResp != nil {
			return *errResp
		}
		return mcp.NewSuccess(req.RequestID, map[string]any{"ok": true})
	})
}

func newStarted(t *testing.T, chat Chatter, maxHistory int) *Adapter {
	t.Helper()
	a := New(chat, localHandler(), maxHistory)
	require.NoError(t, a.Start(context.Background()))
	return a
}

const request = `{"function":"mcp_modelweb_undo","parameters":{},"requestId":"r9"}`

func TestHandleMessage_MergesInsights(t *testing.T) {
	chat := &fakeChat{reply: "Undid the last move.", ok: true}
	a := newStarted(t, chat, 0)

	resp := a.HandleMessage(context.Background(), []byte(request))
	assert.Equal(t, "r9", resp.RequestID)
	assert.Equal(t, mcp.StatusSuccess, resp.Status)
	assert.Equal(t, "Undid the last move.", resp.AIInsights)

	require.Len(t, chat.calls, 1)
	sent := chat.calls[0]
	require.Len(t, sent, 1)
	assert.Equal(t, "user", sent[0].Role)
	assert.Contains(t, sent[0].Content, "```json\n{\n  \"function\": \"mcp_modelweb_undo\"")

	hist := a.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "Execute MCP command: "+request, hist[0].Content)
	assert.Equal(t, llm.Message{Role: "assistant", Content: "Undid the last move."}, hist[1])
}

func TestHandleMessage_HistoryIsCapped(t *testing.T) {
	chat := &fakeChat{reply: "ok", ok: true}
	a := newStarted(t, chat, 10)

	for i := 0; i < 8; i++ {
		a.HandleMessage(context.Background(), []byte(fmt.Sprintf(`{"function":"f","requestId":"r%d"}`, i)))
	}
	hist := a.History()
	require.Len(t, hist, 10)
	assert.Equal(t, `Execute MCP command: {"function":"f","requestId":"r3"}`, hist[0].Content)

	// The next call carries the capped history plus the new prompt.
	a.HandleMessage(context.Background(), []byte(request))
	assert.Len(t, chat.calls[len(chat.calls)-1], 11)
}

func TestHandleMessage_NoChoices(t *testing.T) {
	chat := &fakeChat{ok: false}
	a := newStarted(t, chat, 0)

	resp := a.HandleMessage(context.Background(), []byte(request))
	assert.Equal(t, NoInsights, resp.AIInsights)
	assert.Empty(t, a.History())
}

func TestHandleMessage_FallsBackOnFailure(t *testing.T) {
	chat := &fakeChat{err: errors.New("connection refused")}
	a := newStarted(t, chat, 0)

	resp := a.HandleMessage(context.Background(), []byte(request))
	assert.Equal(t, mcp.StatusSuccess, resp.Status)
	assert.Empty(t, resp.AIInsights)
	assert.Empty(t, a.History())
}

func TestHandleMessage_MalformedSkipsHosted(t *testing.T) {
	chat := &fakeChat{reply: "ok", ok: true}
	a := newStarted(t, chat, 0)

	resp := a.HandleMessage(context.Background(), []byte(`{oops`))
	assert.Equal(t, mcp.CodeInvalidRequest, resp.Error.Code)
	assert.Empty(t, chat.calls)
}

func TestStartStop(t *testing.T) {
	a := New(&fakeChat{}, localHandler(), 0)
	assert.Equal(t, Mode, a.Mode())
	require.NoError(t, a.Stop())
	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, a.Start(context.Background()))
	assert.True(t, a.Running())
	require.NoError(t, a.Stop())
	assert.False(t, a.Running())
}

func TestHandleMessage_LocalOnlyUnlessRunning(t *testing.T) {
	chat := &fakeChat{reply: "should not appear", ok: true}
	a := New(chat, localHandler(), 0)

	resp := a.HandleMessage(context.Background(), []byte(request))
	assert.Equal(t, mcp.StatusSuccess, resp.Status)
	assert.Empty(t, resp.AIInsights)
	assert.Empty(t, chat.calls)

	require.NoError(t, a.Start(context.Background()))
	assert.Equal(t, "should not appear", a.HandleMessage(context.Background(), []byte(request)).AIInsights)
	require.Len(t, chat.calls, 1)

	require.NoError(t, a.Stop())
	resp = a.HandleMessage(context.Background(), []byte(request))
	assert.Empty(t, resp.AIInsights)
	assert.Len(t, chat.calls, 1)
	assert.Len(t, a.History(), 2)
}

func TestHandleMessage_AgainstChatEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		var body struct {
			Messages []llm.Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":"seen %d"}}]}`, len(body.Messages))
	}))
	defer server.Close()

	client, err := llm.NewClient(llm.Options{URL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)
	a := newStarted(t, client, 0)

	assert.Equal(t, "seen 1", a.HandleMessage(context.Background(), []byte(request)).AIInsights)
	assert.Equal(t, "seen 3", a.HandleMessage(context.Background(), []byte(request)).AIInsights)
}
