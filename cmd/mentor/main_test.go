package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/julienb/mentor-go/internal/agent"
	"github.com/julienb/mentor-go/internal/config"
	"github.com/julienb/mentor-go/internal/history"
	"github.com/julienb/mentor-go/internal/llm"
	"github.com/julienb/mentor-go/internal/registry"
	"github.com/julienb/mentor-go/internal/session"
)

type mockLLM struct {
	calls []openai.ChatCompletionResponse
	err   error
}

func (m *mockLLM) CreateChatCompletion(ctx context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	if len(m.calls) == 0 {
		panic("mockLLM: no more responses configured")
	}
	resp := m.calls[0]
	m.calls = m.calls[1:]
	return resp, nil
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: history.RoleAssistant, Content: content},
		}},
	}
}

func newTestServer(t *testing.T, mock *mockLLM, password string) *httptest.Server {
	t.Helper()
	store := history.NewStore(t.TempDir())
	index := registry.New(filepath.Join(t.TempDir(), "sessions.db"))
	completer := llm.NewCompleter(mock, config.LLMConfig{
		Model:          "local-model",
		MaxTokens:      512,
		Temperature:    0.7,
		TimeoutSeconds: 120,
	})
	ctrl := agent.New(completer, store, index, "You are a terse test mentor.", password)
	sessions := session.NewManager("s3cret")

	srv := httptest.NewServer(newMux(ctrl, sessions, store, index))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func sessionCookieFrom(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	return nil
}

// A rejected credential must not mint a session: no cookie, no indexed session.
func TestLogin_WrongPasswordMintsNoSession(t *testing.T) {
	srv := newTestServer(t, &mockLLM{}, "hunter2")
	client := newClient(t)

	resp := postJSON(t, client, srv.URL+"/login", map[string]string{"password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Nil(t, sessionCookieFrom(resp), "failed login must not set a session cookie")
	resp.Body.Close()

	var entries []registry.Entry
	listResp, err := client.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	decodeJSON(t, listResp, &entries)
	require.Empty(t, entries)
}

// Without a successful login, the gate blocks the chat loop.
func TestChat_UnauthenticatedBlocked(t *testing.T) {
	srv := newTestServer(t, &mockLLM{}, "hunter2")
	client := newClient(t)

	resp := postJSON(t, client, srv.URL+"/chat", map[string]string{"message": "Bonjour"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Full flow: login sets the cookie, chat appends a turn, history reflects it,
// reset empties it under the same session id.
func TestLoginChatResetFlow(t *testing.T) {
	mock := &mockLLM{calls: []openai.ChatCompletionResponse{reply("Salut !")}}
	srv := newTestServer(t, mock, "hunter2")
	client := newClient(t)

	loginResp := postJSON(t, client, srv.URL+"/login", map[string]string{"password": "hunter2"})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	cookie := sessionCookieFrom(loginResp)
	require.NotNil(t, cookie, "successful login must set the session cookie")
	require.Len(t, cookie.Value, session.IDLength)
	loginResp.Body.Close()

	var chatOut map[string]string
	chatResp := postJSON(t, client, srv.URL+"/chat", map[string]string{"message": "Bonjour"})
	require.Equal(t, http.StatusOK, chatResp.StatusCode)
	decodeJSON(t, chatResp, &chatOut)
	require.Equal(t, "Salut !", chatOut["reply"])

	var hist struct {
		SessionID string            `json:"session_id"`
		Messages  []history.Message `json:"messages"`
	}
	histResp, err := client.Get(srv.URL + "/history")
	require.NoError(t, err)
	decodeJSON(t, histResp, &hist)
	require.Equal(t, cookie.Value, hist.SessionID)
	require.Equal(t, []history.Message{
		{Role: history.RoleUser, Content: "Bonjour"},
		{Role: history.RoleAssistant, Content: "Salut !"},
	}, hist.Messages)

	resetResp := postJSON(t, client, srv.URL+"/reset", nil)
	require.Equal(t, http.StatusOK, resetResp.StatusCode)
	resetResp.Body.Close()

	histResp, err = client.Get(srv.URL + "/history")
	require.NoError(t, err)
	decodeJSON(t, histResp, &hist)
	require.Equal(t, cookie.Value, hist.SessionID, "reset must not rotate the session id")
	require.Empty(t, hist.Messages)
}

// A completion fault surfaces as a gateway error with the user-facing message.
func TestChat_FaultSurfaced(t *testing.T) {
	srv := newTestServer(t, &mockLLM{err: context.DeadlineExceeded}, "")
	client := newClient(t)

	resp := postJSON(t, client, srv.URL+"/chat", map[string]string{"message": "Test"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var out map[string]string
	decodeJSON(t, resp, &out)
	require.Equal(t, (&llm.Fault{Kind: llm.FaultTimeout}).Message(), out["error"])
}

// An empty session index serializes as [], never null.
func TestSessions_EmptyList(t *testing.T) {
	srv := newTestServer(t, &mockLLM{}, "")
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "[]", string(bytes.TrimSpace(buf.Bytes())))
}
