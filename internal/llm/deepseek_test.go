package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeepSeek(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *DeepSeekClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	config := DefaultDeepSeekConfig()
	config.BaseURL = srv.URL
	config.Timeout = timeout
	client, err := NewDeepSeekClient(config, "test-key", nil)
	require.NoError(t, err)
	return client
}

func TestDeepSeekClient_CompleteWithToolCalls(t *testing.T) {
	var got chatRequest
	client := newTestDeepSeek(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"好的","tool_calls":[{"id":"call_1","type":"function","function":{"name":"update_resume","arguments":"{\"section\":\"skills\",\"content\":\"- Go\"}"}}]}}]}`)
	}, time.Second)

	resp, err := client.Complete(context.Background(), Request{
		Messages:    []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "改一下技能"}},
		Temperature: 0.7,
		Tools:       ResumeTools(),
	})
	require.NoError(t, err)

	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.False(t, got.Stream)
	assert.Nil(t, got.ResponseFormat)
	require.Len(t, got.Tools, 2)
	assert.Equal(t, "function", got.Tools[0].Type)
	assert.Equal(t, ToolUpdateResume, got.Tools[0].Function.Name)

	assert.Equal(t, "好的", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, ToolCall{ID: "call_1", Name: "update_resume", Arguments: `{"section":"skills","content":"- Go"}`}, resp.ToolCalls[0])
}

func TestDeepSeekClient_JSONMode(t *testing.T) {
	var got chatRequest
	client := newTestDeepSeek(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{}"}}]}`)
	}, time.Second)

	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, JSONMode: true})
	require.NoError(t, err)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestDeepSeekClient_StreamAcrossFragmentedFrames(t *testing.T) {
	client := newTestDeepSeek(t, func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		parts := []string{
			"data: {\"choices\":[{\"delta\":{\"content\":\"{\\\"sco\"}}]}\n",
			"\ndata: {\"choices\":[{\"delta\":{\"con",
			"tent\":\"re\\\": 85}\"}}]}\n\n",
			": keep-alive\n\n",
			"data: not-json\n\n",
			"data: [DONE]\n\n",
			"data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n",
		}
		for _, p := range parts {
			fmt.Fprint(w, p)
			flusher.Flush()
		}
	}, time.Second)

	var deltas []string
	content, err := client.Stream(context.Background(), Request{Messages: []Message{{Role: RoleSystem, Content: "x"}}}, func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	assert.Equal(t, `{"score": 85}`, content)
	assert.Equal(t, []string{`{"sco`, `re": 85}`}, deltas)
}

func TestDeepSeekClient_StreamWithoutDoneSentinel(t *testing.T) {
	client := newTestDeepSeek(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ab\"}}]}\n\ndata: {\"choices\":[{\"delta\":{\"content\":\"c\"}}]}")
	}, time.Second)

	content, err := client.Stream(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", content)
}

func TestDeepSeekClient_NonSuccessStatus(t *testing.T) {
	client := newTestDeepSeek(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	}, time.Second)

	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "rate limited")
	assert.True(t, IsUpstream(err))
	assert.False(t, IsTimeout(err))
}

func TestDeepSeekClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestDeepSeek(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := client.Stream(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}}, nil)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 50*time.Millisecond, te.Timeout)
}

func TestNewDeepSeekClient_Validation(t *testing.T) {
	_, err := NewDeepSeekClient(DefaultDeepSeekConfig(), "", nil)
	assert.Error(t, err)

	config := DefaultDeepSeekConfig()
	config.BaseURL = ""
	_, err = NewDeepSeekClient(config, "key", nil)
	assert.Error(t, err)
}

func TestResumeTools_Schema(t *testing.T) {
	tools := ResumeTools()
	require.Len(t, tools, 2)

	schema := tools[0].jsonSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"section", "content"}, schema["required"])

	props := schema["properties"].(map[string]any)
	section := props["section"].(map[string]any)
	assert.Equal(t, []string{"basicInfo", "summary", "experience", "skills", "education", "projects"}, section["enum"])

	assert.Equal(t, []string{"full_content"}, tools[1].required())
}
