package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ZRnown/ai-fortune-telling/internal/config"
	"github.com/ZRnown/ai-fortune-telling/pkg/models"
)

// sampleResult builds a small but structurally complete chart for prompt
// tests. The values mirror a real 1990-05-20 15:00 reading.
func sampleResult() *models.BaziResult {
	res := &models.BaziResult{
		SolarDate: "1990-05-20 15:00:00",
		LunarDate: "庚午年 辛巳月 乙酉日 甲申时",
		Voidness:  "午未",
		Elements: []models.Share{
			{Name: "木", Percent: 12.5}, {Name: "火", Percent: 25.0},
			{Name: "土", Percent: 12.5}, {Name: "金", Percent: 37.5},
			{Name: "水", Percent: 12.5},
		},
		TenGods: []models.Share{{Name: "正官", Percent: 30.0}, {Name: "劫财", Percent: 20.0}},
	}
	res.Pillars.Year = models.Pillar{Stem: "庚", Branch: "午", StemTenGod: "正官", Nayin: "路旁土",
		Hidden: []models.HiddenStem{{Char: "丁", TenGod: "食神"}, {Char: "己", TenGod: "偏财"}}}
	res.Pillars.Month = models.Pillar{Stem: "辛", Branch: "巳", StemTenGod: "七杀", Nayin: "白蜡金"}
	res.Pillars.Day = models.Pillar{Stem: "乙", Branch: "酉", Nayin: "泉中水"}
	res.Pillars.Hour = models.Pillar{Stem: "甲", Branch: "申", StemTenGod: "劫财", Nayin: "泉中水"}
	return res
}

// ── provider.go — Types & Helpers ──

func TestMessageConstructors(t *testing.T) {
	sys := SystemMessage("You are a chart reader.")
	if sys.Role != RoleSystem || sys.Content != "You are a chart reader." {
		t.Fatalf("SystemMessage: got %+v", sys)
	}

	user := UserMessage("hello")
	if user.Role != RoleUser || user.Content != "hello" {
		t.Fatalf("UserMessage: got %+v", user)
	}

	asst := AssistantMessage("hi there")
	if asst.Role != RoleAssistant || asst.Content != "hi there" {
		t.Fatalf("AssistantMessage: got %+v", asst)
	}
}

func TestResponseString(t *testing.T) {
	r := &Response{
		Provider: "openai", Model: "gpt-4o",
		Content: "short answer",
		Usage:   Usage{TotalTokens: 50},
		Latency: 100 * time.Millisecond,
	}
	s := r.String()
	if !strings.Contains(s, "openai/gpt-4o") || !strings.Contains(s, "50 tokens") {
		t.Fatalf("unexpected String(): %s", s)
	}

	// Long content (truncation)
	r.Content = strings.Repeat("x", 200)
	s = r.String()
	if !strings.Contains(s, "...") {
		t.Fatal("expected truncation for long content")
	}
}

// ── FromConfig ──

func TestFromConfigPrimaryGemini(t *testing.T) {
	p, err := FromConfig(config.LLMConfig{Primary: "gemini", GeminiKey: "k1", OpenAIKey: "k2"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != ProviderGemini {
		t.Errorf("got provider %s, want gemini", p.Name())
	}
}

func TestFromConfigFallsBackWhenPrimaryKeyMissing(t *testing.T) {
	p, err := FromConfig(config.LLMConfig{Primary: "gemini", OpenAIKey: "k2"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != ProviderOpenAI {
		t.Errorf("got provider %s, want openai fallback", p.Name())
	}
}

func TestFromConfigNoKeys(t *testing.T) {
	_, err := FromConfig(config.LLMConfig{Primary: "gemini"})
	if !errors.Is(err, ErrNoProviders) {
		t.Errorf("got %v, want ErrNoProviders", err)
	}
}

func TestProviderConstructorsRequireKey(t *testing.T) {
	if _, err := NewGeminiProvider(""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("gemini: got %v, want ErrNoAPIKey", err)
	}
	if _, err := NewOpenAIProvider(""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("openai: got %v, want ErrNoAPIKey", err)
	}
}

// ── GeminiProvider ──

func newTestGemini(t *testing.T, handler http.HandlerFunc) (*GeminiProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewGeminiProvider("test-key", WithGeminiBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	return p, srv
}

func TestGeminiChat(t *testing.T) {
	p, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "庚午年出生"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
		}`)
	})

	resp, err := p.Chat(context.Background(), []Message{UserMessage("解读")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "庚午年出生" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.FinishReason != FinishStop {
		t.Errorf("finish = %q", resp.FinishReason)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("tokens = %d", resp.Usage.TotalTokens)
	}
	if resp.Provider != ProviderGemini {
		t.Errorf("provider = %q", resp.Provider)
	}
}

func TestGeminiChatStream(t *testing.T) {
	p, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"candidates": [{"content": {"parts": [{"text": "日主"}]}}]}`+"\n\n")
		fmt.Fprint(w, `data: {"candidates": [{"content": {"parts": [{"text": "偏强"}]}, "finishReason": "STOP"}]}`+"\n\n")
	})

	ch, err := p.ChatStream(context.Background(), []Message{UserMessage("解读")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var full strings.Builder
	done := false
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatal(chunk.Err)
		}
		full.WriteString(chunk.Content)
		if chunk.Done {
			done = true
		}
	}
	if full.String() != "日主偏强" {
		t.Errorf("streamed content = %q", full.String())
	}
	if !done {
		t.Error("stream never signaled Done")
	}
}

func TestGeminiErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error": {"message": "bad key"}}`, ErrNoAPIKey},
		{http.StatusTooManyRequests, `{"error": {"message": "quota"}}`, ErrRateLimit},
		{http.StatusBadRequest, `{"error": {"message": "model not found"}}`, ErrInvalidModel},
	}
	for _, tc := range tests {
		p, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			fmt.Fprint(w, tc.body)
		})
		_, err := p.Chat(context.Background(), []Message{UserMessage("x")}, nil)
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestGeminiSystemInstruction(t *testing.T) {
	var gotBody string
	p, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 1<<16)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		fmt.Fprint(w, `{"candidates": []}`)
	})
	msgs := []Message{SystemMessage("你是命理师"), UserMessage("解读")}
	if _, err := p.Chat(context.Background(), msgs, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotBody, "system_instruction") {
		t.Error("system prompt not sent as system_instruction")
	}
}

// ── OpenAIProvider ──

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewOpenAIProvider("test-key", WithOpenAIBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOpenAIChat(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		fmt.Fprint(w, `{
			"model": "gpt-4o",
			"choices": [{"message": {"role": "assistant", "content": "五行均衡"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 8, "completion_tokens": 4, "total_tokens": 12}
		}`)
	})

	resp, err := p.Chat(context.Background(), []Message{UserMessage("解读")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "五行均衡" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.FinishReason != FinishStop {
		t.Errorf("finish = %q", resp.FinishReason)
	}
	if resp.Usage.TotalTokens != 12 {
		t.Errorf("tokens = %d", resp.Usage.TotalTokens)
	}
}

func TestOpenAIChatStream(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"choices": [{"delta": {"content": "比肩"}}]}`+"\n\n")
		fmt.Fprint(w, `data: {"choices": [{"delta": {"content": "偏多"}, "finish_reason": "stop"}]}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	ch, err := p.ChatStream(context.Background(), []Message{UserMessage("解读")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var full strings.Builder
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatal(chunk.Err)
		}
		full.WriteString(chunk.Content)
	}
	if full.String() != "比肩偏多" {
		t.Errorf("streamed content = %q", full.String())
	}
}

func TestOpenAIErrorMapping(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "invalid key", "code": "invalid_api_key"}}`)
	})
	_, err := p.Chat(context.Background(), []Message{UserMessage("x")}, nil)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("got %v, want ErrNoAPIKey", err)
	}
}

// ── prompt.go ──

func TestInterpretMessagesShape(t *testing.T) {
	res := sampleResult()
	msgs := InterpretMessages(res, "今年财运如何？")
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Role != RoleSystem {
		t.Error("first message should be the system prompt")
	}
	if !strings.Contains(msgs[1].Content, "庚午") {
		t.Error("chart context missing the year pillar")
	}
	if msgs[2].Content != "今年财运如何？" {
		t.Errorf("question = %q", msgs[2].Content)
	}
}

func TestInterpretMessagesDefaultQuestion(t *testing.T) {
	msgs := InterpretMessages(sampleResult(), "")
	if msgs[2].Content == "" {
		t.Error("empty question should get a default")
	}
}

func TestChartContextIncludesShares(t *testing.T) {
	ctx := ChartContext(sampleResult())
	for _, want := range []string{"四柱", "日主：乙", "五行占比", "纳音"} {
		if !strings.Contains(ctx, want) {
			t.Errorf("chart context missing %q:\n%s", want, ctx)
		}
	}
}
