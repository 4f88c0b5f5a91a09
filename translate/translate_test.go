// Package translate contains tests for the translation engine.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minios-linux/jlokit/store"
)

func TestNewSelectsProviderCaseInsensitively(t *testing.T) {
	for _, id := range []string{"claude", "DeepSeek", "QWEN"} {
		if _, err := New(id, Options{}); err != nil {
			t.Fatalf("New(%q) error: %v", id, err)
		}
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New("chatgpt", Options{})
	if err == nil {
		t.Fatalf("New(chatgpt) succeeded, want error")
	}
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("New(chatgpt) error = %v, want ErrUnsupportedProvider", err)
	}
}

func TestBuildRequestClaude(t *testing.T) {
	prov := DefaultProviders()[ProviderClaude]
	prov.APIKey = "sk-test"

	endpoint, headers, body, err := buildRequest(prov, formatAnthropic, "prompt", "zh-CN")
	if err != nil {
		t.Fatalf("buildRequest() error: %v", err)
	}
	if endpoint != "https://api.anthropic.com/v1/messages" {
		t.Fatalf("endpoint = %q", endpoint)
	}
	if headers["x-api-key"] != "sk-test" {
		t.Fatalf("x-api-key = %q, want sk-test", headers["x-api-key"])
	}
	if headers["anthropic-version"] != anthropicVersion {
		t.Fatalf("anthropic-version = %q, want %q", headers["anthropic-version"], anthropicVersion)
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if req["model"] != "claude-sonnet-4-5-20250929" {
		t.Fatalf("model = %v", req["model"])
	}
	if _, ok := req["max_tokens"]; !ok {
		t.Fatalf("body missing max_tokens: %s", body)
	}
}

func TestBuildRequestDeepSeek(t *testing.T) {
	prov := DefaultProviders()[ProviderDeepSeek]
	prov.APIKey = "sk-test"

	endpoint, headers, body, err := buildRequest(prov, formatOpenAIChat, "prompt", "zh-CN")
	if err != nil {
		t.Fatalf("buildRequest() error: %v", err)
	}
	if endpoint != "https://api.deepseek.com/chat/completions" {
		t.Fatalf("endpoint = %q", endpoint)
	}
	if headers["Authorization"] != "Bearer sk-test" {
		t.Fatalf("Authorization = %q", headers["Authorization"])
	}

	var req struct {
		Temperature float64 `json:"temperature"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if req.Temperature != deepseekTemperature {
		t.Fatalf("temperature = %v, want %v", req.Temperature, deepseekTemperature)
	}
}

func TestBuildRequestQwenCarriesTranslationOptions(t *testing.T) {
	prov := DefaultProviders()[ProviderQwen]

	_, _, body, err := buildRequest(prov, formatQwenMT, "prompt", "zh-CN")
	if err != nil {
		t.Fatalf("buildRequest() error: %v", err)
	}

	var req struct {
		TranslationOptions struct {
			SourceLang string `json:"source_lang"`
			TargetLang string `json:"target_lang"`
		} `json:"translation_options"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if req.TranslationOptions.SourceLang != "ja" {
		t.Fatalf("source_lang = %q, want ja", req.TranslationOptions.SourceLang)
	}
	if req.TranslationOptions.TargetLang != "zh" {
		t.Fatalf("target_lang = %q, want zh", req.TranslationOptions.TargetLang)
	}
}

func TestChatCompletionsEndpoint(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://api.deepseek.com", "https://api.deepseek.com/chat/completions"},
		{"https://api.deepseek.com/", "https://api.deepseek.com/chat/completions"},
		{"https://proxy.local/chat/completions", "https://proxy.local/chat/completions"},
	}
	for _, tc := range tests {
		if got := chatCompletionsEndpoint(tc.base); got != tc.want {
			t.Fatalf("chatCompletionsEndpoint(%q) = %q, want %q", tc.base, got, tc.want)
		}
	}
}

func TestExtractResponseText(t *testing.T) {
	t.Run("openai chat format", func(t *testing.T) {
		body := `{"choices":[{"message":{"content":"hello"}}]}`
		got, err := extractResponseText([]byte(body))
		if err != nil {
			t.Fatalf("extractResponseText() error: %v", err)
		}
		if got != "hello" {
			t.Fatalf("extractResponseText() = %q, want hello", got)
		}
	})

	t.Run("anthropic format", func(t *testing.T) {
		body := `{"content":[{"type":"text","text":"hola"}]}`
		got, err := extractResponseText([]byte(body))
		if err != nil {
			t.Fatalf("extractResponseText() error: %v", err)
		}
		if got != "hola" {
			t.Fatalf("extractResponseText() = %q, want hola", got)
		}
	})

	t.Run("api error object", func(t *testing.T) {
		body := `{"error":{"message":"quota exceeded"}}`
		_, err := extractResponseText([]byte(body))
		if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
			t.Fatalf("extractResponseText() error = %v, want quota message", err)
		}
	})

	t.Run("unrecognized shape", func(t *testing.T) {
		if _, err := extractResponseText([]byte(`{"ok":true}`)); err == nil {
			t.Fatalf("extractResponseText() succeeded on unknown shape")
		}
	})
}

func TestParseTranslations(t *testing.T) {
	want := []string{"你好", "谢谢"}

	t.Run("plain array", func(t *testing.T) {
		got, err := parseTranslations(`["你好", "谢谢"]`, 2)
		if err != nil {
			t.Fatalf("parseTranslations() error: %v", err)
		}
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("parseTranslations() = %#v, want %#v", got, want)
		}
	})

	t.Run("markdown fence", func(t *testing.T) {
		got, err := parseTranslations("```json\n[\"你好\", \"谢谢\"]\n```", 2)
		if err != nil {
			t.Fatalf("parseTranslations() error: %v", err)
		}
		if len(got) != 2 || got[1] != "谢谢" {
			t.Fatalf("parseTranslations() = %#v, want %#v", got, want)
		}
	})

	t.Run("surrounding prose", func(t *testing.T) {
		got, err := parseTranslations("Here you go: [\"你好\"] Hope that helps!", 1)
		if err != nil {
			t.Fatalf("parseTranslations() error: %v", err)
		}
		if len(got) != 1 || got[0] != "你好" {
			t.Fatalf("parseTranslations() = %#v", got)
		}
	})

	t.Run("not an array", func(t *testing.T) {
		if _, err := parseTranslations("I cannot translate that.", 2); err == nil {
			t.Fatalf("parseTranslations() succeeded on prose")
		}
	})

	t.Run("empty array", func(t *testing.T) {
		if _, err := parseTranslations("[]", 2); err == nil {
			t.Fatalf("parseTranslations() succeeded on empty array")
		}
	})
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt([]string{"こんにちは", "ありがとう"}, "zh-CN")
	if err != nil {
		t.Fatalf("buildPrompt() error: %v", err)
	}
	for _, want := range []string{"简体中文", "こんにちは", "JSON array of 2"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("buildPrompt() missing %q:\n%s", want, prompt)
		}
	}
}

func TestOutputPathAndGeneratedDetection(t *testing.T) {
	got := outputPath(filepath.Join("raw", "scenario_raw.json"), "zh-CN")
	want := filepath.Join("raw", "scenario_raw_zh-CN.json")
	if got != want {
		t.Fatalf("outputPath() = %q, want %q", got, want)
	}

	if !isGeneratedOutput("scenario_raw_zh-CN.json") {
		t.Fatalf("isGeneratedOutput(output) = false, want true")
	}
	if isGeneratedOutput("scenario_raw.json") {
		t.Fatalf("isGeneratedOutput(input) = true, want false")
	}
}

// stubTranslator returns a canned reply without any network traffic.
type stubTranslator struct {
	reply string
	err   error

	prompts []string
}

func (s *stubTranslator) Translate(ctx context.Context, prompt, targetLocale string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("os.WriteFile(%s) error: %v", path, err)
	}
}

func TestTranslateFileRawList(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "scenario_raw.json")
	writeFile(t, input, `["こんにちは", "ありがとう"]`)

	tr := &stubTranslator{reply: `["你好", "谢谢"]`}
	out, sent, err := translateFile(context.Background(), tr, input, "zh-CN", Options{})
	if err != nil {
		t.Fatalf("translateFile() error: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if out != filepath.Join(dir, "scenario_raw_zh-CN.json") {
		t.Fatalf("output path = %q", out)
	}

	texts, err := store.LoadStringList(out)
	if err != nil {
		t.Fatalf("LoadStringList() error: %v", err)
	}
	if len(texts) != 2 || texts[0] != "你好" || texts[1] != "谢谢" {
		t.Fatalf("output = %#v", texts)
	}
}

func TestTranslateFileCarriesExistingRecordTranslations(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "items.json")
	writeFile(t, input, `[
  {"raw": "こんにちは", "translation": {"zh-CN": {"text": "你好", "author": "alice"}}},
  {"raw": "ありがとう", "translation": {}}
]`)

	tr := &stubTranslator{reply: `["谢谢"]`}
	out, sent, err := translateFile(context.Background(), tr, input, "zh-CN", Options{})
	if err != nil {
		t.Fatalf("translateFile() error: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1 (only the untranslated record)", sent)
	}

	texts, err := store.LoadStringList(out)
	if err != nil {
		t.Fatalf("LoadStringList() error: %v", err)
	}
	if len(texts) != 2 || texts[0] != "你好" || texts[1] != "谢谢" {
		t.Fatalf("output = %#v, want existing text carried through", texts)
	}
}

func TestTranslateFileLimit(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "big.json")
	writeFile(t, input, `["一", "二", "三"]`)

	tr := &stubTranslator{reply: `["one"]`}
	_, sent, err := translateFile(context.Background(), tr, input, "en", Options{Limit: 1})
	if err != nil {
		t.Fatalf("translateFile() error: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	texts, err := store.LoadStringList(filepath.Join(dir, "big_en.json"))
	if err != nil {
		t.Fatalf("LoadStringList() error: %v", err)
	}
	if len(texts) != 3 || texts[0] != "one" || texts[1] != "" || texts[2] != "" {
		t.Fatalf("output = %#v, want one translation and empty slots", texts)
	}
}

func TestTranslateFileShortReplyLeavesEmptySlots(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "pair.json")
	writeFile(t, input, `["こんにちは", "ありがとう"]`)

	tr := &stubTranslator{reply: `["你好"]`}
	out, _, err := translateFile(context.Background(), tr, input, "zh-CN", Options{})
	if err != nil {
		t.Fatalf("translateFile() error: %v", err)
	}

	texts, err := store.LoadStringList(out)
	if err != nil {
		t.Fatalf("LoadStringList() error: %v", err)
	}
	if len(texts) != 2 || texts[0] != "你好" || texts[1] != "" {
		t.Fatalf("output = %#v, want empty fill for missing translation", texts)
	}
}

func TestTranslateFileSkipsWhenNothingPending(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "done.json")
	writeFile(t, input, `[{"raw": "こんにちは", "translation": {"zh-CN": {"text": "你好", "author": "alice"}}}]`)

	tr := &stubTranslator{reply: `["unused"]`}
	out, sent, err := translateFile(context.Background(), tr, input, "zh-CN", Options{})
	if err != nil {
		t.Fatalf("translateFile() error: %v", err)
	}
	if out != "" || sent != 0 {
		t.Fatalf("translateFile() = (%q, %d), want skip", out, sent)
	}
	if len(tr.prompts) != 0 {
		t.Fatalf("provider called %d times, want 0", len(tr.prompts))
	}
}

func TestRunDirectoryMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", got)
		}
		resp := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": `["你好", "谢谢"]`}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scenario.json"), `["こんにちは", "ありがとう"]`)
	// Output of an earlier run: must be skipped, not re-translated.
	writeFile(t, filepath.Join(dir, "scenario_zh-CN.json"), `["旧"]`)

	res, err := Run(context.Background(), Options{
		Provider:  ProviderDeepSeek,
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		InputPath: dir,
		Locale:    "zh-CN",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Files != 1 || res.Translated != 2 {
		t.Fatalf("Run() = %+v, want 1 file / 2 strings", res)
	}

	texts, err := store.LoadStringList(filepath.Join(dir, "scenario_zh-CN.json"))
	if err != nil {
		t.Fatalf("LoadStringList() error: %v", err)
	}
	if len(texts) != 2 || texts[0] != "你好" {
		t.Fatalf("output = %#v", texts)
	}
}

func TestRunDirectoryModeContinuesPastFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), `["こんにちは"]`)
	writeFile(t, filepath.Join(dir, "b.json"), `[{"raw": "完了", "translation": {"zh-CN": {"text": "好", "author": "x"}}}]`)

	res, err := Run(context.Background(), Options{
		Provider:  ProviderDeepSeek,
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		InputPath: dir,
		Locale:    "zh-CN",
	})
	if err == nil {
		t.Fatalf("Run() succeeded, want aggregate failure")
	}
	if !strings.Contains(err.Error(), "a.json") {
		t.Fatalf("Run() error = %v, want failed file name", err)
	}
	// The already-translated file was still processed (skipped), not aborted.
	if res.Files != 2 || res.Skipped != 1 || len(res.Failed) != 1 {
		t.Fatalf("Run() = %+v, want 2 files, 1 skipped, 1 failed", res)
	}
}

func TestRunSingleFileAPIErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	dir := t.TempDir()
	input := filepath.Join(dir, "one.json")
	writeFile(t, input, `["こんにちは"]`)

	_, err := Run(context.Background(), Options{
		Provider:  ProviderDeepSeek,
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		InputPath: input,
		Locale:    "zh-CN",
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Run() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
}
