// Package translate implements AI-powered translation of extracted
// Japanese game strings using HTTP API-based AI providers: Anthropic
// Claude, DeepSeek, and Qwen (DashScope compatible mode).
//
// Each input file is translated with a single batched API call: the
// pending strings go out as a JSON array inside the prompt, the model
// answers with a JSON array of translations, and the result is written
// as a {stem}_{locale}.json list parallel to the input array.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minios-linux/jlokit/locale"
	"github.com/minios-linux/jlokit/store"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderClaude   = "claude"
	ProviderDeepSeek = "deepseek"
	ProviderQwen     = "qwen"
)

// ErrUnsupportedProvider is returned by New for unknown provider IDs.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for an AI translation service.
type Provider struct {
	// ID is the provider identifier (claude, deepseek, qwen).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key.
	APIKey string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderClaude: {
			ID:      ProviderClaude,
			Name:    "Anthropic Claude",
			BaseURL: "https://api.anthropic.com",
			Model:   "claude-sonnet-4-5-20250929",
			Timeout: 120 * time.Second,
		},
		ProviderDeepSeek: {
			ID:      ProviderDeepSeek,
			Name:    "DeepSeek",
			BaseURL: "https://api.deepseek.com",
			Model:   "deepseek-chat",
			Timeout: 120 * time.Second,
		},
		ProviderQwen: {
			ID:      ProviderQwen,
			Name:    "Qwen (DashScope)",
			BaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
			Model:   "qwen-mt-turbo",
			Timeout: 120 * time.Second,
		},
	}
}

// ---------------------------------------------------------------------------
// Translation options
// ---------------------------------------------------------------------------

// Options controls the translation behavior.
type Options struct {
	// Provider is the provider ID: claude, deepseek, qwen.
	Provider string
	// Model overrides the provider's default model.
	Model string
	// BaseURL overrides the provider's default API endpoint.
	BaseURL string
	// APIKey is the authentication key for API requests.
	APIKey string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the per-request timeout (overrides the provider default if set).
	Timeout time.Duration
	// InputPath is the JSON file or directory of JSON files to translate.
	InputPath string
	// Locale is the target locale code.
	Locale string
	// Limit caps how many pending strings are sent per file (0 = all).
	Limit int
	// Workers is how many files to translate concurrently in directory mode.
	Workers int
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveWorkers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return 1
}

// ---------------------------------------------------------------------------
// Translator interface and factory
// ---------------------------------------------------------------------------

// Translator sends one prompt to an AI provider and returns the
// model's text reply.
type Translator interface {
	Translate(ctx context.Context, prompt, targetLocale string) (string, error)
}

// New builds a Translator for the given provider ID, applying the
// overrides from opts onto the provider defaults. Provider IDs are
// case-insensitive; unknown IDs fail with ErrUnsupportedProvider.
func New(providerID string, opts Options) (Translator, error) {
	id := strings.ToLower(strings.TrimSpace(providerID))
	prov, ok := DefaultProviders()[id]
	if !ok {
		return nil, fmt.Errorf("%w %q (valid: claude, deepseek, qwen)", ErrUnsupportedProvider, providerID)
	}

	if opts.Model != "" {
		prov.Model = opts.Model
	}
	if opts.BaseURL != "" {
		prov.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		prov.Timeout = opts.Timeout
	}
	prov.APIKey = opts.APIKey
	prov.Proxy = opts.Proxy

	var format apiFormat
	switch id {
	case ProviderClaude:
		format = formatAnthropic
	case ProviderQwen:
		format = formatQwenMT
	default:
		format = formatOpenAIChat
	}

	return &client{
		prov:   prov,
		format: format,
		http:   makeHTTPClient(prov.Proxy, prov.Timeout),
	}, nil
}

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Support both --proxy flag and HTTP_PROXY/HTTPS_PROXY env vars
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ---------------------------------------------------------------------------
// API format types
// ---------------------------------------------------------------------------

type apiFormat int

const (
	formatOpenAIChat apiFormat = iota // OpenAI chat/completions (deepseek)
	formatAnthropic                   // Anthropic messages (claude)
	formatQwenMT                      // DashScope compatible mode with translation_options (qwen)
)

const anthropicVersion = "2023-06-01"

// deepseekTemperature follows the vendor recommendation for translation work.
const deepseekTemperature = 1.3

// ---------------------------------------------------------------------------
// Request builders for each API format
// ---------------------------------------------------------------------------

func buildOpenAIChatRequest(model, prompt string, temperature float64) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		Stream:      false,
	}
	return json.Marshal(req)
}

func buildAnthropicRequest(model, prompt string) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []msg  `json:"messages"`
	}{
		Model:     model,
		MaxTokens: 8192,
		Messages: []msg{
			{Role: "user", Content: prompt},
		},
	}
	return json.Marshal(req)
}

func buildQwenRequest(model, prompt, targetLocale string) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type translationOptions struct {
		SourceLang string `json:"source_lang"`
		TargetLang string `json:"target_lang"`
	}
	req := struct {
		Model              string             `json:"model"`
		Messages           []msg              `json:"messages"`
		TranslationOptions translationOptions `json:"translation_options"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "user", Content: prompt},
		},
		TranslationOptions: translationOptions{
			SourceLang: "ja",
			TargetLang: locale.Base(targetLocale),
		},
	}
	return json.Marshal(req)
}

// buildRequest constructs the endpoint, headers, and body for a provider call.
func buildRequest(prov Provider, format apiFormat, prompt, targetLocale string) (string, map[string]string, []byte, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	var endpoint string
	var body []byte
	var err error

	switch format {
	case formatAnthropic:
		endpoint = strings.TrimRight(prov.BaseURL, "/") + "/v1/messages"
		if prov.APIKey != "" {
			headers["x-api-key"] = prov.APIKey
		}
		headers["anthropic-version"] = anthropicVersion
		body, err = buildAnthropicRequest(prov.Model, prompt)

	case formatQwenMT:
		endpoint = chatCompletionsEndpoint(prov.BaseURL)
		if prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + prov.APIKey
		}
		body, err = buildQwenRequest(prov.Model, prompt, targetLocale)

	default: // formatOpenAIChat
		endpoint = chatCompletionsEndpoint(prov.BaseURL)
		if prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + prov.APIKey
		}
		body, err = buildOpenAIChatRequest(prov.Model, prompt, deepseekTemperature)
	}

	if err != nil {
		return "", nil, nil, err
	}
	return endpoint, headers, body, nil
}

func chatCompletionsEndpoint(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

// ---------------------------------------------------------------------------
// Response parsing
// ---------------------------------------------------------------------------

// extractResponseText tries the known response formats and returns the text.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	// Check for API error
	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	// OpenAI chat format: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// Anthropic format: content[].type=="text" -> .text
	if contentArr, ok := raw["content"].([]any); ok {
		for _, c := range contentArr {
			if block, ok := c.(map[string]any); ok {
				if block["type"] == "text" {
					if text, ok := block["text"].(string); ok {
						return text, nil
					}
				}
			}
		}
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

// ---------------------------------------------------------------------------
// Provider client
// ---------------------------------------------------------------------------

// APIError reports a failed provider request.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

type client struct {
	prov   Provider
	format apiFormat
	http   *http.Client
}

func (c *client) Translate(ctx context.Context, prompt, targetLocale string) (string, error) {
	endpoint, headers, body, err := buildRequest(c.prov, c.format, prompt, targetLocale)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			Provider:   c.prov.ID,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(respBody), 500),
		}
	}

	return extractResponseText(respBody)
}

// ---------------------------------------------------------------------------
// Batch prompt
// ---------------------------------------------------------------------------

func buildPrompt(texts []string, loc string) (string, error) {
	payload, err := marshalJSONArray(texts)
	if err != nil {
		return "", fmt.Errorf("marshaling source strings: %w", err)
	}

	name := locale.Resolve(loc).Name

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional translator specializing in Japanese video game localization. Translate the following Japanese game strings into %s.\n\n", name)
	b.WriteString("Rules:\n")
	b.WriteString("1. Keep placeholders, markup tags and escape sequences exactly as they appear in the source.\n")
	b.WriteString("2. Preserve the tone and brevity of game dialogue and UI text.\n")
	fmt.Fprintf(&b, "3. Respond with ONLY a JSON array of %d translated strings, same order as the input. No explanations, no markdown.\n\n", len(texts))
	b.WriteString("Input:\n")
	b.Write(payload)
	return b.String(), nil
}

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseTranslations extracts the JSON array of translations from a
// model reply, tolerating markdown fences and surrounding prose.
func parseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	// Strip markdown code blocks if present
	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	// Try to find a JSON array in the response
	startIdx := strings.Index(content, "[")
	endIdx := strings.LastIndex(content, "]")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err != nil {
		return nil, fmt.Errorf("parsing translation response as JSON array: %w\nResponse: %s", err, truncate(content, 300))
	}

	if len(translations) == 0 {
		return nil, fmt.Errorf("got 0 translations, expected %d", expected)
	}

	return translations, nil
}

// ---------------------------------------------------------------------------
// File runner
// ---------------------------------------------------------------------------

// Result summarizes a translation run.
type Result struct {
	// Files is how many input files were processed.
	Files int
	// Translated is how many strings were sent for translation.
	Translated int
	// Skipped is how many files had nothing to translate.
	Skipped int
	// Outputs lists the written output file paths.
	Outputs []string
	// Failed lists the input file names that could not be translated.
	Failed []string
}

// Run translates the input file, or every JSON file directly inside the
// input directory. Each file is translated with one provider call; in
// directory mode a failing file does not stop the remaining files.
func Run(ctx context.Context, opts Options) (*Result, error) {
	loc := opts.Locale
	if loc == "" {
		loc = locale.Default
	}

	tr, err := New(opts.Provider, opts)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(opts.InputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("input path %s not found", opts.InputPath)
		}
		return nil, fmt.Errorf("reading %s: %w", opts.InputPath, err)
	}

	res := &Result{}

	if !info.IsDir() {
		out, sent, err := translateFile(ctx, tr, opts.InputPath, loc, opts)
		if err != nil {
			return nil, err
		}
		res.Files = 1
		if out == "" {
			res.Skipped++
		} else {
			res.Outputs = append(res.Outputs, out)
			res.Translated += sent
		}
		return res, nil
	}

	files, err := listInputs(opts.InputPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		opts.log("No JSON files to translate in %s", opts.InputPath)
		return res, nil
	}

	sem := make(chan struct{}, opts.effectiveWorkers())
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)

		go func(p string) {
			defer func() {
				<-sem
				wg.Done()
			}()

			out, sent, err := translateFile(ctx, tr, p, loc, opts)

			mu.Lock()
			defer mu.Unlock()
			res.Files++
			switch {
			case err != nil:
				opts.logError("Failed to translate %s: %v", p, err)
				res.Failed = append(res.Failed, filepath.Base(p))
			case out == "":
				res.Skipped++
			default:
				res.Outputs = append(res.Outputs, out)
				res.Translated += sent
			}
		}(path)
	}
	wg.Wait()

	if len(res.Failed) > 0 {
		sort.Strings(res.Failed)
		return res, fmt.Errorf("%d file(s) failed to translate: %s", len(res.Failed), strings.Join(res.Failed, ", "))
	}
	return res, nil
}

// listInputs returns the JSON files directly inside dir, skipping
// translation outputs left behind by earlier runs.
func listInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || isGeneratedOutput(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// isGeneratedOutput reports whether a file name looks like a
// {stem}_{locale}.json list written by a previous run.
func isGeneratedOutput(name string) bool {
	stem := strings.TrimSuffix(name, ".json")
	for _, code := range locale.Supported() {
		if strings.HasSuffix(stem, "_"+code) {
			return true
		}
	}
	return false
}

// translateFile translates the pending strings of one file and writes
// the parallel {stem}_{locale}.json output list. Returns the output
// path ("" when the file had nothing to translate) and how many
// strings were sent.
func translateFile(ctx context.Context, tr Translator, path, loc string, opts Options) (string, int, error) {
	f, err := store.ParseFile(path)
	if err != nil {
		return "", 0, err
	}

	outputs := make([]string, f.Len())
	var pending []int
	for i := range f.Items {
		it := &f.Items[i]
		switch {
		case it.Legacy():
			if strings.TrimSpace(it.Raw) != "" {
				pending = append(pending, i)
			}
		case it.Raw == "":
			// Opaque or malformed item, the slot stays empty.
		case it.Translated(loc):
			e, _ := it.Entry(loc)
			outputs[i] = e.Text
		default:
			pending = append(pending, i)
		}
	}

	if opts.Limit > 0 && len(pending) > opts.Limit {
		pending = pending[:opts.Limit]
	}

	if len(pending) == 0 {
		opts.log("No strings to translate in %s", path)
		return "", 0, nil
	}

	texts := make([]string, len(pending))
	for n, i := range pending {
		texts[n] = f.Items[i].Raw
	}

	opts.log("Translating %d strings from %s...", len(texts), path)

	prompt, err := buildPrompt(texts, loc)
	if err != nil {
		return "", 0, err
	}

	reply, err := tr.Translate(ctx, prompt, loc)
	if err != nil {
		return "", 0, err
	}

	translations, err := parseTranslations(reply, len(texts))
	if err != nil {
		return "", 0, err
	}
	if len(translations) != len(texts) {
		opts.logError("Warning: expected %d translations, got %d", len(texts), len(translations))
	}

	for n, i := range pending {
		if n < len(translations) {
			outputs[i] = translations[n]
		}
	}

	outPath := outputPath(path, loc)
	if err := store.SaveStringList(outPath, outputs); err != nil {
		return "", 0, err
	}
	opts.log("Translation output written to: %s", outPath)

	return outPath, len(texts), nil
}

func outputPath(path, loc string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(filepath.Dir(path), stem+"_"+loc+".json")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func marshalJSONArray(texts []string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(texts); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
