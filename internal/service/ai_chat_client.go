package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type aiChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

type aiChatResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// aiChatClient 封装 OpenAI/DeepSeek 的 chat-completions 调用
// 平台选择与 API Key 来自系统设置，模型名称按平台取默认值
type aiChatClient struct {
	settings             *SystemSettingService
	http                 httpDoer
	openAIBaseURL        string
	deepSeekBaseURL      string
	defaultOpenAIModel   string
	defaultDeepSeekModel string
}

func newAIChatClient(settings *SystemSettingService, defaultOpenAIModel, defaultDeepSeekModel string) *aiChatClient {
	return &aiChatClient{
		settings:             settings,
		http:                 &http.Client{Timeout: 180 * time.Second},
		openAIBaseURL:        "https://api.openai.com/v1",
		deepSeekBaseURL:      "https://api.deepseek.com/v1",
		defaultOpenAIModel:   strings.TrimSpace(defaultOpenAIModel),
		defaultDeepSeekModel: strings.TrimSpace(defaultDeepSeekModel),
	}
}

func (c *aiChatClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 20 * time.Second}
		return
	}
	c.http = client
}

func (c *aiChatClient) SetOpenAIBaseURL(base string) {
	c.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (c *aiChatClient) SetDeepSeekBaseURL(base string) {
	c.deepSeekBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// call 读取最新系统设置并发起一次对话补全
func (c *aiChatClient) call(ctx context.Context, req aiChatRequest) (aiChatResponse, error) {
	settings, err := c.settings.GetSettings()
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("读取系统设置失败: %w", err)
	}
	return c.callWithSettings(ctx, settings, req)
}

func (c *aiChatClient) callWithSettings(ctx context.Context, settings SystemSettings, req aiChatRequest) (aiChatResponse, error) {
	provider := normalizeAIProvider(settings.AIProvider)
	if provider == "" {
		provider = AIProviderOpenAI
	}

	var (
		apiKey string
		base   string
		model  string
		label  string
	)

	switch provider {
	case AIProviderDeepSeek:
		apiKey = strings.TrimSpace(settings.DeepSeekAPIKey)
		base = c.deepSeekBaseURL
		if strings.TrimSpace(base) == "" {
			base = "https://api.deepseek.com/v1"
		}
		model = c.defaultDeepSeekModel
		label = "DeepSeek"
	default:
		apiKey = strings.TrimSpace(settings.OpenAIAPIKey)
		base = c.openAIBaseURL
		if strings.TrimSpace(base) == "" {
			base = "https://api.openai.com/v1"
		}
		model = c.defaultOpenAIModel
		label = "OpenAI"
	}

	if apiKey == "" {
		return aiChatResponse{}, ErrAIAPIKeyMissing
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	maxTokens := req.MaxTokens
	if maxTokens < 0 {
		maxTokens = 0
	}

	payload := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: strings.TrimSpace(req.SystemPrompt)},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("构造请求失败: %w", err)
	}

	endpoint := strings.TrimRight(base, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("创建 %s 请求失败: %w", label, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "quitbet-ai/1.0")

	resp, err := client.Do(httpReq)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("请求 %s 接口失败: %w", label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("读取 %s 响应失败: %w", label, err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return aiChatResponse{}, fmt.Errorf("解析 %s 响应失败: %w", label, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(completion.Error.Message)
		if errMsg == "" {
			errMsg = strings.TrimSpace(string(respBody))
		}
		if errMsg == "" {
			errMsg = resp.Status
		}
		return aiChatResponse{}, fmt.Errorf("%s 接口返回错误：%s", label, errMsg)
	}

	if len(completion.Choices) == 0 {
		return aiChatResponse{}, fmt.Errorf("%s 接口未返回结果", label)
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	return aiChatResponse{
		Content:          content,
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}, nil
}

const maxAILogSnippetRunes = 1024

// logAIExchange 用于输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(kind, phase, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		log.Printf("[AI %s] %s: <empty>", kind, phase)
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	snippet := trimmed
	if runeCount > maxAILogSnippetRunes {
		snippet = string([]rune(trimmed)[:maxAILogSnippetRunes]) + "…(truncated)"
	}
	log.Printf("[AI %s] %s (runes=%d): %s", kind, phase, runeCount, snippet)
}
