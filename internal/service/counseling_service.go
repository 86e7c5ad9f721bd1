package service

import (
	"context"
	"strings"
)

const (
	defaultOpenAICounselingModel   = "gpt-3.5-turbo"
	defaultDeepSeekCounselingModel = "deepseek-chat"
	defaultCounselingMaxTokens     = 350
	defaultCounselingTemperature   = 0.7
	defaultEmergencyMaxTokens      = 150
	maxCounselingMessageRuneCount  = 4000
)

const defaultCounselingSystemPrompt = "你是一位充满同理心的陪伴者，帮助受赌瘾困扰的人感到被接纳，并鼓励他们继续向前。回复保持温和、具体、不说教。"

const emergencyAdvicePrompt = "想象一位用户此刻正处在复赌边缘。请给出一句简短的情感支持，再给出一条可立刻执行的小建议，帮助他撑过这个冲动时刻。两部分各占一行。"

// EmergencyAdvice 为紧急时刻的支持话术与实操建议
type EmergencyAdvice struct {
	Support string
	Tip     string
}

// Counselor 定义陪伴对话能力，便于在 handler 层注入测试替身。
type Counselor interface {
	Advise(ctx context.Context, message string) (string, error)
	Emergency(ctx context.Context) (EmergencyAdvice, error)
}

// AICounselingService 基于大模型接口生成陪伴回复。
type AICounselingService struct {
	client *aiChatClient
}

// NewAICounselingService 构造默认的 AICounselingService。
func NewAICounselingService(settings *SystemSettingService) *AICounselingService {
	return &AICounselingService{
		client: newAIChatClient(settings, defaultOpenAICounselingModel, defaultDeepSeekCounselingModel),
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *AICounselingService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖默认的 OpenAI API 地址。
func (s *AICounselingService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// SetDeepSeekBaseURL 覆盖默认的 DeepSeek API 地址。
func (s *AICounselingService) SetDeepSeekBaseURL(base string) {
	s.client.SetDeepSeekBaseURL(base)
}

// Advise 针对用户倾诉生成一段陪伴回复，系统提示词可在后台覆盖。
func (s *AICounselingService) Advise(ctx context.Context, message string) (string, error) {
	trimmed := truncateRunes(strings.TrimSpace(message), maxCounselingMessageRuneCount)
	logAIExchange("COUNSELING", "prompt", trimmed)

	settings, err := s.client.settings.GetSettings()
	if err != nil {
		return "", err
	}

	systemPrompt := strings.TrimSpace(settings.CounselingPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultCounselingSystemPrompt
	}

	result, err := s.client.callWithSettings(ctx, settings, aiChatRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   trimmed,
		MaxTokens:    defaultCounselingMaxTokens,
		Temperature:  defaultCounselingTemperature,
	})
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(result.Content)
	logAIExchange("COUNSELING", "response", reply)
	return reply, nil
}

// Emergency 生成一组紧急支持话术：首行是情感支持，其余是实操建议。
func (s *AICounselingService) Emergency(ctx context.Context) (EmergencyAdvice, error) {
	result, err := s.client.call(ctx, aiChatRequest{
		SystemPrompt: defaultCounselingSystemPrompt,
		UserPrompt:   emergencyAdvicePrompt,
		MaxTokens:    defaultEmergencyMaxTokens,
		Temperature:  defaultCounselingTemperature,
	})
	if err != nil {
		return EmergencyAdvice{}, err
	}

	logAIExchange("EMERGENCY", "response", result.Content)

	parts := strings.SplitN(strings.TrimSpace(result.Content), "\n", 2)
	advice := EmergencyAdvice{Support: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		advice.Tip = strings.TrimSpace(parts[1])
	}
	return advice, nil
}

func truncateRunes(input string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit])
}
