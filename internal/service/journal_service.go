package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quitbet/internal/db"
	"gorm.io/gorm"
)

const (
	defaultOpenAIJournalModel   = "gpt-4o"
	defaultDeepSeekJournalModel = "deepseek-chat"
	defaultJournalTemperature   = 0.7
	maxJournalTextRuneCount     = 4000
)

// ErrJournalTextEmpty 在日记正文为空时返回
var ErrJournalTextEmpty = errors.New("journal text is required")

// JournalAnalysis 为模型对一篇日记的分析结果
type JournalAnalysis struct {
	Sentiment string
	Reply     string
}

// JournalAnalyzer 定义日记情绪分析能力，便于在业务层注入不同实现。
type JournalAnalyzer interface {
	AnalyzeEntry(ctx context.Context, text string) (JournalAnalysis, error)
}

// AIJournalService 基于大模型接口分析情绪日记。
type AIJournalService struct {
	client *aiChatClient
}

// NewAIJournalService 构造默认的 AIJournalService。
func NewAIJournalService(settings *SystemSettingService) *AIJournalService {
	return &AIJournalService{
		client: newAIChatClient(settings, defaultOpenAIJournalModel, defaultDeepSeekJournalModel),
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *AIJournalService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖默认的 OpenAI API 地址。
func (s *AIJournalService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// AnalyzeEntry 让模型识别日记的主要情绪并生成回应。
// 约定回复首行为情绪，其余为回应正文；模型偶尔会带编号前缀，这里统一剥掉。
func (s *AIJournalService) AnalyzeEntry(ctx context.Context, text string) (JournalAnalysis, error) {
	snippet := truncateRunes(strings.TrimSpace(text), maxJournalTextRuneCount)
	userPrompt := buildJournalPrompt(snippet)
	logAIExchange("JOURNAL", "prompt", userPrompt)

	settings, err := s.client.settings.GetSettings()
	if err != nil {
		return JournalAnalysis{}, err
	}

	systemPrompt := strings.TrimSpace(settings.JournalPrompt)
	if systemPrompt == "" {
		systemPrompt = "你是一位温柔的情绪陪伴师。"
	}

	result, err := s.client.callWithSettings(ctx, settings, aiChatRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  defaultJournalTemperature,
	})
	if err != nil {
		return JournalAnalysis{}, err
	}

	logAIExchange("JOURNAL", "response", result.Content)
	return splitJournalReply(result.Content), nil
}

func buildJournalPrompt(text string) string {
	var builder strings.Builder
	builder.WriteString("用户写下了这样一段心事：\n\n")
	builder.WriteString(text)
	builder.WriteString("\n\n1. 这段文字中最主要的情绪是什么？直接给出一个词，例如：难过、焦虑、愤怒、希望。\n")
	builder.WriteString("2. 请像一位温柔的倾听者那样，给出一段共情且鼓励的回应。")
	return builder.String()
}

func splitJournalReply(content string) JournalAnalysis {
	parts := strings.SplitN(strings.TrimSpace(content), "\n", 2)

	sentiment := strings.TrimSpace(parts[0])
	sentiment = strings.TrimPrefix(sentiment, "1.")
	sentiment = strings.TrimPrefix(sentiment, "1、")
	sentiment = strings.TrimSpace(sentiment)

	reply := ""
	if len(parts) > 1 {
		reply = strings.TrimSpace(parts[1])
		reply = strings.TrimPrefix(reply, "2.")
		reply = strings.TrimPrefix(reply, "2、")
		reply = strings.TrimSpace(reply)
	}

	return JournalAnalysis{Sentiment: sentiment, Reply: reply}
}

// JournalService 负责情绪日记的写入与查询
type JournalService struct {
	db       *gorm.DB
	analyzer JournalAnalyzer
}

// NewJournalService 构造 JournalService
func NewJournalService(gdb *gorm.DB, analyzer JournalAnalyzer) *JournalService {
	return &JournalService{db: gdb, analyzer: analyzer}
}

// Create 保存一篇日记：正文剥掉 HTML 标签，分析结果与渲染后的回应一起落库
func (s *JournalService) Create(ctx context.Context, userID uint, text string) (*db.JournalEntry, error) {
	plain := stripHTML(text)
	if plain == "" {
		return nil, ErrJournalTextEmpty
	}

	analysis, err := s.analyzer.AnalyzeEntry(ctx, plain)
	if err != nil {
		return nil, fmt.Errorf("analyze journal: %w", err)
	}

	entry := db.JournalEntry{
		UserID:    userID,
		Text:      plain,
		Sentiment: analysis.Sentiment,
		Reply:     analysis.Reply,
		ReplyHTML: renderMarkdownHTML(analysis.Reply),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	return &entry, nil
}

// List 返回用户的日记列表，按时间倒序
func (s *JournalService) List(userID uint) ([]db.JournalEntry, error) {
	var entries []db.JournalEntry
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return entries, nil
}
