package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quitbet/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// AIProviderOpenAI 表示使用 OpenAI 能力。
	AIProviderOpenAI = "openai"
	// AIProviderDeepSeek 表示使用 DeepSeek 能力。
	AIProviderDeepSeek = "deepseek"
)

var supportedAIProviders = []string{AIProviderOpenAI, AIProviderDeepSeek}

// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
var ErrAIAPIKeyMissing = errors.New("api key is required")

// SystemSettings 描述后台可配置的系统信息。
type SystemSettings struct {
	SiteName         string
	AIProvider       string
	OpenAIAPIKey     string
	DeepSeekAPIKey   string
	CounselingPrompt string
	JournalPrompt    string
}

// SystemSettingsInput 用于更新系统设置。
type SystemSettingsInput struct {
	SiteName         string
	AIProvider       string
	OpenAIAPIKey     string
	DeepSeekAPIKey   string
	CounselingPrompt string
	JournalPrompt    string
}

// SystemSettingService 提供系统设置的读取与更新能力。
type SystemSettingService struct {
	db              *gorm.DB
	httpClient      *http.Client
	openAIBaseURL   string
	deepSeekBaseURL string
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{
		db:         gdb,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *SystemSettingService) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// SetOpenAIBaseURL 覆盖默认的 OpenAI API 地址。
func (s *SystemSettingService) SetOpenAIBaseURL(base string) {
	s.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetDeepSeekBaseURL 覆盖默认的 DeepSeek API 地址。
func (s *SystemSettingService) SetDeepSeekBaseURL(base string) {
	s.deepSeekBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

var settingKeys = []string{
	db.SettingKeySiteName,
	db.SettingKeyAIProvider,
	db.SettingKeyOpenAIAPIKey,
	db.SettingKeyDeepSeekAPIKey,
	db.SettingKeyCounselingPrompt,
	db.SettingKeyJournalPrompt,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := SystemSettings{SiteName: "QuitBet", AIProvider: AIProviderOpenAI}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeySiteName:
			if strings.TrimSpace(record.Value) != "" {
				result.SiteName = record.Value
			}
		case db.SettingKeyAIProvider:
			if provider := normalizeAIProvider(record.Value); provider != "" {
				result.AIProvider = provider
			}
		case db.SettingKeyOpenAIAPIKey:
			result.OpenAIAPIKey = record.Value
		case db.SettingKeyDeepSeekAPIKey:
			result.DeepSeekAPIKey = record.Value
		case db.SettingKeyCounselingPrompt:
			result.CounselingPrompt = record.Value
		case db.SettingKeyJournalPrompt:
			result.JournalPrompt = record.Value
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置，未填写站点名称时回退默认值。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	provider := normalizeAIProvider(input.AIProvider)
	if provider == "" {
		provider = AIProviderOpenAI
	}

	sanitized := SystemSettings{
		SiteName:         strings.TrimSpace(input.SiteName),
		AIProvider:       provider,
		OpenAIAPIKey:     strings.TrimSpace(input.OpenAIAPIKey),
		DeepSeekAPIKey:   strings.TrimSpace(input.DeepSeekAPIKey),
		CounselingPrompt: strings.TrimSpace(input.CounselingPrompt),
		JournalPrompt:    strings.TrimSpace(input.JournalPrompt),
	}

	if sanitized.SiteName == "" {
		sanitized.SiteName = "QuitBet"
	}

	values := map[string]string{
		db.SettingKeySiteName:         sanitized.SiteName,
		db.SettingKeyAIProvider:       sanitized.AIProvider,
		db.SettingKeyOpenAIAPIKey:     sanitized.OpenAIAPIKey,
		db.SettingKeyDeepSeekAPIKey:   sanitized.DeepSeekAPIKey,
		db.SettingKeyCounselingPrompt: sanitized.CounselingPrompt,
		db.SettingKeyJournalPrompt:    sanitized.JournalPrompt,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			if err := upsertSetting(tx, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return sanitized, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// TestAIConnection 调用指定 AI 平台的模型接口验证 API Key 的有效性。
func (s *SystemSettingService) TestAIConnection(ctx context.Context, provider, apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return ErrAIAPIKeyMissing
	}

	prov := normalizeAIProvider(provider)
	if prov == "" {
		prov = AIProviderOpenAI
	}

	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	base := ""
	label := ""
	switch prov {
	case AIProviderDeepSeek:
		base = s.deepSeekBaseURL
		if strings.TrimSpace(base) == "" {
			base = "https://api.deepseek.com/v1"
		}
		label = "DeepSeek"
	default:
		base = s.openAIBaseURL
		if strings.TrimSpace(base) == "" {
			base = "https://api.openai.com/v1"
		}
		label = "OpenAI"
	}

	endpoint := strings.TrimRight(base, "/") + "/models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", strings.ToLower(label), err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("User-Agent", "quitbet-admin/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s 接口失败: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("%s 返回错误：%s (%s)", label, resp.Status, msg)
		}
		return fmt.Errorf("%s 返回错误：%s", label, resp.Status)
	}

	return nil
}

func normalizeAIProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedAIProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}
