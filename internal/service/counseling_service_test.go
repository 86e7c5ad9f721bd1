package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/quitbet/internal/db"
)

// stubChatDoer 返回固定的 chat-completions 响应并记录请求
type stubChatDoer struct {
	status   int
	body     string
	lastReq  *http.Request
	lastBody []byte
}

func (d *stubChatDoer) Do(req *http.Request) (*http.Response, error) {
	d.lastReq = req
	if req.Body != nil {
		d.lastBody, _ = io.ReadAll(req.Body)
	}
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(d.body)),
		Header:     make(http.Header),
	}, nil
}

func setupCounselingTest(t *testing.T) (*AICounselingService, *SystemSettingService, func()) {
	t.Helper()
	cleanup := setupTestDB(t, &db.SystemSetting{})
	settings := NewSystemSettingService(db.DB)
	return NewAICounselingService(settings), settings, cleanup
}

func TestCounselingAdviseUsesConfiguredKey(t *testing.T) {
	svc, settings, cleanup := setupCounselingTest(t)
	defer cleanup()

	if _, err := settings.UpdateSettings(SystemSettingsInput{OpenAIAPIKey: "sk-test"}); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	doer := &stubChatDoer{body: `{"choices":[{"message":{"role":"assistant","content":"你已经撑过了最难的一刻。"}}]}`}
	svc.SetHTTPClient(doer)

	reply, err := svc.Advise(context.Background(), "我今晚差点又去下注")
	if err != nil {
		t.Fatalf("advise failed: %v", err)
	}
	if reply != "你已经撑过了最难的一刻。" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if got := doer.lastReq.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Fatalf("unexpected authorization header: %q", got)
	}
	if !bytes.Contains(doer.lastBody, []byte("gpt-3.5-turbo")) {
		t.Fatalf("expected default openai model in request body: %s", doer.lastBody)
	}
}

func TestCounselingAdviseWithoutKey(t *testing.T) {
	svc, _, cleanup := setupCounselingTest(t)
	defer cleanup()

	svc.SetHTTPClient(&stubChatDoer{body: `{}`})

	if _, err := svc.Advise(context.Background(), "你好"); !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected ErrAIAPIKeyMissing, got %v", err)
	}
}

func TestCounselingAdviseSurfacesAPIError(t *testing.T) {
	svc, settings, cleanup := setupCounselingTest(t)
	defer cleanup()

	if _, err := settings.UpdateSettings(SystemSettingsInput{OpenAIAPIKey: "sk-test"}); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	svc.SetHTTPClient(&stubChatDoer{
		status: http.StatusUnauthorized,
		body:   `{"error":{"message":"invalid api key"}}`,
	})

	if _, err := svc.Advise(context.Background(), "你好"); err == nil {
		t.Fatal("expected error from API failure")
	}
}

func TestCounselingEmergencySplitsSupportAndTip(t *testing.T) {
	svc, settings, cleanup := setupCounselingTest(t)
	defer cleanup()

	if _, err := settings.UpdateSettings(SystemSettingsInput{OpenAIAPIKey: "sk-test"}); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	svc.SetHTTPClient(&stubChatDoer{
		body: `{"choices":[{"message":{"role":"assistant","content":"这股冲动会过去的，你不是一个人。\n现在就出门走十分钟，离开手机。"}}]}`,
	})

	advice, err := svc.Emergency(context.Background())
	if err != nil {
		t.Fatalf("emergency failed: %v", err)
	}
	if advice.Support != "这股冲动会过去的，你不是一个人。" {
		t.Fatalf("unexpected support line: %q", advice.Support)
	}
	if advice.Tip != "现在就出门走十分钟，离开手机。" {
		t.Fatalf("unexpected tip line: %q", advice.Tip)
	}
}

func TestCounselingDeepSeekProviderRouting(t *testing.T) {
	svc, settings, cleanup := setupCounselingTest(t)
	defer cleanup()

	if _, err := settings.UpdateSettings(SystemSettingsInput{
		AIProvider:     AIProviderDeepSeek,
		DeepSeekAPIKey: "ds-test",
	}); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	doer := &stubChatDoer{body: `{"choices":[{"message":{"role":"assistant","content":"收到。"}}]}`}
	svc.SetHTTPClient(doer)

	if _, err := svc.Advise(context.Background(), "测试"); err != nil {
		t.Fatalf("advise failed: %v", err)
	}
	if host := doer.lastReq.URL.Host; host != "api.deepseek.com" {
		t.Fatalf("expected deepseek endpoint, got %s", host)
	}
	if !bytes.Contains(doer.lastBody, []byte("deepseek-chat")) {
		t.Fatalf("expected deepseek model in request body: %s", doer.lastBody)
	}
}
