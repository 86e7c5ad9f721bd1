package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer 定义对外发信能力，发送失败不应阻断主流程。
type Mailer interface {
	SendAttemptAlert(ctx context.Context, to, name, url string, when time.Time) error
	SendAccountNotice(ctx context.Context, to, name, message string) error
	SendEmergencyAlert(ctx context.Context, recipients []string, userName string) error
}

// EmailService 通过 Amazon SES 发送提醒邮件
// 未配置发信地址时服务处于禁用态，所有发送调用直接跳过
type EmailService struct {
	client   *sesv2.Client
	from     string
	fromName string
	baseURL  string
	enabled  bool
}

// NewEmailService 构造 EmailService；fromEmail 为空时返回禁用实例。
// baseURL 为应用入口地址，用于在邮件正文中附带回访链接。
func NewEmailService(ctx context.Context, region, fromEmail, fromName, baseURL string) (*EmailService, error) {
	if strings.TrimSpace(fromEmail) == "" {
		log.Println("邮件服务未启用：缺少 MAIL_FROM 配置")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	log.Printf("邮件服务已启用: from=%s region=%s", fromEmail, region)
	return &EmailService{
		client:   sesv2.NewFromConfig(cfg),
		from:     strings.TrimSpace(fromEmail),
		fromName: strings.TrimSpace(fromName),
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		enabled:  true,
	}, nil
}

// Enabled 返回邮件服务是否可用
func (s *EmailService) Enabled() bool {
	return s.enabled
}

func (s *EmailService) send(ctx context.Context, recipients []string, subject, body string) error {
	if !s.enabled {
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}

	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// SendAttemptAlert 在检测到访问尝试后提醒用户本人
func (s *EmailService) SendAttemptAlert(ctx context.Context, to, name, url string, when time.Time) error {
	subject := "拦截提醒：检测到一次访问尝试"
	return s.send(ctx, []string{to}, subject, attemptAlertBody(name, url, when, s.baseURL))
}

// SendAccountNotice 发送账号变更类通知
func (s *EmailService) SendAccountNotice(ctx context.Context, to, name, message string) error {
	subject := "账号通知"
	body := fmt.Sprintf("%s，你好：\n\n%s\n\n如果这不是你本人的操作，请尽快联系支持团队。\n", name, message)
	return s.send(ctx, []string{to}, subject, body)
}

// SendEmergencyAlert 向紧急联系人群发求助提醒
func (s *EmailService) SendEmergencyAlert(ctx context.Context, recipients []string, userName string) error {
	subject := "紧急提醒：你的朋友需要支持"
	return s.send(ctx, recipients, subject, emergencyAlertBody(userName, s.baseURL))
}

func attemptAlertBody(name, url string, when time.Time, baseURL string) string {
	body := fmt.Sprintf(
		"%s，你好：\n\n我们在你的设备上检测到一次对 %s 的访问尝试。\n\n如果这不是你本人的操作，建议检查一下设备的安全设置。\n\n时间：%s\n",
		name, url, when.UTC().Format("2006-01-02 15:04:05"),
	)
	if baseURL != "" {
		body += fmt.Sprintf("\n打开 %s 查看你的连胜进度，坚持住。\n", baseURL)
	}
	return body
}

func emergencyAlertBody(userName, baseURL string) string {
	body := fmt.Sprintf(
		"你好：\n\n%s 此刻正处在复赌风险中，把你登记为紧急联系人。\n\n请尽快联系 TA，陪 TA 度过这个时刻。\n",
		userName,
	)
	if baseURL != "" {
		body += fmt.Sprintf("\n了解如何提供支持：%s/support\n", baseURL)
	}
	return body
}
