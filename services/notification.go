package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"application-intake/models"
)

type NotificationService struct {
	webhookURL string
	baseURL    string
}

func NewNotificationService(webhookURL, baseURL string) *NotificationService {
	return &NotificationService{
		webhookURL: webhookURL,
		baseURL:    baseURL,
	}
}

// 实习类型/时段的展示名映射
var typeLabels = map[string]string{
	"architecture": "Architecture",
	"engineering":  "Engineering",
	"design":       "Design",
	"business":     "Business",
	"other":        "Other",
}

var periodLabels = map[string]string{
	"summer":   "Summer",
	"spring":   "Spring",
	"fall":     "Fall",
	"winter":   "Winter",
	"flexible": "Flexible",
}

// NotifyNewApplication 新申请到达时异步发送 Slack 通知。
// 不阻塞调用方，所有失败只记日志，绝不向上传播。
func (s *NotificationService) NotifyNewApplication(app *models.Application, portfolioURL string) {
	if s.webhookURL == "" {
		return
	}

	go func() {
		payload := s.buildSlackPayload(app, portfolioURL)
		if err := s.sendWebhook(s.webhookURL, payload); err != nil {
			log.Printf("发送 Slack 通知失败: %v", err)
		}
	}()
}

// PortfolioViewURL 作品集的公开查看链接（供 Slack 消息使用，无需认证）
func (s *NotificationService) PortfolioViewURL(fileID string) string {
	return fmt.Sprintf("%s/api/files/%s/view", s.baseURL, fileID)
}

// buildSlackPayload 构建 Slack 消息
func (s *NotificationService) buildSlackPayload(app *models.Application, portfolioURL string) interface{} {
	personalInfo := subDocument(app.Data, "personalInfo")
	internshipDetails := subDocument(app.Data, "internshipDetails")

	name := stringField(personalInfo, "fullName")
	if name == "" {
		name = app.Name
	}
	if name == "" {
		name = "Unknown Applicant"
	}

	email := stringField(personalInfo, "email")
	if email == "" {
		email = "N/A"
	}

	blocks := []map[string]interface{}{
		{
			"type": "header",
			"text": map[string]interface{}{
				"type": "plain_text",
				"text": "🎯 New Internship Application",
			},
		},
		{
			"type": "section",
			"fields": []map[string]interface{}{
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Name:*\n%s", name),
				},
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Type:*\n%s", labelFor(typeLabels, stringField(internshipDetails, "type"))),
				},
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Period:*\n%s", labelFor(periodLabels, stringField(internshipDetails, "period"))),
				},
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Email:*\n%s", email),
				},
			},
		},
	}

	if portfolioURL != "" {
		blocks = append(blocks, map[string]interface{}{
			"type": "section",
			"text": map[string]interface{}{
				"type": "mrkdwn",
				"text": fmt.Sprintf("📄 *Portfolio:* <%s|View Portfolio>", portfolioURL),
			},
		})
	}

	return map[string]interface{}{
		"text":   "🎯 New Internship Application Received!",
		"blocks": blocks,
	}
}

// sendWebhook 发送 Webhook 请求
func (s *NotificationService) sendWebhook(url string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook 返回错误: %d, %s", resp.StatusCode, string(body))
	}

	return nil
}

// labelFor 取映射的展示名，未知值退回原始值，空值退回 Unknown
func labelFor(labels map[string]string, value string) string {
	if label, ok := labels[value]; ok {
		return label
	}
	if value != "" {
		return value
	}
	return "Unknown"
}

func subDocument(data map[string]interface{}, key string) map[string]interface{} {
	if data == nil {
		return nil
	}
	if sub, ok := data[key].(map[string]interface{}); ok {
		return sub
	}
	return nil
}

func stringField(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	if value, ok := data[key].(string); ok {
		return value
	}
	return ""
}
