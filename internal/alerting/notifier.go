package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pricewatch/internal/volatility"
)

// Notification 封装一次波动摘要推送。
type Notification struct {
	DataDate      time.Time
	UpdateTime    string
	Criteria      volatility.Criteria
	Total         int
	Rows          []volatility.Summary
	AdditionalMsg string
}

// Notifier 定义告警输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// NewNotification truncates report rows to maxRows for delivery.
func NewNotification(report *volatility.Report, updateTime string, maxRows int) Notification {
	note := Notification{UpdateTime: updateTime}
	if report == nil {
		return note
	}
	note.DataDate = report.LatestDate
	note.Criteria = report.Criteria
	note.Total = report.Count()
	rows := report.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	note.Rows = rows
	return note
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 告警器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]any{
		"chat_id":                  n.chatID,
		"text":                     RenderMessage(note),
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false")
		}
	}

	n.logger.Info().Time("data_date", note.DataDate).
		Int("total", note.Total).
		Int("sent", len(note.Rows)).
		Str("criteria", note.Criteria.String()).
		Msg("告警已发送 (Telegram)")
	return nil
}

// RenderMessage formats a digest as plain text.
func RenderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[ASIN Volatility Report]\n")
	builder.WriteString(fmt.Sprintf("Data updated: %s %s\n", note.DataDate.Format(time.DateOnly), note.UpdateTime))
	builder.WriteString(fmt.Sprintf("Filters: %s\n", note.Criteria.String()))
	builder.WriteString(fmt.Sprintf("Qualifying ASINs: %d\n", note.Total))
	for _, row := range note.Rows {
		builder.WriteString(fmt.Sprintf("- %s %s now %s, 3d %s, 5d %s%s\n",
			row.ASIN,
			row.Brand,
			row.CurrentPriceText,
			row.Price3DaysAgo,
			row.Price5DaysAgo,
			flagSuffix(row),
		))
		builder.WriteString("  " + row.ProductURL + "\n")
	}
	if hidden := note.Total - len(note.Rows); hidden > 0 {
		builder.WriteString(fmt.Sprintf("... and %d more\n", hidden))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

func flagSuffix(row volatility.Summary) string {
	var tags []string
	if row.Had3DayFlag {
		tags = append(tags, "3d>5%")
	}
	if row.Had5DayFlag {
		tags = append(tags, "5d>10%")
	}
	if len(tags) == 0 {
		return ""
	}
	return " [" + strings.Join(tags, " ") + "]"
}

var _ Notifier = (*TelegramNotifier)(nil)
