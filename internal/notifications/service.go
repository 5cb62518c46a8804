package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"sweeper/internal/config"
	"sweeper/internal/dedupe"
	"sweeper/internal/executor"
)

const userAgent = "Sweeper/0.1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyRunCompleted(ctx context.Context, plan *dedupe.Plan, result *executor.Result) error
	NotifyRunFailed(ctx context.Context, runContext string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, plan *dedupe.Plan, result *executor.Result) error {
	mode := "plan"
	if result != nil {
		mode = string(result.Mode)
	}
	message := fmt.Sprintf("Scanned %d items: %d duplicate groups, %s recoverable",
		plan.ItemsScanned, plan.GroupsFound, humanize.IBytes(uint64(plan.SpaceRecoverableBytes)))
	if result != nil && result.Mode == executor.ModeLive {
		message = fmt.Sprintf("%s; removed %d, %d failed", message, result.ItemsRemoved, result.ItemsFailed)
	}
	return n.send(ctx, payload{
		title:   fmt.Sprintf("Sweeper - Run Completed (%s)", mode),
		message: message,
		tags:    []string{"sweeper", "run", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, runContext string, err error) error {
	return n.send(ctx, payload{
		title:    "Sweeper - Run Failed",
		message:  fmt.Sprintf("%s: %v", runContext, err),
		tags:     []string{"sweeper", "run", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:   "Sweeper - Test",
		message: "Notifications are configured correctly",
		tags:    []string{"sweeper", "test"},
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("ntfy returned %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, *dedupe.Plan, *executor.Result) error {
	return nil
}

func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
