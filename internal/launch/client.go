package launch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/spim-dispatch/internal/domain"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 1 * 1024 * 1024 // 1 MB
)

// Submitter отправляет один RunRequest сервису запуска.
//
// Возвращает непрозрачный идентификатор запуска. Ошибки обязаны
// классифицироваться через ErrTransient / ErrValidation.
type Submitter interface {
	Submit(ctx context.Context, req domain.RunRequest) (string, error)
}

// SubmitterFunc — адаптер функции к интерфейсу Submitter.
type SubmitterFunc func(ctx context.Context, req domain.RunRequest) (string, error)

// Submit реализует Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, req domain.RunRequest) (string, error) {
	return f(ctx, req)
}

// Client — HTTP-клиент сервиса запуска вычислений.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient создаёт клиент сервиса запуска.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// computationRequest — тело запроса POST /computations.
type computationRequest struct {
	CapsuleID  string             `json:"capsule_id"`
	Parameters map[string]string  `json:"parameters,omitempty"`
	DataAssets []domain.DataAsset `json:"data_assets,omitempty"`
}

// computationResponse — ответ сервиса на создание вычисления.
type computationResponse struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	Created int64  `json:"created"`
}

// Submit отправляет запрос на запуск вычисления.
//
// Транспортные ошибки (включая таймаут) возвращаются как ErrTransient:
// ответ мог потеряться, но backend у сервиса идемпотентный на стороне
// пайплайна — повтор безопасен до первой успешной отправки.
func (c *Client) Submit(ctx context.Context, req domain.RunRequest) (string, error) {
	body, err := json.Marshal(computationRequest{
		CapsuleID:  req.CapsuleID,
		Parameters: req.Parameters,
		DataAssets: req.DataAssets,
	})
	if err != nil {
		return "", fmt.Errorf("marshal computation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/computations", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrTransient, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTransient, err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var comp computationResponse
	if err := json.Unmarshal(respBody, &comp); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrValidation, err)
	}
	if comp.ID == "" {
		return "", fmt.Errorf("%w: response without computation id", ErrValidation)
	}

	return comp.ID, nil
}
