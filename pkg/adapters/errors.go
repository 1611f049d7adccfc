package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// レートリミット時の再試行上限。無制限リトライは行いません。
const rateLimitMaxRetries = 3

// classifyTransportErr は通信エラーを行単位のエラー分類に落とし込みます。
// httpkit は非 2xx 応答をステータス情報込みのエラーとして返すため、
// ステータスコードはエラーメッセージから判定します。
func classifyTransportErr(err error) domain.ErrKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.KindGeneration
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "403") || strings.Contains(msg, "forbidden") ||
		strings.Contains(msg, "invalid api key"):
		return domain.KindAuthentication
	case strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "rate limit"):
		return domain.KindRateLimit
	default:
		return domain.KindGeneration
	}
}

// authedJSONRequest は Bearer 認証付きの JSON リクエストを組み立てます。
func authedJSONRequest(ctx context.Context, method, url, apiKey string, payload any) (*http.Request, error) {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req, nil
}

// doWithRetry はリクエストを実行し、レートリミット時のみ指数バックオフで再試行します。
// リクエストボディを再送するため、*http.Request ではなくファクトリを受け取ります。
func doWithRetry(ctx context.Context, client httpkit.ClientInterface, newReq func() (*http.Request, error)) ([]byte, error) {
	operation := func() ([]byte, error) {
		req, err := newReq()
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		body, err := client.DoRequest(req)
		if err != nil {
			kind := classifyTransportErr(err)
			wrapped := domain.WrapKind(kind, err)
			if kind == domain.KindRateLimit {
				return nil, wrapped // 再試行可能
			}
			return nil, backoff.Permanent(wrapped)
		}
		return body, nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), rateLimitMaxRetries),
		ctx,
	)
	return backoff.RetryWithData(operation, bo)
}
