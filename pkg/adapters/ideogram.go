package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/pose-image-kit/pkg/domain"
	"github.com/shouni/pose-image-kit/pkg/utils"
)

const (
	ideogramEndpoint        = "https://api.ideogram.ai/api/v1/generation"
	defaultIdeogramMaxLen   = 2000
	defaultIdeogramInterval = 2 * time.Second
	defaultIdeogramMaxPolls = 30
)

// errIdeogramPending はポーリング継続を表す内部エラーです。
var errIdeogramPending = errors.New("generation still pending")

// IdeogramAdapter は Ideogram API へのアダプターです。
// 生成は非同期なので、投入後に完了をポーリングし、返された画像 URL をダウンロードします。
type IdeogramAdapter struct {
	httpClient   httpkit.ClientInterface
	apiKey       string
	maxPromptLen int
	pollInterval time.Duration
	maxPolls     uint64
}

// NewIdeogramAdapter は依存関係を注入して IdeogramAdapter を初期化します。
func NewIdeogramAdapter(httpClient httpkit.ClientInterface, apiKey string, maxPromptLen int) (*IdeogramAdapter, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	if maxPromptLen <= 0 {
		maxPromptLen = defaultIdeogramMaxLen
	}

	return &IdeogramAdapter{
		httpClient:   httpClient,
		apiKey:       apiKey,
		maxPromptLen: maxPromptLen,
		pollInterval: defaultIdeogramInterval,
		maxPolls:     defaultIdeogramMaxPolls,
	}, nil
}

type ideogramGenerateRequest struct {
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
}

type ideogramGenerateResponse struct {
	GenerationID string `json:"generation_id"`
}

type ideogramStatusResponse struct {
	State    string `json:"state"`
	ImageURL string `json:"image_url"`
}

// Generate は生成ジョブを投入し、完了までポーリングしてから画像をダウンロードします。
func (a *IdeogramAdapter) Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	if err := validatePrompt(prompt, a.maxPromptLen); err != nil {
		return nil, err
	}

	generationID, err := a.submit(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("Ideogram生成ジョブの投入に失敗しました: %w", err)
	}

	imageURL, err := a.waitForCompletion(ctx, generationID)
	if err != nil {
		return nil, err
	}

	return a.download(ctx, imageURL)
}

func (a *IdeogramAdapter) submit(ctx context.Context, prompt string) (string, error) {
	payload := ideogramGenerateRequest{
		Prompt:      prompt,
		Style:       "illustration", // ヨガポーズのイラスト向けスタイル
		AspectRatio: "1:1",
	}

	body, err := doWithRetry(ctx, a.httpClient, func() (*http.Request, error) {
		return authedJSONRequest(ctx, http.MethodPost, ideogramEndpoint, a.apiKey, payload)
	})
	if err != nil {
		return "", err
	}

	var resp ideogramGenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", domain.Kindf(domain.KindGeneration, "Ideogram応答の解析に失敗しました: %v", err)
	}
	if resp.GenerationID == "" {
		return "", domain.Kindf(domain.KindGeneration, "Ideogramから generation_id が返されませんでした")
	}
	return resp.GenerationID, nil
}

// waitForCompletion は一定間隔で生成状態を確認し、完了時の画像 URL を返します。
func (a *IdeogramAdapter) waitForCompletion(ctx context.Context, generationID string) (string, error) {
	statusURL := fmt.Sprintf("%s/%s", ideogramEndpoint, generationID)

	operation := func() (string, error) {
		req, err := authedJSONRequest(ctx, http.MethodGet, statusURL, a.apiKey, nil)
		if err != nil {
			return "", backoff.Permanent(err)
		}

		body, err := a.httpClient.DoRequest(req)
		if err != nil {
			return "", backoff.Permanent(domain.WrapKind(classifyTransportErr(err), err))
		}

		var status ideogramStatusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			return "", backoff.Permanent(domain.Kindf(domain.KindGeneration, "Ideogram状態応答の解析に失敗しました: %v", err))
		}

		switch status.State {
		case "completed":
			if status.ImageURL == "" {
				return "", backoff.Permanent(domain.Kindf(domain.KindGeneration, "完了済みジョブに image_url がありません"))
			}
			return status.ImageURL, nil
		case "failed":
			return "", backoff.Permanent(domain.Kindf(domain.KindGeneration, "Ideogram側で生成が失敗しました"))
		default:
			return "", errIdeogramPending
		}
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(a.pollInterval), a.maxPolls),
		ctx,
	)
	imageURL, err := backoff.RetryWithData(operation, bo)
	if err != nil {
		if errors.Is(err, errIdeogramPending) {
			return "", domain.Kindf(domain.KindGeneration, "Ideogram生成のポーリングがタイムアウトしました (generation_id=%s)", generationID)
		}
		return "", err
	}
	return imageURL, nil
}

func (a *IdeogramAdapter) download(ctx context.Context, imageURL string) (*domain.GeneratedImage, error) {
	if safe, err := utils.IsSafeURL(imageURL); !safe || err != nil {
		return nil, domain.Kindf(domain.KindGeneration, "Ideogramが返した画像URLが不正です: %v", err)
	}

	data, err := a.httpClient.FetchBytes(ctx, imageURL)
	if err != nil {
		return nil, domain.WrapKind(classifyTransportErr(err), fmt.Errorf("Ideogram画像のダウンロードに失敗しました: %w", err))
	}

	return &domain.GeneratedImage{
		Data:     data,
		MimeType: http.DetectContentType(data),
	}, nil
}
