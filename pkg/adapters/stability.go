package adapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

const (
	stabilityEndpointFmt   = "https://api.stability.ai/v1/generation/%s/text-to-image"
	defaultStabilityEngine = "stable-diffusion-xl-1024-v1-0"
	defaultStabilityMaxLen = 2000
)

// StabilityAdapter は Stability AI の text-to-image API へのアダプターです。
// 応答の artifacts 配列から最初の1枚を取り出します。
type StabilityAdapter struct {
	httpClient   httpkit.ClientInterface
	apiKey       string
	endpoint     string
	maxPromptLen int
}

// NewStabilityAdapter は依存関係を注入して StabilityAdapter を初期化します。
// engine が空の場合は SDXL 1024 を使います。
func NewStabilityAdapter(httpClient httpkit.ClientInterface, apiKey, engine string, maxPromptLen int) (*StabilityAdapter, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	if engine == "" {
		engine = defaultStabilityEngine
	}
	if maxPromptLen <= 0 {
		maxPromptLen = defaultStabilityMaxLen
	}

	return &StabilityAdapter{
		httpClient:   httpClient,
		apiKey:       apiKey,
		endpoint:     fmt.Sprintf(stabilityEndpointFmt, engine),
		maxPromptLen: maxPromptLen,
	}, nil
}

type stabilityTextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type stabilityRequest struct {
	TextPrompts []stabilityTextPrompt `json:"text_prompts"`
	CfgScale    int                   `json:"cfg_scale"`
	Height      int                   `json:"height"`
	Width       int                   `json:"width"`
	Samples     int                   `json:"samples"`
	Steps       int                   `json:"steps"`
}

type stabilityResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

// Generate はプロンプトを送信し、artifacts からデコードした画像バイナリを返します。
func (a *StabilityAdapter) Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	if err := validatePrompt(prompt, a.maxPromptLen); err != nil {
		return nil, err
	}

	payload := stabilityRequest{
		TextPrompts: []stabilityTextPrompt{{Text: prompt, Weight: 1.0}},
		CfgScale:    7,
		Height:      1024,
		Width:       1024,
		Samples:     1,
		Steps:       30,
	}

	body, err := doWithRetry(ctx, a.httpClient, func() (*http.Request, error) {
		return authedJSONRequest(ctx, http.MethodPost, a.endpoint, a.apiKey, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("Stability画像生成エラー: %w", err)
	}

	var resp stabilityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.Kindf(domain.KindGeneration, "Stability応答の解析に失敗しました: %v", err)
	}
	if len(resp.Artifacts) == 0 || resp.Artifacts[0].Base64 == "" {
		return nil, domain.Kindf(domain.KindGeneration, "Stabilityから画像 artifacts が返されませんでした")
	}

	// 安全フィルターによる差し替えを拒否として扱う
	if reason := resp.Artifacts[0].FinishReason; reason == "CONTENT_FILTERED" {
		return nil, domain.Kindf(domain.KindGeneration, "Stabilityの安全フィルターにより生成がブロックされました")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Artifacts[0].Base64)
	if err != nil {
		return nil, domain.Kindf(domain.KindGeneration, "Stability画像のbase64デコードに失敗しました: %v", err)
	}

	return &domain.GeneratedImage{
		Data:     raw,
		MimeType: http.DetectContentType(raw),
	}, nil
}
