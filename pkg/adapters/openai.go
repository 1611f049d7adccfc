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
	openAIEndpoint      = "https://api.openai.com/v1/images/generations"
	defaultOpenAIModel  = "dall-e-3"
	defaultOpenAIMaxLen = 4000 // dall-e-3 のプロンプト上限
	defaultOpenAISize   = "1024x1024"
)

// OpenAIAdapter は OpenAI Images API (dall-e-3) へのアダプターです。
// 画像は b64_json 形式で1枚だけ受け取ります。
type OpenAIAdapter struct {
	httpClient   httpkit.ClientInterface
	apiKey       string
	model        string
	maxPromptLen int
}

// NewOpenAIAdapter は依存関係を注入して OpenAIAdapter を初期化します。
func NewOpenAIAdapter(httpClient httpkit.ClientInterface, apiKey, model string, maxPromptLen int) (*OpenAIAdapter, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if maxPromptLen <= 0 {
		maxPromptLen = defaultOpenAIMaxLen
	}

	return &OpenAIAdapter{
		httpClient:   httpClient,
		apiKey:       apiKey,
		model:        model,
		maxPromptLen: maxPromptLen,
	}, nil
}

type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type openAIImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate はプロンプトを送信し、base64 デコード済みの画像バイナリを返します。
func (a *OpenAIAdapter) Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	if err := validatePrompt(prompt, a.maxPromptLen); err != nil {
		return nil, err
	}

	payload := openAIImageRequest{
		Model:          a.model,
		Prompt:         prompt,
		N:              1,
		Size:           defaultOpenAISize,
		ResponseFormat: "b64_json",
	}

	body, err := doWithRetry(ctx, a.httpClient, func() (*http.Request, error) {
		return authedJSONRequest(ctx, http.MethodPost, openAIEndpoint, a.apiKey, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI画像生成エラー: %w", err)
	}

	var resp openAIImageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.Kindf(domain.KindGeneration, "OpenAI応答の解析に失敗しました: %v", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, domain.Kindf(domain.KindGeneration, "OpenAIから画像データが返されませんでした")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, domain.Kindf(domain.KindGeneration, "OpenAI画像のbase64デコードに失敗しました: %v", err)
	}

	return &domain.GeneratedImage{
		Data:     raw,
		MimeType: http.DetectContentType(raw),
	}, nil
}
