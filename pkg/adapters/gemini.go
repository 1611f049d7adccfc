package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

const (
	defaultGeminiModel  = "imagen-3.0"
	defaultGeminiMaxLen = 4000
	geminiAspectRatio   = "1:1"
)

// GeminiAdapter は Gemini (Imagen) へのアダプターです。
// 他ベンダーと異なり HTTP を直接組み立てず、SDK クライアント経由で生成します。
type GeminiAdapter struct {
	aiClient     gemini.GenerativeModel
	model        string
	maxPromptLen int
}

// NewGeminiAdapter は依存関係を注入して GeminiAdapter を初期化します。
func NewGeminiAdapter(aiClient gemini.GenerativeModel, model string, maxPromptLen int) (*GeminiAdapter, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if maxPromptLen <= 0 {
		maxPromptLen = defaultGeminiMaxLen
	}

	return &GeminiAdapter{
		aiClient:     aiClient,
		model:        model,
		maxPromptLen: maxPromptLen,
	}, nil
}

// Generate はテキストパーツのみで生成を実行し、最初の画像候補を返します。
func (a *GeminiAdapter) Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	if err := validatePrompt(prompt, a.maxPromptLen); err != nil {
		return nil, err
	}

	parts := []*genai.Part{{Text: prompt}}
	opts := gemini.GenerateOptions{AspectRatio: geminiAspectRatio}

	resp, err := a.aiClient.GenerateWithParts(ctx, a.model, parts, opts)
	if err != nil {
		return nil, domain.WrapKind(classifyTransportErr(err), fmt.Errorf("Gemini画像生成エラー: %w", err))
	}

	return parseGeminiResponse(resp)
}

// parseGeminiResponse は Gemini のレスポンスから画像バイナリを抽出します。
func parseGeminiResponse(resp *gemini.Response) (*domain.GeneratedImage, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, domain.Kindf(domain.KindGeneration, "Geminiからの有効な応答がありませんでした")
	}

	// 最初の候補 (Candidate) のみを利用する
	candidate := resp.RawResponse.Candidates[0]

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mimeType := part.InlineData.MIMEType
				if mimeType == "" {
					mimeType = http.DetectContentType(part.InlineData.Data)
				}
				return &domain.GeneratedImage{
					Data:     part.InlineData.Data,
					MimeType: mimeType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, domain.Kindf(domain.KindGeneration, "画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}

	return nil, domain.Kindf(domain.KindGeneration, "画像データが見つかりませんでした")
}
