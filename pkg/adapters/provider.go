// Package adapters は複数の画像生成ベンダーを単一のインターフェースに正規化します。
// 1回の実行で有効になるプロバイダは常に1つで、起動時の設定値で選択されます。
package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// ImageGenerator は画像生成ベンダー1社への統一窓口です。
// プロンプトを送信し、生成された画像バイナリを受け取ります。
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error)
}

// Config はアダプター生成に必要な設定値です。
type Config struct {
	Name         domain.ProviderName
	APIKey       string
	Model        string // 空の場合はベンダーごとの既定モデル
	MaxPromptLen int    // 0 の場合はベンダーごとの既定値
}

// Deps はアダプターが依存する通信クライアント群です。
type Deps struct {
	HTTPClient httpkit.ClientInterface // OpenAI / Ideogram / Stability で必須
	AIClient   gemini.GenerativeModel  // Gemini 選択時のみ必須
}

// New は設定されたプロバイダ名に対応するアダプターを構築します。
// 選択は起動時の一点のみで、以降のポリモーフィズムはこのインターフェース経由です。
func New(cfg Config, deps Deps) (ImageGenerator, error) {
	switch cfg.Name {
	case domain.ProviderOpenAI:
		return NewOpenAIAdapter(deps.HTTPClient, cfg.APIKey, cfg.Model, cfg.MaxPromptLen)
	case domain.ProviderIdeogram:
		return NewIdeogramAdapter(deps.HTTPClient, cfg.APIKey, cfg.MaxPromptLen)
	case domain.ProviderStability:
		return NewStabilityAdapter(deps.HTTPClient, cfg.APIKey, cfg.Model, cfg.MaxPromptLen)
	case domain.ProviderGemini:
		return NewGeminiAdapter(deps.AIClient, cfg.Model, cfg.MaxPromptLen)
	default:
		return nil, fmt.Errorf("未対応のプロバイダです: %q", cfg.Name)
	}
}

// validatePrompt はプロンプトの共通バリデーションです。
// 空プロンプトと上限超過は送信前に拒否します。
func validatePrompt(prompt string, maxLen int) error {
	if strings.TrimSpace(prompt) == "" {
		return domain.Kindf(domain.KindGeneration, "プロンプトが空です")
	}
	if maxLen > 0 && len([]rune(prompt)) > maxLen {
		return domain.Kindf(domain.KindGeneration, "プロンプトが上限 %d 文字を超えています (%d 文字)", maxLen, len([]rune(prompt)))
	}
	return nil
}
