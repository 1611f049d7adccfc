// Package prompt はポーズ行から画像生成プロンプトを組み立てます。
package prompt

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// DefaultMaxLen は生成プロンプトの既定の最大長（文字数）です。
// 対応プロバイダのうち最も短い上限（OpenAI dall-e-3 の 4000 文字）に合わせています。
const DefaultMaxLen = 4000

// 空フィールドの代替トークン。穴あきの不自然なプロンプトを避けるための中立値です。
const (
	defaultStyle      = "clean vector illustration"
	defaultBackground = "plain white"
	defaultTheme      = "minimalist wellness theme"
	defaultTitle      = "meditation"
)

// Builder はポーズ行からプロンプト文字列を決定的に組み立てます。
// 副作用を持たない純粋なコンポーネントです。
type Builder struct {
	maxLen int
}

// NewBuilder は Builder を初期化します。maxLen が 0 以下の場合は DefaultMaxLen を使います。
func NewBuilder(maxLen int) *Builder {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Builder{maxLen: maxLen}
}

// Build は固定テンプレートに4つのフィールドを埋め込んだプロンプトを返します。
// テンプレート: "{style} {title} yoga pose, {background} background. {theme}"
// 空フィールドは中立トークンで補い、プロバイダの構文を壊し得る文字は除去します。
// 上限を超える場合は単語境界で切り詰めます。
func (b *Builder) Build(row domain.PoseRow) (string, error) {
	style := sanitizeField(row.Style, defaultStyle)
	background := sanitizeField(row.BackgroundColor, defaultBackground)
	theme := sanitizeField(row.ThemeDescription, defaultTheme)
	title := sanitizeField(row.ContentTitle, defaultTitle)

	prompt := fmt.Sprintf("%s %s yoga pose, %s background. %s", style, title, background, theme)

	if len([]rune(prompt)) > b.maxLen {
		prompt = truncateAtWord(prompt, b.maxLen)
		if prompt == "" {
			return "", fmt.Errorf("プロンプトが最大長 %d を満たす形に切り詰められませんでした", b.maxLen)
		}
	}
	return prompt, nil
}

// sanitizeField は制御文字・引用符・バックスラッシュを除去し、連続空白を1つに畳みます。
// 結果が空になった場合は fallback を返します。
func sanitizeField(s, fallback string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
			b.WriteRune(' ')
		case r == '"' || r == '\\':
			// JSONペイロードやシート数式を壊し得る文字は落とす
		default:
			b.WriteRune(r)
		}
	}
	cleaned := strings.Join(strings.Fields(b.String()), " ")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

// truncateAtWord は maxLen 文字以内に収まるよう単語境界で切り詰めます。
func truncateAtWord(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	cut := string(runes[:maxLen])
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
