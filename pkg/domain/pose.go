package domain

import (
	"fmt"
	"strings"
)

// ProviderName は利用する画像生成ベンダーの識別子です。
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderIdeogram  ProviderName = "ideogram"
	ProviderStability ProviderName = "stability"
	ProviderGemini    ProviderName = "gemini"
)

// ParseProviderName は CLI 等から渡された文字列を ProviderName に変換します。
// 未知の名前はエラーとして返します。
func ParseProviderName(s string) (ProviderName, error) {
	switch p := ProviderName(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderOpenAI, ProviderIdeogram, ProviderStability, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("未対応のプロバイダ名です: %q", s)
	}
}

// PoseRow はスプレッドシート1行分のポーズメタデータです。
// Index はヘッダー行を除いた 0 始まりのデータ行番号で、行の同一性を表します。
type PoseRow struct {
	Index            int
	Style            string // 「Image Style」列
	BackgroundColor  string // 「Background Color」列
	ThemeDescription string // 「Theme Description」列
	ContentTitle     string // 「Content Title」列
	ImageCell        string // 出力先セル参照（例: "Sheet1!E2" / "E2"）
}

// HasTitle はこの行が処理対象かどうかを返します。
// Content Title が空の行は元データの区切り行とみなし、生成をスキップします。
func (r PoseRow) HasTitle() bool {
	return strings.TrimSpace(r.ContentTitle) != ""
}

// GeneratedImage はプロバイダから受け取った生成画像です。
// ローカルには永続化せず、アップロードまでの間だけ保持します。
type GeneratedImage struct {
	Data     []byte
	MimeType string
}

// StoredImageRef はクラウドストレージへ保存した画像への公開参照です。
type StoredImageRef struct {
	PublicURL string
}
