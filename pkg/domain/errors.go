package domain

import (
	"errors"
	"fmt"
)

// ErrKind は1行分の処理失敗を分類するエラー種別です。
type ErrKind string

const (
	KindConfiguration  ErrKind = "configuration"  // 起動時の設定不備（実行前に致命）
	KindAuthentication ErrKind = "authentication" // 資格情報の拒否
	KindRateLimit      ErrKind = "rate_limit"     // プロバイダのスロットリング
	KindGeneration     ErrKind = "generation"     // 生成の失敗・拒否・不正応答
	KindUpload         ErrKind = "upload"         // ストレージへの保存失敗
	KindWrite          ErrKind = "write"          // スプレッドシート書き込み失敗
)

// KindError は ErrKind を保持するエラーです。errors.As で種別を取り出せます。
type KindError struct {
	Kind ErrKind
	Err  error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// WrapKind は err に種別を付与して返します。nil はそのまま返します。
func WrapKind(kind ErrKind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// Kindf は種別付きのエラーを書式文字列から生成します。
func Kindf(kind ErrKind, format string, args ...any) error {
	return &KindError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf はエラーチェーンから種別を取り出します。
// 種別が付与されていない場合は fallback を返します。
func KindOf(err error, fallback ErrKind) ErrKind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return fallback
}
