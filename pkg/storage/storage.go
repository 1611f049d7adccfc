// Package storage は生成画像のクラウド保存と公開 URL の取得を抽象化します。
package storage

import (
	"context"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// Uploader は生成画像を公開読み取り可能な場所へ保存する窓口です。
// 同名オブジェクトの再アップロードは上書き（または新規作成後の参照差し替え）になります。
type Uploader interface {
	Store(ctx context.Context, filename string, img *domain.GeneratedImage) (*domain.StoredImageRef, error)
}
