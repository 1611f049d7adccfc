package storage

import (
	"context"
	"fmt"
	"log/slog"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// GCSUploader は Google Cloud Storage バケットへ画像を保存する Uploader 実装です。
// オブジェクトは AllUsers へのリーダー ACL で公開されます。
type GCSUploader struct {
	client *gcs.Client
	bucket string
}

// NewGCSUploader はバケットを指定してアップローダーを初期化します。
func NewGCSUploader(ctx context.Context, bucket, credentialsFile string) (*GCSUploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	client, err := gcs.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("GCSクライアントの初期化に失敗しました: %w", err)
	}

	return &GCSUploader{client: client, bucket: bucket}, nil
}

// Store は同名オブジェクトを上書き保存し、公開 URL を返します。
func (u *GCSUploader) Store(ctx context.Context, filename string, img *domain.GeneratedImage) (*domain.StoredImageRef, error) {
	obj := u.client.Bucket(u.bucket).Object(filename)

	w := obj.NewWriter(ctx)
	w.ContentType = img.MimeType
	if _, err := w.Write(img.Data); err != nil {
		_ = w.Close()
		return nil, domain.WrapKind(domain.KindUpload, fmt.Errorf("GCSへの書き込みに失敗しました: %w", err))
	}
	if err := w.Close(); err != nil {
		return nil, domain.WrapKind(domain.KindUpload, fmt.Errorf("GCSオブジェクトの確定に失敗しました: %w", err))
	}

	// 公開読み取りを許可する
	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return nil, domain.WrapKind(domain.KindUpload, fmt.Errorf("公開ACLの設定に失敗しました: %w", err))
	}

	publicURL := gcsPublicURL(u.bucket, filename)
	slog.InfoContext(ctx, "GCSへ画像を保存しました", "bucket", u.bucket, "object", filename, "url", publicURL)
	return &domain.StoredImageRef{PublicURL: publicURL}, nil
}

// Close は内部クライアントを閉じます。
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

// gcsPublicURL は公開オブジェクトの安定 URL を返します。
func gcsPublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}
