package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// DriveUploader は Google Drive へ画像を保存し、誰でも閲覧可能にする Uploader 実装です。
// 返す URL は IMAGE 数式で直接描画できる形に整形します。
type DriveUploader struct {
	svc *drive.Service
}

// NewDriveUploader はサービスアカウント認証でアップローダーを初期化します。
func NewDriveUploader(ctx context.Context, credentialsFile string) (*DriveUploader, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("Driveサービスの初期化に失敗しました: %w", err)
	}
	return &DriveUploader{svc: svc}, nil
}

// Store はファイルを作成し、anyone/reader 権限を付与してから公開 URL を返します。
func (u *DriveUploader) Store(ctx context.Context, filename string, img *domain.GeneratedImage) (*domain.StoredImageRef, error) {
	meta := &drive.File{
		Name:     filename,
		MimeType: img.MimeType,
	}

	created, err := u.svc.Files.Create(meta).
		Media(bytes.NewReader(img.Data)).
		Fields("id", "webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, domain.WrapKind(domain.KindUpload, fmt.Errorf("Driveへのアップロードに失敗しました: %w", err))
	}

	// 公開読み取りを許可する
	_, err = u.svc.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return nil, domain.WrapKind(domain.KindUpload, fmt.Errorf("公開権限の付与に失敗しました: %w", err))
	}

	publicURL := cleanContentLink(created.WebContentLink)
	if publicURL == "" {
		return nil, domain.Kindf(domain.KindUpload, "Driveが webContentLink を返しませんでした (file_id=%s)", created.Id)
	}

	slog.InfoContext(ctx, "Driveへ画像を保存しました", "file_id", created.Id, "url", publicURL)
	return &domain.StoredImageRef{PublicURL: publicURL}, nil
}

// cleanContentLink は webContentLink をインライン表示可能な直リンクに整形します。
// download クエリが付いたままだと IMAGE 数式で描画されないためです。
func cleanContentLink(link string) string {
	return strings.ReplaceAll(link, "&export=download", "")
}
