// Package pipeline はポーズ行を1行ずつ処理する逐次パイプラインです。
// プロンプト生成 → 画像生成 → アップロード → シート書き込み の順に進み、
// 行の失敗はその行で閉じて次の行へ続行します。
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/pose-image-kit/pkg/adapters"
	"github.com/shouni/pose-image-kit/pkg/domain"
	"github.com/shouni/pose-image-kit/pkg/imgutil"
	"github.com/shouni/pose-image-kit/pkg/sheetio"
	"github.com/shouni/pose-image-kit/pkg/storage"
	"github.com/shouni/pose-image-kit/pkg/utils"
)

// PromptBuilder は行からプロンプトを組み立てる窓口です。
type PromptBuilder interface {
	Build(row domain.PoseRow) (string, error)
}

// Options はパイプラインの動作調整値です。
type Options struct {
	// CompressOver: このバイト数を超えた画像はアップロード前に JPEG 圧縮する。
	// 0 以下で無効。
	CompressOver int
	// CompressQuality: JPEG 品質 (1-100)。0 の場合は 75。
	CompressQuality int
}

// Runner は Row Pipeline 本体です。行間で共有する状態はレポートのみです。
type Runner struct {
	builder   PromptBuilder
	generator adapters.ImageGenerator
	uploader  storage.Uploader
	writer    sheetio.CellWriter
	opts      Options
}

// NewRunner は依存関係を注入して Runner を初期化します。
func NewRunner(builder PromptBuilder, generator adapters.ImageGenerator, uploader storage.Uploader, writer sheetio.CellWriter, opts Options) (*Runner, error) {
	if builder == nil {
		return nil, fmt.Errorf("builder is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	if opts.CompressQuality <= 0 {
		opts.CompressQuality = 75
	}

	return &Runner{
		builder:   builder,
		generator: generator,
		uploader:  uploader,
		writer:    writer,
		opts:      opts,
	}, nil
}

// Process は全行を入力順に処理し、行数と同じ数のエントリを持つレポートを返します。
// 行単位の失敗は記録して続行し、実行全体を中断しません。
func (r *Runner) Process(ctx context.Context, rows []domain.PoseRow) *domain.PipelineReport {
	report := &domain.PipelineReport{}

	for _, row := range rows {
		if !row.HasTitle() {
			slog.InfoContext(ctx, "タイトルが空の行をスキップします", "row", row.Index)
			report.Skip(row)
			continue
		}

		slog.InfoContext(ctx, "行の処理を開始します", "row", row.Index, "title", row.ContentTitle)
		if err := r.processRow(ctx, row); err != nil {
			slog.WarnContext(ctx, "行の処理に失敗しました",
				"row", row.Index, "title", row.ContentTitle,
				"kind", domain.KindOf(err, domain.KindGeneration), "error", err)
			report.Fail(row, err, domain.KindGeneration)
			continue
		}
		report.Success(row)
	}

	return report
}

// processRow は1行分の 生成→保存→書き込み を実行します。
func (r *Runner) processRow(ctx context.Context, row domain.PoseRow) error {
	prompt, err := r.builder.Build(row)
	if err != nil {
		return ensureKind(domain.KindGeneration, fmt.Errorf("プロンプト構築に失敗しました: %w", err))
	}
	slog.DebugContext(ctx, "プロンプトを構築しました", "row", row.Index, "prompt", prompt)

	img, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return ensureKind(domain.KindGeneration, err)
	}

	img = r.shrinkIfNeeded(ctx, row, img)

	filename := utils.PoseFileName(row.ContentTitle, mimeExt(img.MimeType))
	ref, err := r.uploader.Store(ctx, filename, img)
	if err != nil {
		return ensureKind(domain.KindUpload, err)
	}

	if err := r.writer.WriteImageFormula(ctx, row, ref.PublicURL); err != nil {
		return ensureKind(domain.KindWrite, err)
	}

	slog.InfoContext(ctx, "行の処理が完了しました", "row", row.Index, "url", ref.PublicURL)
	return nil
}

// shrinkIfNeeded は閾値超過の画像を JPEG 圧縮します。
// 圧縮失敗は警告にとどめ、元画像のまま続行します。
func (r *Runner) shrinkIfNeeded(ctx context.Context, row domain.PoseRow, img *domain.GeneratedImage) *domain.GeneratedImage {
	if r.opts.CompressOver <= 0 || len(img.Data) <= r.opts.CompressOver {
		return img
	}

	data, mime, err := imgutil.ShrinkOver(img.Data, img.MimeType, r.opts.CompressOver, r.opts.CompressQuality)
	if err != nil {
		slog.WarnContext(ctx, "画像圧縮に失敗したため元データのままアップロードします",
			"row", row.Index, "error", err)
		return img
	}
	return &domain.GeneratedImage{Data: data, MimeType: mime}
}

// ensureKind は種別が未付与のエラーにのみ kind を付けます。
func ensureKind(kind domain.ErrKind, err error) error {
	if domain.KindOf(err, "") != "" {
		return err
	}
	return domain.WrapKind(kind, err)
}

// mimeExt は MIME タイプからファイル拡張子を決めます。
func mimeExt(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
