package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/pose-image-kit/pkg/adapters"
	"github.com/shouni/pose-image-kit/pkg/config"
	"github.com/shouni/pose-image-kit/pkg/domain"
	"github.com/shouni/pose-image-kit/pkg/pipeline"
	"github.com/shouni/pose-image-kit/pkg/prompt"
	"github.com/shouni/pose-image-kit/pkg/sheetio"
	"github.com/shouni/pose-image-kit/pkg/storage"
)

// sheetStore は読み取りと書き込みの両方を備えたシート実装です。
type sheetStore interface {
	sheetio.RowSource
	sheetio.CellWriter
}

// run は設定に従って各コンポーネントを組み立て、全行を処理します。
// 1行でも失敗があれば終了コード用にエラーを返します。
func run(ctx context.Context, cfg *config.Config) error {
	generator, err := buildGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := buildSheetStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(store)

	uploader, err := buildUploader(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(uploader)

	runner, err := pipeline.NewRunner(
		prompt.NewBuilder(prompt.DefaultMaxLen),
		generator,
		uploader,
		store,
		pipeline.Options{CompressOver: flagCompressKB * 1024},
	)
	if err != nil {
		return err
	}

	rows, err := store.ReadRows(ctx)
	if err != nil {
		return fmt.Errorf("シートの読み取りに失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "シートを読み込みました", "rows", len(rows), "provider", cfg.Provider)

	report := runner.Process(ctx, rows)
	return summarize(ctx, report)
}

// buildGenerator はプロバイダに応じた通信クライアントとアダプターを構築します。
func buildGenerator(ctx context.Context, cfg *config.Config) (adapters.ImageGenerator, error) {
	deps := adapters.Deps{}
	if cfg.Provider == domain.ProviderGemini {
		aiClient, err := gemini.NewClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, domain.WrapKind(domain.KindConfiguration,
				fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err))
		}
		deps.AIClient = aiClient
	} else {
		deps.HTTPClient = httpkit.NewClient(cfg.Timeout)
	}

	return adapters.New(adapters.Config{
		Name:   cfg.Provider,
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
	}, deps)
}

// buildSheetStore は backend フラグに応じたシート実装を構築します。
func buildSheetStore(ctx context.Context, cfg *config.Config) (sheetStore, error) {
	switch flagBackend {
	case "xlsx":
		reader, err := remoteio.NewInputReader(ctx)
		if err != nil {
			return nil, fmt.Errorf("入力リーダーの初期化に失敗しました: %w", err)
		}
		return sheetio.NewExcelWorkbookStore(flagFile, cfg.SheetName, reader)
	default:
		return sheetio.NewGoogleSheetStore(ctx, flagSheetID, cfg.SheetName, cfg.CredentialsFile)
	}
}

// buildUploader は store フラグに応じた保存先を構築します。
func buildUploader(ctx context.Context, cfg *config.Config) (storage.Uploader, error) {
	switch flagStore {
	case "gcs":
		return storage.NewGCSUploader(ctx, flagBucket, cfg.CredentialsFile)
	default:
		return storage.NewDriveUploader(ctx, cfg.CredentialsFile)
	}
}

// summarize は行ごとの結果をログに出し、失敗があればエラーを返します。
func summarize(ctx context.Context, report *domain.PipelineReport) error {
	success, failed, skipped := report.Counts()
	slog.InfoContext(ctx, "全行の処理が終了しました",
		"success", success, "failed", failed, "skipped", skipped)

	for _, res := range report.Failed() {
		slog.ErrorContext(ctx, "失敗した行があります",
			"row", res.RowIndex, "title", res.Title, "kind", res.ErrKind, "error", res.Err)
	}

	if report.HasFailures() {
		return fmt.Errorf("%d 行の処理に失敗しました", failed)
	}
	return nil
}

// closeQuietly は Closer を実装するコンポーネントのみ閉じます。
func closeQuietly(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}
