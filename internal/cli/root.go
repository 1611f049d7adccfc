// Package cli は poseimg コマンドのフラグ定義と実行フローを提供します。
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/pose-image-kit/pkg/config"
)

var (
	flagSheetID     string
	flagFile        string
	flagSheetName   string
	flagAPI         string
	flagBackend     string
	flagStore       string
	flagBucket      string
	flagCredentials string
	flagModel       string
	flagTimeout     time.Duration
	flagCompressKB  int
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "poseimg",
	Short: "ヨガポーズ画像の一括生成とスプレッドシート書き込み",
	Long: `poseimg はスプレッドシートの各行からプロンプトを組み立て、
画像生成 API で画像を作り、公開ストレージへ保存した上で
=IMAGE() 数式をシートに書き戻すバッチツールです。`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(flagVerbose)
		config.LoadEnvFile()

		cfg, err := config.Load(flagAPI, flagModel, flagTimeout, flagSheetName, flagCredentials)
		if err != nil {
			return err
		}
		if err := validateFlags(); err != nil {
			return err
		}

		return run(cmd.Context(), cfg)
	},
}

// Execute はルートコマンドを実行します。
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVar(&flagSheetID, "sheet-id", "", "Google スプレッドシートの ID (backend=sheets で必須)")
	rootCmd.Flags().StringVar(&flagFile, "file", "", "XLSX ファイルのパスまたは URI (backend=xlsx で必須)")
	rootCmd.Flags().StringVar(&flagSheetName, "sheet-name", config.DefaultSheetName, "対象シート名")
	rootCmd.Flags().StringVar(&flagAPI, "api", "ideogram", "画像生成プロバイダ (openai|ideogram|stability|gemini)")
	rootCmd.Flags().StringVar(&flagBackend, "backend", "sheets", "スプレッドシートの種類 (sheets|xlsx)")
	rootCmd.Flags().StringVar(&flagStore, "store", "drive", "画像の保存先 (drive|gcs)")
	rootCmd.Flags().StringVar(&flagBucket, "bucket", "", "GCS バケット名 (store=gcs で必須)")
	rootCmd.Flags().StringVar(&flagCredentials, "credentials", config.DefaultCredentialsFile, "サービスアカウント JSON のパス")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "プロバイダのモデル名 (空なら既定モデル)")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", config.DefaultTimeout, "外部 API 呼び出しのタイムアウト")
	rootCmd.Flags().IntVar(&flagCompressKB, "compress-over-kb", 0, "この KB を超えた画像を JPEG 圧縮する (0 で無効)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "デバッグログを出力する")
}

// validateFlags はフラグ同士の整合性を確認します。
func validateFlags() error {
	switch flagBackend {
	case "sheets":
		if flagSheetID == "" {
			return fmt.Errorf("--sheet-id は backend=sheets で必須です")
		}
	case "xlsx":
		if flagFile == "" {
			return fmt.Errorf("--file は backend=xlsx で必須です")
		}
	default:
		return fmt.Errorf("未対応の backend です: %q (sheets|xlsx)", flagBackend)
	}

	switch flagStore {
	case "drive":
	case "gcs":
		if flagBucket == "" {
			return fmt.Errorf("--bucket は store=gcs で必須です")
		}
	default:
		return fmt.Errorf("未対応の store です: %q (drive|gcs)", flagStore)
	}
	return nil
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
