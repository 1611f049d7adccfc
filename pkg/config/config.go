// Package config は起動時設定の読み込みと検証を担当します。
// 選択されたプロバイダの API キーが無い場合は、シートを読む前に
// 設定エラーとして失敗させます。
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// 既定値。フラグや環境変数で上書きされなかった場合に使います。
const (
	DefaultSheetName       = "Sheet1"
	DefaultTimeout         = 120 * time.Second
	DefaultCredentialsFile = "service_account.json"
)

// providerEnvKeys はプロバイダごとの API キー環境変数名です。
var providerEnvKeys = map[domain.ProviderName]string{
	domain.ProviderOpenAI:    "OPENAI_API_KEY",
	domain.ProviderIdeogram:  "IDEOGRAM_API_KEY",
	domain.ProviderStability: "STABILITY_API_KEY",
	domain.ProviderGemini:    "GEMINI_API_KEY",
}

// Config は1回の実行に必要な設定一式です。
type Config struct {
	Provider        domain.ProviderName
	APIKey          string
	Model           string
	Timeout         time.Duration
	SheetName       string
	CredentialsFile string
}

// LoadEnvFile はカレントディレクトリの .env を読み込みます。
// ファイルが無い場合はエラーにしません。
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Load はプロバイダ名を解決し、対応する API キーを環境変数から取得します。
// キーが未設定の場合は Configuration 種別のエラーを返します。
func Load(providerName, model string, timeout time.Duration, sheetName, credentialsFile string) (*Config, error) {
	provider, err := domain.ParseProviderName(providerName)
	if err != nil {
		return nil, domain.WrapKind(domain.KindConfiguration, err)
	}

	envKey := providerEnvKeys[provider]
	apiKey := os.Getenv(envKey)
	if apiKey == "" {
		return nil, domain.Kindf(domain.KindConfiguration,
			"プロバイダ %s の APIキーが未設定です (環境変数 %s を設定してください)", provider, envKey)
	}

	cfg := &Config{
		Provider:        provider,
		APIKey:          apiKey,
		Model:           model,
		Timeout:         timeout,
		SheetName:       sheetName,
		CredentialsFile: credentialsFile,
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.SheetName == "" {
		c.SheetName = DefaultSheetName
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = DefaultCredentialsFile
	}
}

// EnvKeyFor は指定プロバイダの API キー環境変数名を返します。
func EnvKeyFor(provider domain.ProviderName) (string, error) {
	key, ok := providerEnvKeys[provider]
	if !ok {
		return "", fmt.Errorf("未知のプロバイダです: %s", provider)
	}
	return key, nil
}
