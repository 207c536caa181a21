package config

import (
	"fmt"
	"strings"

	kitconfig "github.com/shouni/go-tcg-asset-kit/pkg/config"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix は設定を上書きする環境変数の接頭辞です。
// ネストしたキーは "__" で区切ります（TCGASSETS_COLUMNS__NAME -> columns.name）。
const EnvPrefix = "TCGASSETS_"

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// Config はアプリケーション全体の設定を保持する構造体です。
type Config struct {
	kitconfig.Config `koanf:",squash"`
	Log              LogConfig `koanf:"log"`
	// ProjectRoot は APIキーファイル（.openai-key など）を探すディレクトリです。
	ProjectRoot string `koanf:"project_root"`

	Options GenerateOptions `koanf:"-"`
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータです。
type GenerateOptions struct {
	Mode       string // --mode
	Name       string // --name
	ConfigPath string // --config
}

// defaults は DefaultConfig の値を koanf のキーに展開します。
func defaults() map[string]any {
	d := kitconfig.DefaultConfig()
	return map[string]any{
		"backend":            d.Backend,
		"image_model":        d.ImageModel,
		"edit_model":         d.EditModel,
		"gemini_model":       d.GeminiModel,
		"gemini_image_model": d.GeminiImageModel,
		"prompt_suffix":      d.PromptSuffix,
		"rate_interval":      d.RateInterval,
		"sample_categories":  d.SampleCategories,
		"sample_kind":        d.SampleKind,
		"dry_run":            d.DryRun,
		"assets_root":        d.AssetsRoot,
		"source":             d.SourcePath,
		"catalog":            d.CatalogPath,
		"reference_dir":      d.ReferenceDir,
		"columns.name":       d.Columns.Name,
		"columns.kind":       d.Columns.Kind,
		"columns.category":   d.Columns.Category,
		"columns.prompts":    d.Columns.Prompts,
		"http_timeout":       d.HTTPTimeout,
		"request_timeout":    d.RequestTimeout,
		"log.level":          "info",
		"log.json":           false,
		"project_root":       ".",
	}
}

// LoadConfig はデフォルト値、YAML ファイル（path が空でなければ）、環境変数の順に設定を重ねて読み込みます。
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	for key, v := range defaults() {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("デフォルト設定の適用に失敗しました (%s): %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("設定ファイル '%s' の読み込みに失敗しました: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗しました: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("設定の解析に失敗しました: %w", err)
	}
	cfg.Options.ConfigPath = path
	return &cfg, nil
}

// envKey は TCGASSETS_RATE_INTERVAL を rate_interval に、TCGASSETS_LOG__LEVEL を log.level に変換します。
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate は実行前に設定値の整合性を検証します。
func (c *Config) Validate() error {
	switch c.Backend {
	case kitconfig.BackendOpenAI, kitconfig.BackendGemini:
	default:
		return fmt.Errorf("サポートされていないバックエンドです: %q (openai, gemini)", c.Backend)
	}
	if c.AssetsRoot == "" {
		return fmt.Errorf("assets_root は必須です")
	}
	if c.RateInterval < 0 {
		return fmt.Errorf("rate_interval に負の値は指定できません")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout は正の値である必要があります")
	}
	return nil
}
