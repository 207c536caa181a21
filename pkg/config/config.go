package config

import (
	"time"

	"github.com/shouni/go-tcg-asset-kit/pkg/prompts"
	"github.com/shouni/go-tcg-asset-kit/pkg/source"
)

// デフォルト値の定義
const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"

	DefaultBackend          = BackendOpenAI
	DefaultGeminiModel      = "gemini-3-flash-preview"
	DefaultGeminiImageModel = "gemini-3-pro-image-preview"
	DefaultAssetsRoot       = "apps/web/public/game-assets"
	DefaultSourcePath       = "apps/web/public/lunchtable/cards.csv"
	DefaultReferenceDir     = "apps/web/public/lunchtable"
	DefaultSampleKind       = "Stereotype"
	DefaultPromptSuffix     = prompts.DefaultSubjectSuffix
	DefaultRateInterval     = 0 * time.Second
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultRequestTimeout   = 5 * time.Minute
)

// DefaultSampleCategories は sample スコープでデッキを走査する順序です。
var DefaultSampleCategories = []string{"Dropouts", "Preps", "Geeks", "Freaks", "Nerds", "Goodies"}

// Config はアセット生成バッチを動作させるための基本設定です。
type Config struct {
	// --- Backend Settings ---
	Backend          string `koanf:"backend"`
	ImageModel       string `koanf:"image_model"` // 空の場合はバックエンドの既定モデル
	EditModel        string `koanf:"edit_model"`  // OpenAI の edit モード専用
	GeminiModel      string `koanf:"gemini_model"`
	GeminiImageModel string `koanf:"gemini_image_model"`

	// --- Generation Settings ---
	PromptSuffix     string        `koanf:"prompt_suffix"`
	RateInterval     time.Duration `koanf:"rate_interval"` // 0 はペース制御なし
	SampleCategories []string      `koanf:"sample_categories"`
	SampleKind       string        `koanf:"sample_kind"`
	DryRun           bool          `koanf:"dry_run"`

	// --- Storage & Input Settings ---
	AssetsRoot   string         `koanf:"assets_root"`
	SourcePath   string         `koanf:"source"`
	CatalogPath  string         `koanf:"catalog"` // 空の場合は埋め込みカタログ
	ReferenceDir string         `koanf:"reference_dir"`
	Columns      source.Columns `koanf:"columns"`

	// --- Timeout Settings ---
	HTTPTimeout    time.Duration `koanf:"http_timeout"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		Backend:          DefaultBackend,
		GeminiModel:      DefaultGeminiModel,
		GeminiImageModel: DefaultGeminiImageModel,
		PromptSuffix:     DefaultPromptSuffix,
		RateInterval:     DefaultRateInterval,
		SampleCategories: append([]string(nil), DefaultSampleCategories...),
		SampleKind:       DefaultSampleKind,
		AssetsRoot:       DefaultAssetsRoot,
		SourcePath:       DefaultSourcePath,
		ReferenceDir:     DefaultReferenceDir,
		Columns:          source.DefaultColumns(),
		HTTPTimeout:      DefaultHTTPTimeout,
		RequestTimeout:   DefaultRequestTimeout,
	}
}
