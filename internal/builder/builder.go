package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/shouni/go-tcg-asset-kit/internal/config"
	kitconfig "github.com/shouni/go-tcg-asset-kit/pkg/config"
	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
	"github.com/shouni/go-tcg-asset-kit/pkg/generator"
	"github.com/shouni/go-tcg-asset-kit/pkg/source"
	"github.com/shouni/go-tcg-asset-kit/pkg/workflow"

	"github.com/openai/openai-go/option"
	"github.com/patrickmn/go-cache"
	imagekit "github.com/shouni/gemini-image-kit/pkg/generator"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"
)

const (
	defaultGeminiTemperature = float32(0.2)
	defaultCacheExpiration   = 5 * time.Minute
	cacheCleanupInterval     = 15 * time.Minute
	defaultTTL               = 5 * time.Minute
)

// NewHTTPClient は共通の HTTP クライアントを生成します。
// 1成果物につき1回だけ取得するため、リトライは無効にしています。
func NewHTTPClient(timeout time.Duration, opts ...httpkit.ClientOption) *httpkit.Client {
	return httpkit.New(timeout, append([]httpkit.ClientOption{httpkit.WithMaxRetries(0)}, opts...)...)
}

// NewRemoteReader は GCS 用の InputReader を生成します。gs:// パスを扱うときにだけ呼び出されます。
func NewRemoteReader(ctx context.Context) (remoteio.InputReader, error) {
	factory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("GCS クライアントファクトリの初期化に失敗しました: %w", err)
	}
	reader, err := factory.InputReader()
	if err != nil {
		return nil, fmt.Errorf("InputReader の初期化に失敗しました: %w", err)
	}
	return reader, nil
}

// BuildManager は設定されたバックエンドを使う workflow.Manager を構築します。
func BuildManager(ctx context.Context, appCtx *AppContext) (*workflow.Manager, error) {
	backend, err := BuildBackend(ctx, appCtx)
	if err != nil {
		return nil, err
	}

	loader, err := source.NewLoader(appCtx.Opener, appCtx.Config.Columns)
	if err != nil {
		return nil, fmt.Errorf("カードデータベースローダーの初期化に失敗しました: %w", err)
	}

	return workflow.New(workflow.ManagerArgs{
		Config:     appCtx.Config.Config,
		Backend:    backend,
		Fetcher:    appCtx.httpClient,
		Opener:     appCtx.Opener,
		References: appCtx.Opener,
		Source:     loader,
	})
}

// BuildBackend は設定に応じて OpenAI または Gemini のバックエンドを構築します。
// ドライランで APIキーがない場合は、呼び出されると ErrMissingCredentials を返すバックエンドを使います。
func BuildBackend(ctx context.Context, appCtx *AppContext) (generator.Backend, error) {
	cfg := appCtx.Config
	if cfg.DryRun && appCtx.Credential.Key == "" {
		return offlineBackend{}, nil
	}
	switch cfg.Backend {
	case kitconfig.BackendOpenAI:
		return generator.NewOpenAIBackend(
			appCtx.Credential.Key,
			generator.WithOpenAIModel(cfg.ImageModel),
			generator.WithOpenAIEditModel(cfg.EditModel),
			generator.WithOpenAIRequestOptions(option.WithRequestTimeout(cfg.RequestTimeout)),
		), nil
	case kitconfig.BackendGemini:
		aiClient, err := InitializeAIClient(ctx, appCtx.Credential.Key)
		if err != nil {
			return nil, err
		}
		imgGen, err := InitializeImageGenerator(ctx, cfg, aiClient, appCtx.httpClient)
		if err != nil {
			return nil, err
		}
		return generator.NewGeminiBackend(imgGen, aiClient, geminiModel(cfg))
	default:
		return nil, fmt.Errorf("サポートされていないバックエンドです: %q", cfg.Backend)
	}
}

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// InitializeImageGenerator は、画像キャッシュを含む gemini-image-kit の ImageGenerator を初期化します。
func InitializeImageGenerator(ctx context.Context, cfg *config.Config, aiClient gemini.GenerativeModel, httpClient httpkit.ClientInterface) (imagekit.ImageGenerator, error) {
	reader, err := NewRemoteReader(ctx)
	if err != nil {
		return nil, err
	}

	imgCache := cache.New(defaultCacheExpiration, cacheCleanupInterval)
	core, err := imagekit.NewGeminiImageCore(
		aiClient,
		reader,
		httpClient,
		imgCache,
		defaultTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCore の初期化に失敗しました: %w", err)
	}

	imgGen, err := imagekit.NewGeminiGenerator(geminiModel(cfg), core)
	if err != nil {
		return nil, fmt.Errorf("GeminiGenerator の初期化に失敗しました: %w", err)
	}
	return imgGen, nil
}

func geminiModel(cfg *config.Config) string {
	if cfg.ImageModel != "" {
		return cfg.ImageModel
	}
	return cfg.GeminiImageModel
}

// offlineBackend は APIキーなしのドライランで使うバックエンドです。ドライランでは呼び出されません。
type offlineBackend struct{}

func (offlineBackend) Synthesize(context.Context, string, domain.RenderConfig) (generator.Result, error) {
	return generator.Result{}, config.ErrMissingCredentials
}

func (offlineBackend) Edit(context.Context, string, domain.RenderConfig, generator.Reference) (generator.Result, error) {
	return generator.Result{}, config.ErrMissingCredentials
}
