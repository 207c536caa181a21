package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultOpenAIModel     = "gpt-image-1"
	DefaultOpenAIEditModel = "gpt-image-1.5"
)

// OpenAIBackend は OpenAI Images API を使う Backend 実装です。
type OpenAIBackend struct {
	client     openai.Client
	model      string
	editModel  string
	clientOpts []option.RequestOption
}

// OpenAIOption は OpenAIBackend の設定を変更します。
type OpenAIOption func(*OpenAIBackend)

// WithOpenAIModel は synthesize モードで使うモデルを設定します。
func WithOpenAIModel(model string) OpenAIOption {
	return func(b *OpenAIBackend) {
		if model != "" {
			b.model = model
		}
	}
}

// WithOpenAIEditModel は edit モードで使うモデルを設定します。
func WithOpenAIEditModel(model string) OpenAIOption {
	return func(b *OpenAIBackend) {
		if model != "" {
			b.editModel = model
		}
	}
}

// WithOpenAIRequestOptions はクライアントに追加のリクエストオプションを渡します（ベースURLの差し替えなど）。
func WithOpenAIRequestOptions(opts ...option.RequestOption) OpenAIOption {
	return func(b *OpenAIBackend) {
		b.clientOpts = append(b.clientOpts, opts...)
	}
}

// NewOpenAIBackend は APIキーを指定して OpenAIBackend を生成します。
// 1成果物につき1回だけ呼び出すため、クライアント側のリトライは無効にしています。
func NewOpenAIBackend(apiKey string, opts ...OpenAIOption) *OpenAIBackend {
	b := &OpenAIBackend{
		model:     DefaultOpenAIModel,
		editModel: DefaultOpenAIEditModel,
	}
	for _, opt := range opts {
		opt(b)
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, b.clientOpts...)
	b.client = openai.NewClient(clientOpts...)
	return b
}

// Synthesize は Images.Generate を呼び出します。
func (b *OpenAIBackend) Synthesize(ctx context.Context, prompt string, cfg domain.RenderConfig) (Result, error) {
	resp, err := b.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:     prompt,
		Model:      b.model,
		N:          openai.Int(1),
		Size:       openai.ImageGenerateParamsSize(cfg.Size),
		Background: openai.ImageGenerateParamsBackground(cfg.Background),
		Quality:    openai.ImageGenerateParamsQuality(cfg.Quality),
	})
	if err != nil {
		return Result{}, fmt.Errorf("OpenAI 画像生成 API の呼び出しに失敗しました: %w", err)
	}
	return firstImage(resp)
}

// Edit は参照画像をマルチパートで送信して Images.Edit を呼び出します。
func (b *OpenAIBackend) Edit(ctx context.Context, prompt string, cfg domain.RenderConfig, ref Reference) (Result, error) {
	image := openai.File(bytes.NewReader(ref.Data), filepath.Base(ref.Path), "image/png")

	resp, err := b.client.Images.Edit(ctx, openai.ImageEditParams{
		Image:      openai.ImageEditParamsImageUnion{OfFile: image},
		Prompt:     prompt,
		Model:      b.editModel,
		N:          openai.Int(1),
		Size:       openai.ImageEditParamsSize(cfg.Size),
		Background: openai.ImageEditParamsBackground(cfg.Background),
		Quality:    openai.ImageEditParamsQuality(cfg.Quality),
	})
	if err != nil {
		return Result{}, fmt.Errorf("OpenAI 画像編集 API の呼び出しに失敗しました: %w", err)
	}
	return firstImage(resp)
}

// firstImage は応答の先頭画像を Result に変換します。b64_json を優先し、なければ url を使います。
func firstImage(resp *openai.ImagesResponse) (Result, error) {
	if resp == nil || len(resp.Data) == 0 {
		return Result{}, ErrEmptyResult
	}
	img := resp.Data[0]
	if img.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return Result{}, fmt.Errorf("b64_json のデコードに失敗しました: %w", err)
		}
		return InlineResult(data, "image/png"), nil
	}
	if img.URL != "" {
		return URLResult(img.URL), nil
	}
	return Result{}, ErrEmptyResult
}
