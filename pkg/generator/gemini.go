package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"

	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

const (
	geminiNegativePrompt     = "watermark, signature, username, low quality, blurry, jpeg artifacts"
	geminiTransparentSuffix  = "Isolated on a plain transparent background."
	geminiStyleReferenceHint = "Match the art style, line quality and texture of the reference image."
	geminiNegativeSeparator  = "\n\n[Negative Prompt]\n"
)

// ImageKitGenerator は gemini-image-kit の画像生成器のうち、ここで使うメソッドだけを切り出したものです。
type ImageKitGenerator interface {
	GenerateMangaPanel(ctx context.Context, req imgdom.ImageGenerationRequest) (*imgdom.ImageResponse, error)
}

// PartsGenerator はマルチモーダルなパーツを直接送る Gemini クライアントです。gemini.GenerativeModel が満たします。
type PartsGenerator interface {
	GenerateWithParts(ctx context.Context, modelName string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// GeminiBackend は Gemini を使う Backend 実装です。
// synthesize は gemini-image-kit に任せ、edit は読み込み済みの参照画像をインラインで送ります。
type GeminiBackend struct {
	gen    ImageKitGenerator
	client PartsGenerator
	model  string
}

// NewGeminiBackend は GeminiBackend を生成します。
func NewGeminiBackend(gen ImageKitGenerator, client PartsGenerator, model string) (*GeminiBackend, error) {
	if gen == nil {
		return nil, fmt.Errorf("ImageGenerator は必須です")
	}
	if client == nil {
		return nil, fmt.Errorf("Gemini クライアントは必須です")
	}
	if model == "" {
		return nil, fmt.Errorf("モデル名は必須です")
	}
	return &GeminiBackend{gen: gen, client: client, model: model}, nil
}

// Synthesize はテキストのみで画像を生成します。
func (b *GeminiBackend) Synthesize(ctx context.Context, prompt string, cfg domain.RenderConfig) (Result, error) {
	resp, err := b.gen.GenerateMangaPanel(ctx, imgdom.ImageGenerationRequest{
		Prompt:         geminiPrompt(prompt, cfg),
		NegativePrompt: geminiNegativePrompt,
		AspectRatio:    cfg.Size.AspectRatio(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("Gemini 画像生成に失敗しました: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return Result{}, ErrEmptyResult
	}
	return InlineResult(resp.Data, resp.MimeType), nil
}

// Edit は参照画像をスタイルの手本として画像を生成します。
// 参照画像を送れない場合は、テキストだけの生成に落とさずエラーにします。
func (b *GeminiBackend) Edit(ctx context.Context, prompt string, cfg domain.RenderConfig, ref Reference) (Result, error) {
	if len(ref.Data) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrReferenceMissing, ref.Path)
	}
	mimeType := http.DetectContentType(ref.Data)
	if !strings.HasPrefix(mimeType, "image/") {
		return Result{}, fmt.Errorf("参照画像の形式が不正です (%s): %s", mimeType, ref.Path)
	}

	text := geminiPrompt(prompt, cfg) + " " + geminiStyleReferenceHint + geminiNegativeSeparator + geminiNegativePrompt
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: ref.Data}},
		{Text: text},
	}

	resp, err := b.client.GenerateWithParts(ctx, b.model, parts, gemini.GenerateOptions{
		AspectRatio: cfg.Size.AspectRatio(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("Gemini 画像編集に失敗しました: %w", err)
	}
	if resp == nil || len(resp.Images) == 0 || len(resp.Images[0]) == 0 {
		return Result{}, ErrEmptyResult
	}
	data := resp.Images[0]
	return InlineResult(data, http.DetectContentType(data)), nil
}

func geminiPrompt(prompt string, cfg domain.RenderConfig) string {
	prompt = strings.TrimSpace(prompt)
	if cfg.Background == domain.BackgroundTransparent && !strings.Contains(strings.ToLower(prompt), "transparent background") {
		prompt += " " + geminiTransparentSuffix
	}
	return prompt
}
