package generator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
)

var (
	// ErrReferenceMissing は edit モードの参照画像が存在しない場合に返されます。
	ErrReferenceMissing = errors.New("参照画像が見つかりません")
	// ErrEmptyResult はバックエンドが画像データも取得URLも返さなかった場合に返されます。
	ErrEmptyResult = errors.New("バックエンドの応答に画像が含まれていません")
)

// Request は1件の成果物に対する生成リクエストです。
type Request struct {
	Name   string
	Prompt string
	Render domain.RenderConfig
}

// Result はバックエンドの応答です。画像データか取得用URLのどちらか一方を持ちます。
type Result struct {
	Data     []byte
	MimeType string
	URL      string
}

// InlineResult は画像データを直接持つ Result を生成します。
func InlineResult(data []byte, mimeType string) Result {
	return Result{Data: data, MimeType: mimeType}
}

// URLResult は取得用URLを持つ Result を生成します。
func URLResult(url string) Result {
	return Result{URL: url}
}

// Reference は edit モードで送信する参照画像です。
type Reference struct {
	Path string
	Data []byte
}

// Synthesizer はテキストのみから画像を合成します。
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string, cfg domain.RenderConfig) (Result, error)
}

// Editor は参照画像とテキストから画像を生成します。
type Editor interface {
	Edit(ctx context.Context, prompt string, cfg domain.RenderConfig, ref Reference) (Result, error)
}

// Backend は両モードを提供する画像生成サービスです。
type Backend interface {
	Synthesizer
	Editor
}

// Generator は生成リクエストを受け取り、PNG のバイト列を返します。
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// URLFetcher は取得用URLから画像をダウンロードします。
type URLFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Opener はローカルまたはリモートのパスを読み込み用に開きます。
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// GenerationError は1件の成果物の生成失敗を表します。
type GenerationError struct {
	Name string
	Mode domain.Mode
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s の生成に失敗しました (mode: %s): %v", e.Name, e.Mode, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
