package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
)

// renderStrategy は生成モードごとの呼び出し方を表します。
type renderStrategy interface {
	render(ctx context.Context, req Request) (Result, error)
}

type synthesizeStrategy struct {
	synthesizer Synthesizer
}

func (s synthesizeStrategy) render(ctx context.Context, req Request) (Result, error) {
	return s.synthesizer.Synthesize(ctx, req.Prompt, req.Render)
}

type editStrategy struct {
	editor     Editor
	references *ReferenceLoader
}

func (s editStrategy) render(ctx context.Context, req Request) (Result, error) {
	ref, err := s.references.Load(ctx, req.Render.Reference)
	if err != nil {
		return Result{}, err
	}
	return s.editor.Edit(ctx, req.Prompt, req.Render, ref)
}

// Adapter は2つの生成モードを1つの呼び出し口にまとめ、応答を PNG のバイト列に正規化します。
type Adapter struct {
	strategies map[domain.Mode]renderStrategy
	fetcher    URLFetcher
}

// NewAdapter は Backend と補助コンポーネントから Adapter を生成します。
func NewAdapter(backend Backend, fetcher URLFetcher, references *ReferenceLoader) (*Adapter, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend は必須です")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher は必須です")
	}
	if references == nil {
		return nil, fmt.Errorf("references は必須です")
	}

	return &Adapter{
		strategies: map[domain.Mode]renderStrategy{
			domain.ModeSynthesize: synthesizeStrategy{synthesizer: backend},
			domain.ModeEdit:       editStrategy{editor: backend, references: references},
		},
		fetcher: fetcher,
	}, nil
}

// Generate はリクエストのモードに応じた戦略で生成し、PNG のバイト列を返します。
// 失敗はすべて *GenerationError として返します。
func (a *Adapter) Generate(ctx context.Context, req Request) ([]byte, error) {
	data, err := a.generate(ctx, req)
	if err != nil {
		return nil, &GenerationError{Name: req.Name, Mode: req.Render.Mode, Err: err}
	}
	return data, nil
}

func (a *Adapter) generate(ctx context.Context, req Request) ([]byte, error) {
	if err := req.Render.Validate(); err != nil {
		return nil, err
	}

	strategy, ok := a.strategies[req.Render.Mode]
	if !ok {
		return nil, fmt.Errorf("生成モード %q に対応する戦略がありません", req.Render.Mode)
	}

	res, err := strategy.render(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, err := a.materialize(ctx, req.Name, res)
	if err != nil {
		return nil, err
	}
	return toPNG(raw)
}

// materialize は Result をバイト列に変換します。画像データがなければURLから取得します。
func (a *Adapter) materialize(ctx context.Context, name string, res Result) ([]byte, error) {
	if len(res.Data) > 0 {
		return res.Data, nil
	}
	if res.URL == "" {
		return nil, ErrEmptyResult
	}

	slog.DebugContext(ctx, "Fetching image from retrieval URL", "name", name)
	data, err := a.fetcher.FetchBytes(ctx, res.URL)
	if err != nil {
		return nil, fmt.Errorf("取得用URLからのダウンロードに失敗しました: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyResult
	}
	return data, nil
}
