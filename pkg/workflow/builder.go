package workflow

import (
	"fmt"

	"github.com/shouni/go-tcg-asset-kit/pkg/asset"
	"github.com/shouni/go-tcg-asset-kit/pkg/config"
	"github.com/shouni/go-tcg-asset-kit/pkg/generator"
	"github.com/shouni/go-tcg-asset-kit/pkg/prompts"
	"github.com/shouni/go-tcg-asset-kit/pkg/runner"
)

// buildGenerator はバックエンドを生成モードの切り替えと PNG 正規化を行う Adapter で包みます。
func buildGenerator(backend generator.Backend, fetcher generator.URLFetcher, opener generator.Opener) (generator.Generator, error) {
	if opener == nil {
		return nil, fmt.Errorf("Opener は必須です")
	}
	adapter, err := generator.NewAdapter(backend, fetcher, generator.NewReferenceLoader(opener))
	if err != nil {
		return nil, fmt.Errorf("生成アダプターの初期化に失敗しました: %w", err)
	}
	return adapter, nil
}

// buildRunner は設定からバッチ実行器を構築します。
func buildRunner(cfg config.Config, gen generator.Generator, store asset.Store, refs runner.ReferenceChecker) (*runner.Runner, error) {
	r, err := runner.New(runner.Args{
		Generator:    gen,
		Store:        store,
		References:   refs,
		Resolver:     prompts.NewResolver(cfg.PromptSuffix),
		Layout:       asset.Layout{Root: cfg.AssetsRoot},
		RateInterval: cfg.RateInterval,
		DryRun:       cfg.DryRun,
	})
	if err != nil {
		return nil, fmt.Errorf("Runner の初期化に失敗しました: %w", err)
	}
	return r, nil
}

// loadCatalog は設定されたカタログを読み込みます。パスが空なら埋め込みのカタログを使います。
func loadCatalog(path string) (prompts.Catalog, error) {
	if path == "" {
		return prompts.DefaultCatalog()
	}
	return prompts.LoadCatalogFile(path)
}
