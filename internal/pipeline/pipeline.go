package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-tcg-asset-kit/internal/builder"
	"github.com/shouni/go-tcg-asset-kit/internal/config"
	"github.com/shouni/go-tcg-asset-kit/pkg/asset"
	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
	"github.com/shouni/go-tcg-asset-kit/pkg/publisher"
	"github.com/shouni/go-tcg-asset-kit/pkg/source"
	"github.com/shouni/go-tcg-asset-kit/pkg/workflow"
)

// Execute は、指定されたモードでアセット生成バッチを実行するのだ。
// 個別のアセットの失敗はレポートに集計されるだけで、エラーにはならないのだ。
func Execute(ctx context.Context, cfg *config.Config) (workflow.Report, error) {
	req, err := buildRequest(cfg.Options)
	if err != nil {
		return workflow.Report{}, err
	}
	if err := cfg.Validate(); err != nil {
		return workflow.Report{}, err
	}

	appCtx, err := setupAppContext(cfg)
	if err != nil {
		return workflow.Report{}, err
	}

	manager, err := builder.BuildManager(ctx, appCtx)
	if err != nil {
		return workflow.Report{}, fmt.Errorf("ワークフローの構築に失敗したのだ: %w", err)
	}

	slog.Info("アセット生成バッチを開始するのだ",
		"mode", req.Scope,
		"name", req.Name,
		"backend", cfg.Backend,
		"assets_root", cfg.AssetsRoot,
		"dry_run", cfg.DryRun,
	)
	return manager.Run(ctx, req)
}

// RebuildManifest は、生成を行わずに manifest.json だけを作り直すのだ。APIキーは不要なのだ。
func RebuildManifest(ctx context.Context, cfg *config.Config) (domain.Manifest, error) {
	if cfg.AssetsRoot == "" {
		return domain.Manifest{}, fmt.Errorf("assets_root は必須なのだ")
	}
	return publisher.RebuildManifest(ctx, asset.NewLocalStore(), asset.Layout{Root: cfg.AssetsRoot}, asset.OutputDirs)
}

// buildRequest は CLI オプションを実行指示に変換するのだ。APIキーを確認する前に入力の誤りを検出するのだ。
func buildRequest(opts config.GenerateOptions) (workflow.Request, error) {
	mode := opts.Mode
	if mode == "" {
		mode = string(workflow.DefaultScope)
	}
	scope, err := workflow.ParseScope(mode)
	if err != nil {
		return workflow.Request{}, err
	}
	req := workflow.Request{Scope: scope, Name: opts.Name}
	if err := req.Validate(); err != nil {
		return workflow.Request{}, err
	}
	return req, nil
}

// setupAppContext は、APIキーを解決してアプリケーションコンテキストを初期化するのだ。
// ドライランではバックエンドを呼ばないので、APIキーがなくても続行するのだ。
func setupAppContext(cfg *config.Config) (*builder.AppContext, error) {
	cred, err := config.ResolveCredential(cfg.ProjectRoot, cfg.Backend)
	if err != nil {
		if !cfg.DryRun || !errors.Is(err, config.ErrMissingCredentials) {
			return nil, err
		}
		slog.Warn("APIキーが見つからないけれど、ドライランなので続行するのだ", "backend", cfg.Backend)
	} else {
		slog.Debug("APIキーを読み込んだのだ", "source", cred.Source)
	}

	opener := source.NewOpener(builder.NewRemoteReader)
	appCtx := builder.NewAppContext(cfg, cred, opener, builder.NewHTTPClient(cfg.HTTPTimeout))
	return &appCtx, nil
}
