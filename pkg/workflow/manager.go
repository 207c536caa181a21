package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-tcg-asset-kit/pkg/asset"
	"github.com/shouni/go-tcg-asset-kit/pkg/config"
	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
	"github.com/shouni/go-tcg-asset-kit/pkg/generator"
	"github.com/shouni/go-tcg-asset-kit/pkg/prompts"
	"github.com/shouni/go-tcg-asset-kit/pkg/publisher"
	"github.com/shouni/go-tcg-asset-kit/pkg/runner"
)

// ManagerArgs は Manager の依存関係です。
type ManagerArgs struct {
	Config  config.Config
	Backend generator.Backend
	Fetcher generator.URLFetcher
	// Opener は参照画像の読み込みに使います。
	Opener generator.Opener
	// References は参照画像の事前確認に使います。
	References ReferenceResolver
	Source     EntitySource
	// Store が nil の場合はローカルファイルシステムを使います。
	Store asset.Store
}

// Manager はスコープに応じてフェーズを順番に実行し、最後にマニフェストを作り直します。
type Manager struct {
	cfg        config.Config
	runner     *runner.Runner
	source     EntitySource
	references ReferenceResolver
	catalog    prompts.Catalog
	store      asset.Store
	layout     asset.Layout
}

// New は依存関係を検証して Manager を初期化します。
func New(args ManagerArgs) (*Manager, error) {
	if args.Source == nil {
		return nil, fmt.Errorf("EntitySource は必須です")
	}
	if args.References == nil {
		return nil, fmt.Errorf("ReferenceResolver は必須です")
	}
	if args.Config.AssetsRoot == "" {
		return nil, fmt.Errorf("アセットルートは必須です")
	}

	store := args.Store
	if store == nil {
		store = asset.NewLocalStore()
	}

	catalog, err := loadCatalog(args.Config.CatalogPath)
	if err != nil {
		return nil, err
	}

	gen, err := buildGenerator(args.Backend, args.Fetcher, args.Opener)
	if err != nil {
		return nil, err
	}

	r, err := buildRunner(args.Config, gen, store, args.References)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:        args.Config,
		runner:     r,
		source:     args.Source,
		references: args.References,
		catalog:    catalog,
		store:      store,
		layout:     asset.Layout{Root: args.Config.AssetsRoot},
	}, nil
}

// Run はリクエストされたスコープのバッチを実行します。
// 個別の成果物の失敗は Report に集計され、エラーにはなりません。
// 入力の不備（データベースの読み込み失敗、存在しないカード名、参照画像の欠落）はエラーになります。
func (m *Manager) Run(ctx context.Context, req Request) (Report, error) {
	if err := req.Validate(); err != nil {
		return Report{}, err
	}
	report := Report{Scope: req.Scope}

	if err := m.store.EnsureDirs(m.layout.Root, asset.OutputDirs...); err != nil {
		return report, err
	}

	// データベースはどのスコープでも生成を始める前に読み込みます。board でも壊れたデータベースはエラーです。
	entities, err := m.selectEntities(ctx, req)
	if err != nil {
		return report, err
	}

	runErr := m.runPhases(ctx, req, entities, &report)

	manifest, err := publisher.RebuildManifest(context.WithoutCancel(ctx), m.store, m.layout, asset.OutputDirs)
	if err != nil {
		if runErr != nil {
			return report, runErr
		}
		return report, err
	}
	report.Manifest = manifest

	total := report.Total()
	slog.InfoContext(ctx, "Batch finished",
		"scope", req.Scope,
		"result", total.String(),
		"failed", total.Failed,
		"excluded", total.Excluded,
		"manifest_entries", len(manifest.Generated),
	)
	return report, runErr
}

func (m *Manager) runPhases(ctx context.Context, req Request, entities domain.Entities, report *Report) error {
	if req.Scope.includesFixedAssets() {
		groups := m.fixedAssetGroups(ctx)
		for _, g := range groups {
			if err := m.runner.Preflight(ctx, g.dir, g.specs); err != nil {
				return fmt.Errorf("参照画像の確認に失敗しました: %w", err)
			}
		}
		for _, g := range groups {
			tally, err := m.runner.RunAssets(ctx, g.dir, g.dir, g.specs)
			report.Phases = append(report.Phases, tally)
			if err != nil {
				return err
			}
		}
	}

	if req.Scope.includesEntities() {
		tally, err := m.runner.RunEntities(ctx, asset.CardsDir, entities)
		report.Phases = append(report.Phases, tally)
		if err != nil {
			return err
		}
	}
	return nil
}

type assetGroup struct {
	dir   string
	specs []domain.AssetSpec
}

// fixedAssetGroups はカタログのグループごとに参照画像を解決した AssetSpec を返します。
func (m *Manager) fixedAssetGroups(ctx context.Context) []assetGroup {
	exists := func(path string) bool {
		ok, err := m.references.Exists(ctx, path)
		return err == nil && ok
	}

	groups := make([]assetGroup, 0, len(m.catalog.Groups))
	for _, g := range m.catalog.Groups {
		groups = append(groups, assetGroup{dir: g.Dir, specs: g.Specs(m.cfg.ReferenceDir, exists)})
	}
	return groups
}

// selectEntities はスコープに応じて対象のエンティティを選びます。
func (m *Manager) selectEntities(ctx context.Context, req Request) (domain.Entities, error) {
	all, err := m.source.Load(ctx, m.cfg.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("カードデータベースの読み込みに失敗しました: %w", err)
	}

	switch req.Scope {
	case ScopeBoard:
		return nil, nil
	case ScopeCard:
		e, err := all.FindByName(req.Name)
		if err != nil {
			return nil, err
		}
		return domain.Entities{e}, nil
	case ScopeSample:
		categories := make([]domain.CardCategory, len(m.cfg.SampleCategories))
		for i, c := range m.cfg.SampleCategories {
			categories[i] = domain.CardCategory(c)
		}
		sampled := all.Sample(categories, domain.ArtifactKind(m.cfg.SampleKind))
		slog.InfoContext(ctx, "Sampled entities", "count", len(sampled), "names", sampled.Names())
		return sampled, nil
	default:
		return all, nil
	}
}
