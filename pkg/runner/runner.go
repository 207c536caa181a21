package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-tcg-asset-kit/pkg/asset"
	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
	"github.com/shouni/go-tcg-asset-kit/pkg/generator"
	"github.com/shouni/go-tcg-asset-kit/pkg/prompts"

	"golang.org/x/time/rate"
)

const pngContentType = "image/png"

// ReferenceChecker は edit モードの参照画像が存在するかを確認します。
type ReferenceChecker interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// Args は Runner の依存関係です。
type Args struct {
	Generator  generator.Generator
	Store      asset.Store
	References ReferenceChecker
	Resolver   *prompts.Resolver
	Layout     asset.Layout
	// CardRender はエンティティのイラストに使う描画設定です。ゼロ値の場合は domain.DefaultCardRender を使います。
	CardRender   domain.RenderConfig
	RateInterval time.Duration
	DryRun       bool
}

// Runner は成果物を1件ずつ順番に処理するバッチ実行器です。
// 同時に実行中のバックエンド呼び出しは常に1件以下です。
type Runner struct {
	generator  generator.Generator
	store      asset.Store
	gate       *asset.Gate
	references ReferenceChecker
	resolver   *prompts.Resolver
	layout     asset.Layout
	cardRender domain.RenderConfig
	limiter    *rate.Limiter
	dryRun     bool
}

// New は依存関係を検証して Runner を生成します。
func New(args Args) (*Runner, error) {
	if args.Generator == nil {
		return nil, fmt.Errorf("Generator は必須です")
	}
	if args.Store == nil {
		return nil, fmt.Errorf("Store は必須です")
	}
	if args.Resolver == nil {
		return nil, fmt.Errorf("Resolver は必須です")
	}
	if args.Layout.Root == "" {
		return nil, fmt.Errorf("アセットルートは必須です")
	}

	cardRender := args.CardRender
	if cardRender == (domain.RenderConfig{}) {
		cardRender = domain.DefaultCardRender()
	}
	if err := cardRender.Validate(); err != nil {
		return nil, fmt.Errorf("カードの描画設定が不正です: %w", err)
	}

	references := args.References
	if references == nil {
		references = args.Store
	}

	return &Runner{
		generator:  args.Generator,
		store:      args.Store,
		gate:       asset.NewGate(args.Store),
		references: references,
		resolver:   args.Resolver,
		layout:     args.Layout,
		cardRender: cardRender,
		limiter:    newLimiter(args.RateInterval),
		dryRun:     args.DryRun,
	}, nil
}

// newLimiter は連続するバックエンド呼び出しの間隔を制御します。0 以下は制限なしです。
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// item はバッチ内の1件の処理単位です。
type item struct {
	path string
	req  generator.Request
}

// process はゲート判定、生成、保存を行い、結果を tally に記録します。
// 個別の失敗は記録してから nil を返し、コンテキストのキャンセルのみをエラーとして返します。
func (r *Runner) process(ctx context.Context, logger *slog.Logger, it item, tally *domain.Tally) error {
	need, err := r.gate.ShouldGenerate(ctx, it.path)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to check existing artifact", "error", err)
		tally.RecordFailure()
		return nil
	}
	if !need {
		logger.InfoContext(ctx, "Artifact already exists, skipping")
		tally.RecordSkip()
		return nil
	}
	if r.dryRun {
		logger.InfoContext(ctx, "Artifact would be generated (dry run)", "mode", it.req.Render.Mode)
		tally.RecordPending()
		return nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Generating artifact", "mode", it.req.Render.Mode, "size", it.req.Render.Size)
	data, err := r.generator.Generate(ctx, it.req)
	if err != nil {
		logger.ErrorContext(ctx, "Artifact generation failed", "error", err)
		tally.RecordFailure()
		return nil
	}

	if err := r.store.Write(ctx, it.path, bytes.NewReader(data), pngContentType); err != nil {
		logger.ErrorContext(ctx, "Failed to save artifact", "error", err)
		tally.RecordFailure()
		return nil
	}

	logger.InfoContext(ctx, "Artifact saved", "bytes", len(data))
	tally.RecordSuccess()
	return nil
}

// logTally はフェーズの最終結果を出力します。
func logTally(ctx context.Context, tally domain.Tally) {
	slog.InfoContext(ctx, "Phase finished",
		"phase", tally.Phase,
		"result", tally.String(),
		"skipped", tally.Skipped,
		"failed", tally.Failed,
		"excluded", tally.Excluded,
		"pending", tally.Pending,
	)
}
