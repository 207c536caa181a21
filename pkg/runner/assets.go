package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
	"github.com/shouni/go-tcg-asset-kit/pkg/generator"
)

// RunAssets はカタログの固定アセットを dir 配下に順番に生成します。
// 個別の失敗は集計に含めて処理を続け、キャンセルされた場合のみエラーを返します。
func (r *Runner) RunAssets(ctx context.Context, phase, dir string, specs []domain.AssetSpec) (domain.Tally, error) {
	tally := domain.Tally{Phase: phase}
	slog.InfoContext(ctx, "Starting phase", "phase", phase, "dir", dir, "items", len(specs))

	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			logTally(ctx, tally)
			return tally, err
		}

		logger := slog.With("phase", phase, "item", fmt.Sprintf("%d/%d", i+1, len(specs)), "name", spec.OutputName)
		path, err := r.layout.Path(dir, spec.OutputName)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to resolve output path", "error", err)
			tally.RecordFailure()
			continue
		}

		it := item{
			path: path,
			req:  generator.Request{Name: spec.OutputName, Prompt: spec.Prompt, Render: spec.Render},
		}
		if err := r.process(ctx, logger.With("path", path), it, &tally); err != nil {
			logTally(ctx, tally)
			return tally, err
		}
	}

	logTally(ctx, tally)
	return tally, nil
}

// Preflight は、まだ生成が必要な edit モードのアセットについて参照画像の存在を確認します。
// 1件でも見つからなければ generator.ErrReferenceMissing を含むエラーを返します。
func (r *Runner) Preflight(ctx context.Context, dir string, specs []domain.AssetSpec) error {
	var errs []error
	for _, spec := range specs {
		if spec.Render.Mode != domain.ModeEdit {
			continue
		}

		path, err := r.layout.Path(dir, spec.OutputName)
		if err != nil {
			return err
		}
		need, err := r.gate.ShouldGenerate(ctx, path)
		if err != nil {
			return err
		}
		if !need {
			continue
		}

		ok, err := r.references.Exists(ctx, spec.Render.Reference)
		if err != nil {
			return fmt.Errorf("参照画像の確認に失敗しました (%s): %w", spec.Render.Reference, err)
		}
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s (%s)", generator.ErrReferenceMissing, spec.Render.Reference, spec.OutputName))
		}
	}
	return errors.Join(errs...)
}
