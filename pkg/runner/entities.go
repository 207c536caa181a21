package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-tcg-asset-kit/pkg/asset"
	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
	"github.com/shouni/go-tcg-asset-kit/pkg/generator"
	"github.com/shouni/go-tcg-asset-kit/pkg/prompts"
)

// RunEntities はエンティティごとのイラストを cards 配下に順番に生成します。
// プロンプトが解決できないエンティティは警告を出して除外し、試行数には含めません。
func (r *Runner) RunEntities(ctx context.Context, phase string, entities domain.Entities) (domain.Tally, error) {
	tally := domain.Tally{Phase: phase}
	slog.InfoContext(ctx, "Starting phase", "phase", phase, "dir", asset.CardsDir, "items", len(entities))

	for i, entity := range entities {
		if err := ctx.Err(); err != nil {
			logTally(ctx, tally)
			return tally, err
		}

		logger := slog.With("phase", phase, "item", fmt.Sprintf("%d/%d", i+1, len(entities)), "name", entity.Name)

		prompt, err := r.resolver.Resolve(entity)
		if err != nil {
			if errors.Is(err, prompts.ErrNoPromptAvailable) {
				logger.WarnContext(ctx, "No usable prompt, excluding entity", "kind", entity.Kind, "category", entity.Category)
				tally.RecordExcluded()
				continue
			}
			logger.ErrorContext(ctx, "Failed to resolve prompt", "error", err)
			tally.RecordFailure()
			continue
		}

		path, err := r.layout.CardPath(entity.Name)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to resolve output path", "error", err)
			tally.RecordFailure()
			continue
		}

		it := item{
			path: path,
			req:  generator.Request{Name: asset.ToFilename(entity.Name), Prompt: prompt, Render: r.cardRender},
		}
		if err := r.process(ctx, logger.With("path", path), it, &tally); err != nil {
			logTally(ctx, tally)
			return tally, err
		}
	}

	logTally(ctx, tally)
	return tally, nil
}
