package workflow

import (
	"context"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
)

// EntitySource はカードデータベースを読み込みます。
type EntitySource interface {
	Load(ctx context.Context, path string) (domain.Entities, error)
}

// ReferenceResolver は参照画像の有無を確認します。
type ReferenceResolver interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// Report はバッチ1回分の結果です。
type Report struct {
	Scope    Scope
	Phases   []domain.Tally
	Manifest domain.Manifest
}

// Total は全フェーズの集計を合算して返します。
func (r Report) Total() domain.Tally {
	total := domain.Tally{Phase: "total"}
	for _, p := range r.Phases {
		total.Add(p)
	}
	return total
}
