package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEntityNotFound は、指定された表示名のエンティティがカタログに存在しない場合に返されます。
var ErrEntityNotFound = errors.New("エンティティが見つかりません")

// CardCategory はカードの所属カテゴリ（デッキ）を表します。
type CardCategory string

// ArtifactKind はカードの種別（Stereotype, Spell など）を表します。
type ArtifactKind string

// EntityRecord はカードデータベースの1行分の情報です。読み取り専用で扱います。
type EntityRecord struct {
	Name     string       `json:"name" yaml:"name"`
	Category CardCategory `json:"category" yaml:"category"`
	Kind     ArtifactKind `json:"kind" yaml:"kind"`
	// PromptCandidates は優先度の高い順に並んだプロンプト候補です。nil は値なしを表します。
	PromptCandidates []*string `json:"prompt_candidates" yaml:"prompt_candidates"`
}

// Entities はバッチ処理の対象となるエンティティの一覧です。
type Entities []EntityRecord

// FindByName は表示名が完全一致するエンティティを返します。
func (es Entities) FindByName(name string) (EntityRecord, error) {
	for _, e := range es {
		if e.Name == name {
			return e, nil
		}
	}
	return EntityRecord{}, fmt.Errorf("%w: %q", ErrEntityNotFound, name)
}

// Sample はカテゴリごとに最初に一致したエンティティを1件ずつ選びます。
// categories の順序で走査し、kind が空でなければ種別も一致するものに限ります。
// 該当がないカテゴリはスキップされます。
func (es Entities) Sample(categories []CardCategory, kind ArtifactKind) Entities {
	var picked Entities
	seen := make(map[CardCategory]struct{}, len(categories))

	for _, category := range categories {
		if _, dup := seen[category]; dup {
			continue
		}
		seen[category] = struct{}{}

		for _, e := range es {
			if e.Category != category {
				continue
			}
			if kind != "" && e.Kind != kind {
				continue
			}
			picked = append(picked, e)
			break
		}
	}
	return picked
}

// Validate は表示名の一意性を検証します。
func (es Entities) Validate() error {
	seen := make(map[string]struct{}, len(es))
	var dups []string
	for _, e := range es {
		if _, ok := seen[e.Name]; ok {
			dups = append(dups, e.Name)
			continue
		}
		seen[e.Name] = struct{}{}
	}
	if len(dups) > 0 {
		return fmt.Errorf("表示名が重複しています: %s", strings.Join(dups, ", "))
	}
	return nil
}

// Names は表示名の一覧を返します。
func (es Entities) Names() []string {
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.Name
	}
	return names
}

// StringPtr はプロンプト候補を組み立てるためのヘルパーです。
func StringPtr(s string) *string { return &s }
