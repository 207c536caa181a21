package prompts

import (
	"errors"
	"strings"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
)

// DefaultSubjectSuffix は、どの候補フィールドからプロンプトを得ても構図を揃えるための指示です。
const DefaultSubjectSuffix = "Transparent background, character/subject only, no background scenery."

// ErrNoPromptAvailable は、利用可能なプロンプト候補が1つもない場合に返されます。
// 呼び出し側はこのエンティティをバッチから除外し、処理を継続します。
var ErrNoPromptAvailable = errors.New("利用可能なプロンプトがありません")

// Resolver はエンティティのプロンプト候補から生成用プロンプトを決定します。
type Resolver struct {
	suffix string
}

// NewResolver は末尾に付与する指示文を指定して Resolver を生成します。空文字の場合は何も付与しません。
func NewResolver(suffix string) *Resolver {
	return &Resolver{suffix: strings.TrimSpace(suffix)}
}

// Resolve は最初の有効な候補に指示文を付与して返します。
func (r *Resolver) Resolve(entity domain.EntityRecord) (string, error) {
	prompt, ok := FirstCandidate(entity.PromptCandidates)
	if !ok {
		return "", ErrNoPromptAvailable
	}
	return cleanJoin(prompt, r.suffix), nil
}

// FirstCandidate は nil や空白のみの候補を飛ばし、最初に値を持つ候補を返します。
func FirstCandidate(candidates []*string) (string, bool) {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if strings.TrimSpace(*c) == "" {
			continue
		}
		return *c, true
	}
	return "", false
}

// cleanJoin は空の要素を除外してスペースで連結します。
func cleanJoin(parts ...string) string {
	var cleaned []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, " ")
}
