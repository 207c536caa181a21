package workflow

import (
	"fmt"
	"strings"
)

// Scope はバッチの対象範囲です。
type Scope string

const (
	// ScopeBoard は盤面・フレームなどの固定アセットのみを対象にします。
	ScopeBoard Scope = "board"
	// ScopeSample は固定アセットに加え、デッキごとの代表カードを対象にします。
	ScopeSample Scope = "sample"
	// ScopeAll は固定アセットに加え、全カードを対象にします。
	ScopeAll Scope = "all"
	// ScopeCard は名前を指定した1枚のカードのみを対象にします。
	ScopeCard Scope = "card"
)

// DefaultScope はモード未指定時のスコープです。
const DefaultScope = ScopeSample

// Scopes は指定可能なスコープの一覧です。
var Scopes = []Scope{ScopeBoard, ScopeSample, ScopeAll, ScopeCard}

// ParseScope は文字列をスコープに変換します。
func ParseScope(s string) (Scope, error) {
	for _, sc := range Scopes {
		if strings.EqualFold(s, string(sc)) {
			return sc, nil
		}
	}
	return "", fmt.Errorf("不正なモードです: %q (board, sample, all, card のいずれかを指定してください)", s)
}

// includesFixedAssets はスコープが固定アセットを含むかどうかを返します。
func (s Scope) includesFixedAssets() bool {
	return s != ScopeCard
}

// includesEntities はスコープがカードイラストを含むかどうかを返します。
func (s Scope) includesEntities() bool {
	return s != ScopeBoard
}

// Request はバッチ1回分の実行指示です。
type Request struct {
	Scope Scope
	// Name は ScopeCard の場合にのみ必須となるカードの表示名です。
	Name string
}

// Validate はスコープと名前の組み合わせを検証します。
func (r Request) Validate() error {
	if _, err := ParseScope(string(r.Scope)); err != nil {
		return err
	}
	if r.Scope == ScopeCard && strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("card モードでは --name の指定が必須です")
	}
	return nil
}
