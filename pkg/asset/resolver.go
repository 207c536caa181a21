package asset

import (
	"fmt"
	"path"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// CardsDir はカードイラストを格納するディレクトリ名です。
	CardsDir = "cards"
	// BoardDir は盤面テクスチャやカード裏面を格納するディレクトリ名です。
	BoardDir = "board"
	// FramesDir はカードフレームのオーバーレイを格納するディレクトリ名です。
	FramesDir = "frames"
	// ManifestFile は生成済みアセット一覧のファイル名です。
	ManifestFile = "manifest.json"
	// ImageExt は生成物の拡張子です。
	ImageExt = ".png"
)

// OutputDirs はマニフェストの走査対象となるディレクトリです。
var OutputDirs = []string{BoardDir, CardsDir, FramesDir}

var filenameNormalizer = strings.NewReplacer(
	" ", "_",
	"'", "",
	"-", "_",
)

// ToFilename は表示名からファイル名を決定的に導出します。
// 小文字化し、空白とハイフンをアンダースコアに、アポストロフィを除去して拡張子を付けます。
// 衝突検出は行いません。
func ToFilename(displayName string) string {
	return filenameNormalizer.Replace(strings.ToLower(displayName)) + ImageExt
}

// Layout はアセットルート配下の出力先を解決します。
type Layout struct {
	Root string
}

// Path は dir と name から出力パスを返します。
func (l Layout) Path(dir, name string) (string, error) {
	p, err := urlpath.ResolveOutputPath(l.Root, path.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("出力パスの解決に失敗しました (dir: %s, name: %s): %w", dir, name, err)
	}
	return p, nil
}

// CardPath はカード表示名から出力パスを返します。
func (l Layout) CardPath(displayName string) (string, error) {
	return l.Path(CardsDir, ToFilename(displayName))
}

// ManifestPath はマニフェストの出力パスを返します。
func (l Layout) ManifestPath() (string, error) {
	p, err := urlpath.ResolveOutputPath(l.Root, ManifestFile)
	if err != nil {
		return "", fmt.Errorf("マニフェストのパス解決に失敗しました: %w", err)
	}
	return p, nil
}
