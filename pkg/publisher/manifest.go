package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shouni/go-tcg-asset-kit/pkg/asset"
	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
)

// BuildManifest は root 配下の各ディレクトリを走査し、存在する PNG の一覧を作成します。
// パスは root からの相対パスを "/" 区切りで表し、全体を辞書順に並べます。
// 存在しないディレクトリは空として扱います。
func BuildManifest(ctx context.Context, root string, dirs []string) (domain.Manifest, error) {
	generated := make([]string, 0)
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return domain.Manifest{}, err
		}
		files, err := scanDir(root, dir)
		if err != nil {
			return domain.Manifest{}, err
		}
		generated = append(generated, files...)
	}
	sort.Strings(generated)
	return domain.Manifest{Generated: generated}, nil
}

// scanDir は dir 直下の PNG の通常ファイルを返します。サブディレクトリは辿りません。
func scanDir(root, dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ディレクトリ '%s' の走査に失敗しました: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), asset.ImageExt) {
			continue
		}
		files = append(files, path.Join(filepath.ToSlash(dir), e.Name()))
	}
	return files, nil
}

// EncodeManifest はマニフェストを2スペースインデントの JSON に変換します。末尾に改行を付けます。
func EncodeManifest(m domain.Manifest) ([]byte, error) {
	if m.Generated == nil {
		m.Generated = []string{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("マニフェストのエンコードに失敗しました: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteManifest はマニフェストを <root>/manifest.json に上書き保存します。
func WriteManifest(ctx context.Context, store asset.Store, layout asset.Layout, m domain.Manifest) (string, error) {
	data, err := EncodeManifest(m)
	if err != nil {
		return "", err
	}
	manifestPath, err := layout.ManifestPath()
	if err != nil {
		return "", err
	}
	if err := store.Write(ctx, manifestPath, strings.NewReader(string(data)), "application/json"); err != nil {
		return "", fmt.Errorf("マニフェストの保存に失敗しました: %w", err)
	}
	return manifestPath, nil
}

// RebuildManifest はディスクの現状からマニフェストを作り直して保存します。
func RebuildManifest(ctx context.Context, store asset.Store, layout asset.Layout, dirs []string) (domain.Manifest, error) {
	m, err := BuildManifest(ctx, layout.Root, dirs)
	if err != nil {
		return domain.Manifest{}, err
	}
	manifestPath, err := WriteManifest(ctx, store, layout, m)
	if err != nil {
		return domain.Manifest{}, err
	}
	slog.InfoContext(ctx, "Manifest written", "path", manifestPath, "entries", len(m.Generated))
	return m, nil
}
