package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultReferenceTTL      = 30 * time.Minute
	referenceCleanupInterval = time.Hour
)

// ReferenceLoader は参照画像を読み込み、パスごとにキャッシュします。
// 同じ参照画像を使うフレームが続いても読み込みは1回で済みます。
type ReferenceLoader struct {
	opener Opener
	cache  *cache.Cache
}

// NewReferenceLoader は ReferenceLoader を生成します。
func NewReferenceLoader(opener Opener) *ReferenceLoader {
	return &ReferenceLoader{
		opener: opener,
		cache:  cache.New(defaultReferenceTTL, referenceCleanupInterval),
	}
}

// Load は参照画像を読み込みます。存在しない場合は ErrReferenceMissing を返します。
func (l *ReferenceLoader) Load(ctx context.Context, path string) (Reference, error) {
	if data, ok := l.cache.Get(path); ok {
		if b, ok := data.([]byte); ok {
			return Reference{Path: path, Data: b}, nil
		}
	}

	rc, err := l.opener.Open(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Reference{}, fmt.Errorf("%w: %s", ErrReferenceMissing, path)
		}
		return Reference{}, fmt.Errorf("参照画像 '%s' のオープンに失敗しました: %w", path, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return Reference{}, fmt.Errorf("参照画像 '%s' の読み込みに失敗しました: %w", path, err)
	}
	l.cache.SetDefault(path, b)
	return Reference{Path: path, Data: b}, nil
}
