package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// Store は成果物の存在確認と保存を担います。
type Store interface {
	Exists(ctx context.Context, path string) (bool, error)
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
	EnsureDirs(root string, dirs ...string) error
}

// LocalStore はローカルファイルシステム上の Store 実装です。
// 存在確認は os.Stat で行い、書き込みは remoteio.OutputWriter に委譲します。
type LocalStore struct {
	writer  remoteio.OutputWriter
	dirPerm os.FileMode
}

// StoreOption は LocalStore の設定を変更します。
type StoreOption func(*LocalStore)

// WithOutputWriter は書き込みに使う OutputWriter を差し替えます。
func WithOutputWriter(w remoteio.OutputWriter) StoreOption {
	return func(s *LocalStore) {
		if w != nil {
			s.writer = w
		}
	}
}

// NewLocalStore は LocalStore を生成します。
// OutputWriter を指定しない場合は、クラウドクライアントを持たない UniversalIOWriter でローカルに書き込みます。
func NewLocalStore(opts ...StoreOption) *LocalStore {
	s := &LocalStore{dirPerm: 0o755}
	for _, opt := range opts {
		opt(s)
	}
	if s.writer == nil {
		s.writer = remoteio.NewUniversalIOWriter(nil, nil)
	}
	return s
}

// Exists はパスに通常ファイルが存在するかを返します。
func (s *LocalStore) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return false, fmt.Errorf("出力パスがディレクトリです: %s", path)
		}
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("ファイル状態の確認に失敗しました (path: %s): %w", path, err)
}

// Write は OutputWriter を通して内容を書き込みます。親ディレクトリは OutputWriter が作成します。
func (s *LocalStore) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.writer.Write(ctx, path, r, contentType); err != nil {
		return fmt.Errorf("ファイルの保存に失敗しました (path: %s): %w", path, err)
	}
	return nil
}

// EnsureDirs は root 配下に dirs を作成します。
func (s *LocalStore) EnsureDirs(root string, dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), s.dirPerm); err != nil {
			return fmt.Errorf("ディレクトリ '%s' の作成に失敗しました: %w", d, err)
		}
	}
	return nil
}

// Gate は既存ファイルの有無だけで生成要否を判定します。内容や日時は比較しません。
type Gate struct {
	store Store
}

// NewGate は Gate を生成します。
func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// ShouldGenerate はパスにファイルが存在しない場合に true を返します。
func (g *Gate) ShouldGenerate(ctx context.Context, path string) (bool, error) {
	exists, err := g.store.Exists(ctx, path)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
