package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

const gcsScheme = "gs://"

// RemoteReaderFactory は gs:// パスを読むための InputReader を生成します。
type RemoteReaderFactory func(ctx context.Context) (remoteio.InputReader, error)

// Opener はローカルパスを os.Open で、gs:// パスを remote-io の InputReader で開きます。
// InputReader は最初に gs:// パスを開くときに1度だけ生成されます。
type Opener struct {
	newRemote RemoteReaderFactory

	once      sync.Once
	remote    remoteio.InputReader
	remoteErr error
}

// NewOpener は Opener を生成します。newRemote が nil の場合、gs:// パスは開けません。
func NewOpener(newRemote RemoteReaderFactory) *Opener {
	return &Opener{newRemote: newRemote}
}

// IsRemote はパスが GCS を指しているかどうかを返します。
func IsRemote(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}

// Open は指定されたパスを読み込み用に開きます。
// ローカルファイルが存在しない場合のエラーは fs.ErrNotExist と比較できます。
func (o *Opener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if !IsRemote(path) {
		return os.Open(path)
	}

	reader, err := o.remoteReader(ctx)
	if err != nil {
		return nil, err
	}
	return reader.Open(ctx, path)
}

func (o *Opener) remoteReader(ctx context.Context) (remoteio.InputReader, error) {
	o.once.Do(func() {
		if o.newRemote == nil {
			o.remoteErr = fmt.Errorf("gs:// パスを読み込むためのリーダーが設定されていません")
			return
		}
		o.remote, o.remoteErr = o.newRemote(ctx)
		if o.remoteErr != nil {
			o.remoteErr = fmt.Errorf("リモートリーダーの初期化に失敗しました: %w", o.remoteErr)
		}
	})
	return o.remote, o.remoteErr
}

// Exists はパスにファイルが存在するかを返します。gs:// パスは実際に開いて確認します。
func (o *Opener) Exists(ctx context.Context, path string) (bool, error) {
	if !IsRemote(path) {
		info, err := os.Stat(path)
		if err == nil {
			return !info.IsDir(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	rc, err := o.Open(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, rc.Close()
}
