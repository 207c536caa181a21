package asset

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFilename(t *testing.T) {
	tests := map[string]string{
		"Back Alley Bookie":    "back_alley_bookie.png",
		"Mom's Meatloaf":       "moms_meatloaf.png",
		"Half-Day Hero":        "half_day_hero.png",
		"ALL CAPS":             "all_caps.png",
		"Teacher's Pet-Rock 2": "teachers_pet_rock_2.png",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ToFilename(in))
		})
	}

	// 正規化後に同じ名前になるものは衝突する（検出はしない）
	assert.Equal(t, ToFilename("Hall-Pass"), ToFilename("Hall Pass"))
}

func TestLayout(t *testing.T) {
	l := Layout{Root: "game-assets"}

	p, err := l.CardPath("Back Alley Bookie")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("game-assets", "cards", "back_alley_bookie.png"), p)

	m, err := l.ManifestPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("game-assets", "manifest.json"), m)
}

func TestGate_ShouldGenerate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore()
	gate := NewGate(store)

	target := filepath.Join(dir, "cards", "back_alley_bookie.png")

	should, err := gate.ShouldGenerate(ctx, target)
	require.NoError(t, err)
	assert.True(t, should, "ファイルがなければ生成対象になるはず")

	require.NoError(t, store.Write(ctx, target, bytes.NewReader([]byte("png")), "image/png"))

	should, err = gate.ShouldGenerate(ctx, target)
	require.NoError(t, err)
	assert.False(t, should, "既存ファイルはキャッシュヒットとして扱うはず")

	t.Run("ディレクトリはエラーになること", func(t *testing.T) {
		_, err := gate.ShouldGenerate(ctx, dir)
		assert.Error(t, err)
	})
}

func TestLocalStore_EnsureDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, NewLocalStore().EnsureDirs(root, OutputDirs...))

	for _, d := range OutputDirs {
		info, err := os.Stat(filepath.Join(root, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

type recordingWriter struct {
	uri         string
	contentType string
	data        []byte
}

func (w *recordingWriter) Write(_ context.Context, uri string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	w.uri, w.contentType, w.data = uri, contentType, data
	return nil
}

func TestLocalStore_WriteDelegatesToOutputWriter(t *testing.T) {
	ctx := context.Background()
	w := &recordingWriter{}
	store := NewLocalStore(WithOutputWriter(w))

	target := filepath.Join(t.TempDir(), "board", "playmat.png")
	require.NoError(t, store.Write(ctx, target, bytes.NewReader([]byte("png")), "image/png"))

	assert.Equal(t, target, w.uri)
	assert.Equal(t, "image/png", w.contentType)
	assert.Equal(t, []byte("png"), w.data)

	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err), "書き込みは OutputWriter だけが行うはず")
}

func TestLocalStore_WriteCreatesParentDirs(t *testing.T) {
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "frames", "nested", "frame-spell.png")

	require.NoError(t, NewLocalStore().Write(ctx, target, bytes.NewReader([]byte("png")), "image/png"))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got)
}
