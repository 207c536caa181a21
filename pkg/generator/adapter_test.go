package generator

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(4, 6, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

type fakeBackend struct {
	synthResult Result
	synthErr    error
	editResult  Result
	editErr     error

	synthCalls int
	editCalls  int
	lastRef    Reference
	lastPrompt string
}

func (f *fakeBackend) Synthesize(_ context.Context, prompt string, _ domain.RenderConfig) (Result, error) {
	f.synthCalls++
	f.lastPrompt = prompt
	return f.synthResult, f.synthErr
}

func (f *fakeBackend) Edit(_ context.Context, prompt string, _ domain.RenderConfig, ref Reference) (Result, error) {
	f.editCalls++
	f.lastPrompt = prompt
	f.lastRef = ref
	return f.editResult, f.editErr
}

type fakeFetcher struct {
	data  []byte
	err   error
	calls []string
}

func (f *fakeFetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	return f.data, f.err
}

type mapOpener struct {
	files map[string][]byte
	opens int
}

func (o *mapOpener) Open(_ context.Context, path string) (io.ReadCloser, error) {
	o.opens++
	data, ok := o.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func editRender(ref string) domain.RenderConfig {
	return domain.RenderConfig{
		Size:       domain.SizePortrait,
		Background: domain.BackgroundTransparent,
		Quality:    domain.QualityAuto,
		Mode:       domain.ModeEdit,
		Reference:  ref,
	}
}

func TestAdapter_Generate(t *testing.T) {
	ctx := context.Background()
	pngData := encodeTestImage(t, imaging.PNG)

	t.Run("synthesize は inline データをそのまま返すこと", func(t *testing.T) {
		backend := &fakeBackend{synthResult: InlineResult(pngData, "image/png")}
		fetcher := &fakeFetcher{}
		a, err := NewAdapter(backend, fetcher, NewReferenceLoader(&mapOpener{}))
		require.NoError(t, err)

		got, err := a.Generate(ctx, Request{Name: "playmat.png", Prompt: "table", Render: domain.DefaultCardRender()})
		require.NoError(t, err)
		assert.Equal(t, pngData, got)
		assert.Equal(t, 1, backend.synthCalls)
		assert.Equal(t, 0, backend.editCalls)
		assert.Empty(t, fetcher.calls)
	})

	t.Run("URL のみの応答は取得してから返すこと", func(t *testing.T) {
		backend := &fakeBackend{editResult: URLResult("https://example.com/img.png")}
		fetcher := &fakeFetcher{data: pngData}
		opener := &mapOpener{files: map[string][]byte{"refs/ink-frame.png": []byte("ref")}}
		a, err := NewAdapter(backend, fetcher, NewReferenceLoader(opener))
		require.NoError(t, err)

		got, err := a.Generate(ctx, Request{Name: "frame-spell.png", Prompt: "frame", Render: editRender("refs/ink-frame.png")})
		require.NoError(t, err)
		assert.Equal(t, pngData, got)
		assert.Equal(t, []string{"https://example.com/img.png"}, fetcher.calls)
		assert.Equal(t, []byte("ref"), backend.lastRef.Data)
		assert.Equal(t, "refs/ink-frame.png", backend.lastRef.Path)
	})

	t.Run("参照画像は1度だけ読み込まれること", func(t *testing.T) {
		backend := &fakeBackend{editResult: InlineResult(pngData, "image/png")}
		opener := &mapOpener{files: map[string][]byte{"ink.png": []byte("ref")}}
		a, err := NewAdapter(backend, &fakeFetcher{}, NewReferenceLoader(opener))
		require.NoError(t, err)

		for _, name := range []string{"frame-monster.png", "frame-trap.png"} {
			_, err := a.Generate(ctx, Request{Name: name, Prompt: "frame", Render: editRender("ink.png")})
			require.NoError(t, err)
		}
		assert.Equal(t, 1, opener.opens)
		assert.Equal(t, 2, backend.editCalls)
	})

	t.Run("参照画像がなければ ErrReferenceMissing になりバックエンドを呼ばないこと", func(t *testing.T) {
		backend := &fakeBackend{}
		a, err := NewAdapter(backend, &fakeFetcher{}, NewReferenceLoader(&mapOpener{}))
		require.NoError(t, err)

		_, err = a.Generate(ctx, Request{Name: "frame-monster.png", Prompt: "frame", Render: editRender("missing.png")})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrReferenceMissing)

		var genErr *GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, "frame-monster.png", genErr.Name)
		assert.Equal(t, domain.ModeEdit, genErr.Mode)
		assert.Equal(t, 0, backend.editCalls)
	})

	t.Run("バックエンドのエラーは GenerationError に包まれること", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		backend := &fakeBackend{synthErr: boom}
		a, err := NewAdapter(backend, &fakeFetcher{}, NewReferenceLoader(&mapOpener{}))
		require.NoError(t, err)

		_, err = a.Generate(ctx, Request{Name: "x.png", Prompt: "x", Render: domain.DefaultCardRender()})
		assert.ErrorIs(t, err, boom)
		assert.True(t, strings.Contains(err.Error(), "x.png"))
	})

	t.Run("空の応答は失敗になること", func(t *testing.T) {
		a, err := NewAdapter(&fakeBackend{}, &fakeFetcher{}, NewReferenceLoader(&mapOpener{}))
		require.NoError(t, err)

		_, err = a.Generate(ctx, Request{Name: "x.png", Prompt: "x", Render: domain.DefaultCardRender()})
		assert.ErrorIs(t, err, ErrEmptyResult)
	})

	t.Run("不正な描画設定はバックエンドを呼ばずに失敗すること", func(t *testing.T) {
		backend := &fakeBackend{}
		a, err := NewAdapter(backend, &fakeFetcher{}, NewReferenceLoader(&mapOpener{}))
		require.NoError(t, err)

		render := domain.DefaultCardRender()
		render.Size = "640x480"
		_, err = a.Generate(ctx, Request{Name: "x.png", Prompt: "x", Render: render})
		assert.Error(t, err)
		assert.Equal(t, 0, backend.synthCalls)
	})
}

func TestNewAdapter_RequiresDependencies(t *testing.T) {
	_, err := NewAdapter(nil, &fakeFetcher{}, NewReferenceLoader(&mapOpener{}))
	assert.Error(t, err)
	_, err = NewAdapter(&fakeBackend{}, nil, NewReferenceLoader(&mapOpener{}))
	assert.Error(t, err)
	_, err = NewAdapter(&fakeBackend{}, &fakeFetcher{}, nil)
	assert.Error(t, err)
}

func TestToPNG(t *testing.T) {
	t.Run("JPEG は PNG に変換されること", func(t *testing.T) {
		jpg := encodeTestImage(t, imaging.JPEG)
		out, err := toPNG(jpg)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, pngSignature))

		img, err := imaging.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 4, img.Bounds().Dx())
		assert.Equal(t, 6, img.Bounds().Dy())
	})

	t.Run("画像でないデータはエラーになること", func(t *testing.T) {
		_, err := toPNG([]byte("not an image"))
		assert.Error(t, err)
	})
}
