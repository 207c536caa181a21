package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shouni/go-tcg-asset-kit/internal/config"
	"github.com/shouni/go-tcg-asset-kit/pkg/workflow"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name    string
		opts    config.GenerateOptions
		want    workflow.Scope
		wantErr bool
	}{
		{name: "未指定は sample", opts: config.GenerateOptions{}, want: workflow.ScopeSample},
		{name: "board", opts: config.GenerateOptions{Mode: "board"}, want: workflow.ScopeBoard},
		{name: "card と名前", opts: config.GenerateOptions{Mode: "card", Name: "Hall Pass"}, want: workflow.ScopeCard},
		{name: "card で名前なし", opts: config.GenerateOptions{Mode: "card"}, wantErr: true},
		{name: "不正なモード", opts: config.GenerateOptions{Mode: "deck"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := buildRequest(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && req.Scope != tt.want {
				t.Errorf("Scope = %q, want %q", req.Scope, tt.want)
			}
		})
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.AssetsRoot = t.TempDir()
	cfg.ProjectRoot = t.TempDir()
	return cfg
}

// writeCardDB は最小限のカードデータベースを書き出して SourcePath に設定します。
func writeCardDB(t *testing.T, cfg *config.Config) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.csv")
	data := "Card_Name,Card_Type,Deck,FirstRelease_Art_Prompt\nHall Pass,Spell,Dropouts,a hall pass\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.SourcePath = path
}

func dryRunBoardConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testConfig(t)
	cfg.Options.Mode = "board"
	cfg.DryRun = true
	cfg.ReferenceDir = t.TempDir()
	if err := os.WriteFile(filepath.Join(cfg.ReferenceDir, "ink-frame.png"), []byte("ref"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeCardDB(t, cfg)
	return cfg
}

func TestExecute_MissingCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := testConfig(t)
	cfg.Options.Mode = "board"

	_, err := Execute(context.Background(), cfg)
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestExecute_InvalidModeBeforeCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := testConfig(t)
	cfg.Options.Mode = "card"

	_, err := Execute(context.Background(), cfg)
	if err == nil || errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("名前の不足は APIキーより先に検出されるべきです: %v", err)
	}
}

func TestExecute_DryRunWithoutCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := dryRunBoardConfig(t)

	report, err := Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	total := report.Total()
	if total.Pending != 11 || total.Succeeded != 0 {
		t.Errorf("total = %+v", total)
	}
	if _, err := os.Stat(filepath.Join(cfg.AssetsRoot, "manifest.json")); err != nil {
		t.Errorf("ドライランでもマニフェストは作成されるべきです: %v", err)
	}
}

func TestExecute_GeminiDryRunWithoutCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := dryRunBoardConfig(t)
	cfg.Backend = "gemini"

	report, err := Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("gemini でもドライランは APIキーなしで動くべきです: %v", err)
	}
	if got := report.Total().Pending; got != 11 {
		t.Errorf("Pending = %d, want 11", got)
	}
}

func TestExecute_BoardWithBrokenCardDB(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg := dryRunBoardConfig(t)
	cfg.DryRun = false
	cfg.SourcePath = filepath.Join(t.TempDir(), "missing.csv")

	_, err := Execute(context.Background(), cfg)
	if err == nil {
		t.Fatal("board でもカードデータベースが読めなければエラーになるべきです")
	}
	if _, statErr := os.Stat(filepath.Join(cfg.AssetsRoot, "board", "playmat.png")); !os.IsNotExist(statErr) {
		t.Errorf("読み込み失敗時に生成が行われています: %v", statErr)
	}
}

func TestRebuildManifest(t *testing.T) {
	cfg := testConfig(t)
	card := filepath.Join(cfg.AssetsRoot, "cards", "hall_pass.png")
	if err := os.MkdirAll(filepath.Dir(card), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(card, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := RebuildManifest(context.Background(), cfg)
	if err != nil {
		t.Fatalf("RebuildManifest() error = %v", err)
	}
	if len(m.Generated) != 1 || m.Generated[0] != "cards/hall_pass.png" {
		t.Errorf("Generated = %v", m.Generated)
	}
}
