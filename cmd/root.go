package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shouni/go-tcg-asset-kit/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const appName = "tcg-assets"

// flagValues は CLI フラグの値を保持するのだ。設定ファイルより優先するのは明示的に指定されたフラグだけなのだ。
type flagValues struct {
	mode         string
	name         string
	configPath   string
	assetsRoot   string
	source       string
	catalog      string
	referenceDir string
	backend      string
	imageModel   string
	editModel    string
	rateInterval time.Duration
	httpTimeout  time.Duration
	dryRun       bool
	logLevel     string
	logJSON      bool
}

var flags flagValues

// cfg は PersistentPreRunE で読み込まれ、各コマンドで共有される設定なのだ。
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   appName + " [--mode board|sample|all|card] [--name NAME]",
	Short: "トレーディングカードゲームのアセット画像を一括生成するのだ。",
	Long: `盤面・フレームなどの固定アセットと、カードデータベースの各カードのイラストを生成するのだ。
既存のファイルは再生成しないので、何度実行しても足りないものだけが作られるのだ。
最後に manifest.json を作り直すのだよ。`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRunAppE,
	RunE:              generateCommand,
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(manifestCmd)
}

// addAppFlags は、アプリケーション全般に適用されるフラグを定義するのだ。
func addAppFlags(cmd *cobra.Command) {
	// --- バッチの対象範囲 ---
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "sample", "生成モード (board, sample, all, card) なのだ。")
	cmd.Flags().StringVarP(&flags.name, "name", "n", "", "card モードで生成するカードの表示名なのだ。")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "生成せずに、何が生成されるかだけを表示するのだ。")

	// --- 入出力 ---
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "設定ファイル (YAML) のパスなのだ。")
	cmd.PersistentFlags().StringVar(&flags.assetsRoot, "assets-root", "", "アセットの出力先ディレクトリなのだ。")
	cmd.Flags().StringVarP(&flags.source, "source", "s", "", "カードデータベース (csv / json / yaml、ローカル or gs://...) のパスなのだ。")
	cmd.Flags().StringVar(&flags.catalog, "catalog", "", "固定アセットのカタログ (YAML) のパスなのだ。空なら組み込みのカタログを使うのだ。")
	cmd.Flags().StringVar(&flags.referenceDir, "reference-dir", "", "フレーム生成で使う参照画像のディレクトリなのだ。")

	// --- バックエンド ---
	cmd.Flags().StringVar(&flags.backend, "backend", "", "画像生成バックエンド (openai, gemini) なのだ。")
	cmd.Flags().StringVar(&flags.imageModel, "image-model", "", "画像生成に使うモデル名なのだ。")
	cmd.Flags().StringVar(&flags.editModel, "edit-model", "", "参照画像つきの生成に使うモデル名 (openai) なのだ。")
	cmd.Flags().DurationVar(&flags.rateInterval, "rate-interval", 0, "連続するバックエンド呼び出しの最小間隔なのだ。")
	cmd.Flags().DurationVar(&flags.httpTimeout, "http-timeout", 0, "画像ダウンロードのタイムアウトなのだ。")

	// --- ログ ---
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "ログレベル (debug, info, warn, error) なのだ。")
	cmd.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "ログを JSON 形式で出力するのだ。")
}

// preRunAppE は、設定を読み込んでフラグを重ね、ロガーを準備するのだ。
func preRunAppE(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, loaded)
	cfg = loaded

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger.With("run_id", uuid.NewString()))
	return nil
}

// applyFlags は、明示的に指定されたフラグだけで設定を上書きするのだ。
func applyFlags(cmd *cobra.Command, c *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("assets-root") {
		c.AssetsRoot = flags.assetsRoot
	}
	if changed("source") {
		c.SourcePath = flags.source
	}
	if changed("catalog") {
		c.CatalogPath = flags.catalog
	}
	if changed("reference-dir") {
		c.ReferenceDir = flags.referenceDir
	}
	if changed("backend") {
		c.Backend = flags.backend
	}
	if changed("image-model") {
		c.ImageModel = flags.imageModel
	}
	if changed("edit-model") {
		c.EditModel = flags.editModel
	}
	if changed("rate-interval") {
		c.RateInterval = flags.rateInterval
	}
	if changed("http-timeout") {
		c.HTTPTimeout = flags.httpTimeout
	}
	if changed("dry-run") {
		c.DryRun = flags.dryRun
	}
	if changed("log-level") {
		c.Log.Level = flags.logLevel
	}
	if changed("log-json") {
		c.Log.JSON = flags.logJSON
	}

	c.Options.Mode = flags.mode
	c.Options.Name = flags.name
}

// newLogger は、設定に応じたハンドラで標準エラー出力に書き出すロガーを作るのだ。
func newLogger(lc config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(lc.Level))); err != nil {
		return nil, fmt.Errorf("不正なログレベルなのだ: %q", lc.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.JSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// Ctrl-C を受け取ると、処理中のアセットの次で停止するのだ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("実行に失敗したのだ", "error", err)
		stop()
		os.Exit(1)
	}
}
