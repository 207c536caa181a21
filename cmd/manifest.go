package cmd

import (
	"log/slog"

	"github.com/shouni/go-tcg-asset-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// manifestCmd は、生成を行わずに manifest.json だけを作り直すのだ。
var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "manifest.json だけを作り直すのだ。",
	Long:  `board/, cards/, frames/ にある PNG を走査して manifest.json を書き出すのだ。APIキーは不要なのだ。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := pipeline.RebuildManifest(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		slog.Info("マニフェストを作り直したのだ", "entries", len(m.Generated))
		return nil
	},
}
