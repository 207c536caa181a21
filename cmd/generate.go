package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-tcg-asset-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// generateCommand は、ルートコマンドとしてアセット生成バッチを実行するのだ。
// 一部のアセットが失敗しても終了コードは 0 なのだ。
func generateCommand(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("引数は受け付けないのだ。カード名は --name で指定してほしいのだ: %v", args)
	}

	report, err := pipeline.Execute(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	for _, phase := range report.Phases {
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s generated (skipped %d, failed %d, excluded %d)\n",
			phase.Phase, phase.String(), phase.Skipped, phase.Failed, phase.Excluded)
	}
	total := report.Total()
	if total.Failed > 0 {
		slog.Warn("一部のアセットの生成に失敗したのだ。もう一度実行すると失敗したものだけ再試行されるのだ", "failed", total.Failed)
	}
	slog.Info("すべての生成工程が完了したのだ！", "manifest_entries", len(report.Manifest.Generated))
	return nil
}
