package domain

import "fmt"

// Manifest は出力ディレクトリに現存する成果物の一覧です。実行のたびにディスクから再構築されます。
type Manifest struct {
	Generated []string `json:"generated"`
}

// Tally はフェーズごとの処理件数の集計です。
type Tally struct {
	Phase     string
	Succeeded int // 生成成功とキャッシュヒットの合計
	Attempted int // 対象となった件数（プロンプト解決できなかったものは含まない）
	Skipped   int // 既存ファイルによるスキップ
	Failed    int
	Excluded  int // プロンプトが解決できず対象外となった件数
	Pending   int // ドライランで生成対象と判定された件数
}

// RecordSuccess は生成成功を記録します。
func (t *Tally) RecordSuccess() {
	t.Attempted++
	t.Succeeded++
}

// RecordSkip はキャッシュヒットによるスキップを成功として記録します。
func (t *Tally) RecordSkip() {
	t.Attempted++
	t.Succeeded++
	t.Skipped++
}

// RecordFailure は失敗を記録します。
func (t *Tally) RecordFailure() {
	t.Attempted++
	t.Failed++
}

// RecordPending はドライランで生成が必要と判定されたことを記録します。成功には数えません。
func (t *Tally) RecordPending() {
	t.Attempted++
	t.Pending++
}

// RecordExcluded はプロンプト未解決による除外を記録します。
func (t *Tally) RecordExcluded() {
	t.Excluded++
}

// Add は other の件数を加算します。Phase は変更しません。
func (t *Tally) Add(other Tally) {
	t.Succeeded += other.Succeeded
	t.Attempted += other.Attempted
	t.Skipped += other.Skipped
	t.Failed += other.Failed
	t.Excluded += other.Excluded
	t.Pending += other.Pending
}

// String は "succeeded/attempted" 形式の要約を返します。
func (t Tally) String() string {
	return fmt.Sprintf("%d/%d", t.Succeeded, t.Attempted)
}
