package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"
	"github.com/shouni/go-tcg-asset-kit/pkg/generator"
)

// Columns はカードデータベースの列名と EntityRecord の対応です。
type Columns struct {
	Name     string   `koanf:"name"`
	Kind     string   `koanf:"kind"`
	Category string   `koanf:"category"`
	Prompts  []string `koanf:"prompts"`
}

// DefaultColumns はカードデータベースの標準の列名を返します。
// Prompts は優先度の高い順に並んでいます。
func DefaultColumns() Columns {
	return Columns{
		Name:     "Card_Name",
		Kind:     "Card_Type",
		Category: "Deck",
		Prompts:  []string{"FirstRelease_Art_Prompt", "Custom_Art_Prompt", "Underground_Art_Prompt"},
	}
}

func (c Columns) validate() error {
	if c.Name == "" {
		return fmt.Errorf("名前列の指定は必須です")
	}
	if len(c.Prompts) == 0 {
		return fmt.Errorf("プロンプト列を1つ以上指定してください")
	}
	return nil
}

// row は1行分の生の値です。値のない列は nil になります。
type row map[string]*string

// decodeFunc はファイル形式ごとのデコード処理です。
type decodeFunc func(r io.Reader) ([]row, error)

var decoders = map[string]decodeFunc{
	".csv":  decodeCSV,
	".json": decodeJSON,
	".yaml": decodeYAML,
	".yml":  decodeYAML,
}

// Loader はカードデータベースを読み込み、domain.Entities に変換します。
type Loader struct {
	opener  generator.Opener
	columns Columns
}

// NewLoader は Loader を生成します。
func NewLoader(opener generator.Opener, columns Columns) (*Loader, error) {
	if opener == nil {
		return nil, fmt.Errorf("opener は必須です")
	}
	if err := columns.validate(); err != nil {
		return nil, err
	}
	return &Loader{opener: opener, columns: columns}, nil
}

// Load は拡張子から形式を判定してカードデータベースを読み込みます。
// 名前のない行は読み飛ばし、名前の重複はエラーになります。
func (l *Loader) Load(ctx context.Context, path string) (domain.Entities, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("サポートされていないデータベース形式です: %q", ext)
	}

	slog.InfoContext(ctx, "Loading entity source", "path", path)
	rc, err := l.opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("データベース '%s' のオープンに失敗しました: %w", path, err)
	}
	defer rc.Close()

	rows, err := decode(rc)
	if err != nil {
		return nil, fmt.Errorf("データベース '%s' の解析に失敗しました: %w", path, err)
	}

	entities := l.toEntities(rows)
	if err := entities.Validate(); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Entity source loaded", "path", path, "rows", len(rows), "entities", len(entities))
	return entities, nil
}

func (l *Loader) toEntities(rows []row) domain.Entities {
	entities := make(domain.Entities, 0, len(rows))
	for _, r := range rows {
		name := r.value(l.columns.Name)
		if name == "" {
			continue
		}

		candidates := make([]*string, len(l.columns.Prompts))
		for i, col := range l.columns.Prompts {
			candidates[i] = r[col]
		}

		entities = append(entities, domain.EntityRecord{
			Name:             name,
			Category:         domain.CardCategory(r.value(l.columns.Category)),
			Kind:             domain.ArtifactKind(r.value(l.columns.Kind)),
			PromptCandidates: candidates,
		})
	}
	return entities
}

func (r row) value(col string) string {
	if v := r[col]; v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}
