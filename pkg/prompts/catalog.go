package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog は盤面・フレームなど固定アセットの定義一式です。
type Catalog struct {
	// Fragments はプロンプト中の {{key}} を置換する共通の文言です。
	Fragments map[string]string `yaml:"fragments"`
	Groups    []Group           `yaml:"groups"`
}

// Group は同じ出力ディレクトリに保存されるアセットのまとまりです。
type Group struct {
	Dir    string  `yaml:"dir"`
	Assets []Entry `yaml:"assets"`
}

// Entry はカタログ上の1アセットの定義です。
type Entry struct {
	Name   string              `yaml:"name"`
	Prompt string              `yaml:"prompt"`
	Render domain.RenderConfig `yaml:"render"`
	// References は edit モードで使う参照画像の候補です。先頭から順に存在するものを採用します。
	References []string `yaml:"references"`
}

// DefaultCatalog は埋め込みのカタログを読み込みます。
func DefaultCatalog() (Catalog, error) {
	return LoadCatalog(defaultCatalogYAML)
}

// LoadCatalogFile は指定パスのカタログを読み込みます。
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("カタログファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	return LoadCatalog(data)
}

// LoadCatalog は YAML を解析し、共通文言の展開と検証を行います。
func LoadCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("カタログの解析に失敗しました: %w", err)
	}

	pairs := make([]string, 0, len(c.Fragments)*2)
	for k, v := range c.Fragments {
		pairs = append(pairs, "{{"+k+"}}", strings.TrimSpace(v))
	}
	expander := strings.NewReplacer(pairs...)

	for gi := range c.Groups {
		g := &c.Groups[gi]
		if g.Dir == "" {
			return Catalog{}, fmt.Errorf("グループ %d の dir が空です", gi)
		}
		seen := make(map[string]struct{}, len(g.Assets))
		for ai := range g.Assets {
			e := &g.Assets[ai]
			if e.Name == "" {
				return Catalog{}, fmt.Errorf("%s: アセット %d の name が空です", g.Dir, ai)
			}
			if _, dup := seen[e.Name]; dup {
				return Catalog{}, fmt.Errorf("%s: アセット名が重複しています: %s", g.Dir, e.Name)
			}
			seen[e.Name] = struct{}{}

			e.Prompt = strings.TrimSpace(expander.Replace(e.Prompt))
			if e.Prompt == "" {
				return Catalog{}, fmt.Errorf("%s/%s: prompt が空です", g.Dir, e.Name)
			}
			if strings.Contains(e.Prompt, "{{") {
				return Catalog{}, fmt.Errorf("%s/%s: 未定義のプレースホルダがあります", g.Dir, e.Name)
			}

			candidate := e.Render
			if len(e.References) > 0 {
				candidate.Reference = e.References[0]
			}
			if err := candidate.Validate(); err != nil {
				return Catalog{}, fmt.Errorf("%s/%s: %w", g.Dir, e.Name, err)
			}
		}
	}
	return c, nil
}

// Group は dir に一致するグループを返します。
func (c Catalog) Group(dir string) (Group, bool) {
	for _, g := range c.Groups {
		if g.Dir == dir {
			return g, true
		}
	}
	return Group{}, false
}

// Specs は参照画像のパスを referenceDir 基準で解決した AssetSpec の一覧を返します。
// 候補がどれも存在しない場合は先頭の候補をそのまま使い、存在チェックは呼び出し側に委ねます。
func (g Group) Specs(referenceDir string, exists func(string) bool) []domain.AssetSpec {
	if exists == nil {
		exists = fileExists
	}

	specs := make([]domain.AssetSpec, 0, len(g.Assets))
	for _, e := range g.Assets {
		render := e.Render
		if render.Mode == domain.ModeEdit && len(e.References) > 0 {
			render.Reference = joinReference(referenceDir, e.References[0])
			for _, ref := range e.References {
				candidate := joinReference(referenceDir, ref)
				if exists(candidate) {
					render.Reference = candidate
					break
				}
			}
		}
		specs = append(specs, domain.AssetSpec{
			OutputName: e.Name,
			Prompt:     e.Prompt,
			Render:     render,
		})
	}
	return specs
}

// joinReference は参照画像のパスを組み立てます。gs:// の場合は "/" で連結します。
func joinReference(dir, name string) string {
	if strings.HasPrefix(dir, "gs://") {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
