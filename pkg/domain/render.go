package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode は生成モード（テキストからの合成か、参照画像を使った編集か）です。
type Mode string

const (
	ModeSynthesize Mode = "synthesize"
	ModeEdit       Mode = "edit"
)

// Background は出力画像の背景指定です。
type Background string

const (
	BackgroundOpaque      Background = "opaque"
	BackgroundTransparent Background = "transparent"
)

// Quality は生成品質の指定です。
type Quality string

const (
	QualityAuto Quality = "auto"
	QualityHigh Quality = "high"
)

// Size はバックエンドが受け付けるピクセル寸法です。
type Size string

const (
	SizeSquare    Size = "1024x1024"
	SizeLandscape Size = "1536x1024"
	SizePortrait  Size = "1024x1536"
)

var supportedSizes = map[Size]struct{}{
	SizeSquare:    {},
	SizeLandscape: {},
	SizePortrait:  {},
}

// Dimensions は Size を幅と高さに分解します。
func (s Size) Dimensions() (int, int, error) {
	w, h, ok := strings.Cut(string(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("サイズの形式が不正です: %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("サイズの幅が不正です: %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("サイズの高さが不正です: %q", s)
	}
	return width, height, nil
}

// AspectRatio は Size を "2:3" のような比率表記に変換します。
func (s Size) AspectRatio() string {
	switch s {
	case SizeLandscape:
		return "3:2"
	case SizePortrait:
		return "2:3"
	default:
		return "1:1"
	}
}

// RenderConfig は1件の成果物をどう描画するかを表します。Mode によって必要な項目が変わります。
type RenderConfig struct {
	Size       Size       `yaml:"size" json:"size"`
	Background Background `yaml:"background" json:"background"`
	Quality    Quality    `yaml:"quality" json:"quality"`
	Mode       Mode       `yaml:"mode" json:"mode"`
	// Reference は Mode が edit の場合にのみ必須となる参照画像のパスです。
	Reference string `yaml:"reference,omitempty" json:"reference,omitempty"`
}

// DefaultCardRender はカードイラスト用の描画設定です。
func DefaultCardRender() RenderConfig {
	return RenderConfig{
		Size:       SizePortrait,
		Background: BackgroundTransparent,
		Quality:    QualityHigh,
		Mode:       ModeSynthesize,
	}
}

// Validate は各フィールドがサポート済みの値かどうか、Mode と Reference の整合性を検証します。
func (rc RenderConfig) Validate() error {
	if _, ok := supportedSizes[rc.Size]; !ok {
		return fmt.Errorf("サポートされていないサイズです: %q", rc.Size)
	}
	switch rc.Background {
	case BackgroundOpaque, BackgroundTransparent:
	default:
		return fmt.Errorf("サポートされていない背景指定です: %q", rc.Background)
	}
	switch rc.Quality {
	case QualityAuto, QualityHigh:
	default:
		return fmt.Errorf("サポートされていない品質指定です: %q", rc.Quality)
	}
	switch rc.Mode {
	case ModeSynthesize:
		if rc.Reference != "" {
			return fmt.Errorf("synthesize モードでは参照画像を指定できません")
		}
	case ModeEdit:
		if rc.Reference == "" {
			return fmt.Errorf("edit モードには参照画像が必須です")
		}
	default:
		return fmt.Errorf("サポートされていない生成モードです: %q", rc.Mode)
	}
	return nil
}

// AssetSpec は盤面やフレームなど、データ駆動ではない固定アセットの定義です。
type AssetSpec struct {
	OutputName string       `yaml:"name" json:"name"`
	Prompt     string       `yaml:"prompt" json:"prompt"`
	Render     RenderConfig `yaml:"render" json:"render"`
}
