package generator

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// toPNG は画像データを PNG に揃えます。すでに PNG の場合はそのまま返します。
func toPNG(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyResult
	}
	if bytes.HasPrefix(data, pngSignature) {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("PNG へのエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}
