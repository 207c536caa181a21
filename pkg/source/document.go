package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// cardsDocument は {"cards": [...]} 形式のドキュメントです。
type cardsDocument struct {
	Cards []map[string]any `json:"cards" yaml:"cards"`
}

// decodeJSON はオブジェクトの配列、または cards キーを持つオブジェクトを読み込みます。
func decodeJSON(r io.Reader) ([]row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var records []map[string]any
	if bytes.HasPrefix(data, []byte("[")) {
		err = json.Unmarshal(data, &records)
	} else {
		var doc cardsDocument
		err = json.Unmarshal(data, &doc)
		records = doc.Cards
	}
	if err != nil {
		return nil, err
	}
	return toRows(records)
}

// decodeYAML は YAML のシーケンス、または cards キーを持つマッピングを読み込みます。
func decodeYAML(r io.Reader) ([]row, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var records []map[string]any
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Decode(&records); err != nil {
			return nil, err
		}
	} else {
		var doc cardsDocument
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		records = doc.Cards
	}
	return toRows(records)
}

func toRows(records []map[string]any) ([]row, error) {
	rows := make([]row, 0, len(records))
	for i, rec := range records {
		r := make(row, len(rec))
		for k, v := range rec {
			s, err := scalar(v)
			if err != nil {
				return nil, fmt.Errorf("%d 件目の列 %q: %w", i+1, k, err)
			}
			r[k] = s
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// scalar は値を文字列に変換します。null と空白のみの文字列は nil になります。
func scalar(v any) (*string, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = t
	case bool:
		s = strconv.FormatBool(t)
	case int:
		s = strconv.Itoa(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return nil, fmt.Errorf("サポートされていない値の型です: %T", v)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return &s, nil
}
