package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// decodeCSV は1行目をヘッダーとして CSV を読み込みます。空のセルは nil として扱います。
func decodeCSV(r io.Reader) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("ヘッダー行がありません")
		}
		return nil, err
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		r := make(row, len(headers))
		for i, h := range headers {
			if i >= len(record) || strings.TrimSpace(record[i]) == "" {
				r[h] = nil
				continue
			}
			v := record[i]
			r[h] = &v
		}
		rows = append(rows, r)
	}
	return rows, nil
}
