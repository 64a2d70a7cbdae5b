package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// orderedColumns decodes a JSON object of columns keeping the key order.
type orderedColumns []rawColumn

// UnmarshalJSON implements json.Unmarshaler.
func (c *orderedColumns) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("columns: expected object, got %v", tok)
	}

	var columns orderedColumns
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var col rawColumn
		if err := dec.Decode(&col); err != nil {
			return fmt.Errorf("column %s: %w", key, err)
		}
		if col.Name == "" {
			col.Name = key
		}
		columns = append(columns, col)
	}

	*c = columns
	return nil
}
