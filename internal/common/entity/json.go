package entity

import (
	"bytes"
	"encoding/json"

	"gorm.io/datatypes"
)

var jsonNull = []byte("null")

// ToJSON 缺省的元数据以 JSON null 落库，JSON 列不存 SQL NULL
func ToJSON(raw json.RawMessage) datatypes.JSON {
	if len(bytes.TrimSpace(raw)) == 0 {
		return datatypes.JSON(jsonNull)
	}
	return datatypes.JSON(raw)
}

// FromJSON JSON null 还原为 nil
func FromJSON(j datatypes.JSON) json.RawMessage {
	trimmed := bytes.TrimSpace(j)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return nil
	}
	out := make(json.RawMessage, len(trimmed))
	copy(out, trimmed)
	return out
}
