package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON 表格导入的编号列可能是数字，no/hn/id 同时接受字符串和数字
func (p *Person) UnmarshalJSON(data []byte) error {
	type alias Person
	aux := struct {
		*alias
		No json.RawMessage `json:"no"`
		HN json.RawMessage `json:"hn"`
		ID json.RawMessage `json:"id"`
	}{alias: (*alias)(p)}

	// isRegistered 非布尔、stations 不是对象等类型错误
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	var err error
	if p.No, err = scalarString("no", aux.No); err != nil {
		return err
	}
	if p.HN, err = scalarString("hn", aux.HN); err != nil {
		return err
	}
	if p.ID, err = scalarString("id", aux.ID); err != nil {
		return err
	}
	return nil
}

func scalarString(field string, raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: field %s: %v", ErrInvalidRecord, field, err)
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("%w: field %s must be a string or number", ErrInvalidRecord, field)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("%w: field %s: %v", ErrInvalidRecord, field, err)
		}
		return n.String(), nil
	}
}
