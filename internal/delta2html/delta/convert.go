package delta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrMalformedInput = errors.New("malformed insert operation")

// MalformedInputError операция без распознаваемого значения вставки.
type MalformedInputError struct {
	Index  int
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("op %d: %s: %s", e.Index, ErrMalformedInput.Error(), e.Reason)
}

func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}

// RawOp операция в том виде, в котором она приходит из JSON.
type RawOp struct {
	Insert     any            `json:"insert"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type rawDocument struct {
	Ops []RawOp `json:"ops"`
}

// ParseJSON разбирает документ вида {"ops": [...]} или просто массив операций.
func ParseJSON(data []byte) ([]RawOp, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty delta document")
	}

	if data[0] == '[' {
		var ops []RawOp
		if err := json.Unmarshal(data, &ops); err != nil {
			return nil, fmt.Errorf("decode delta ops: %w", err)
		}
		return ops, nil
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode delta document: %w", err)
	}
	return doc.Ops, nil
}

// Convert классифицирует сырые операции. Текст с переносами строк разбивается
// на отдельные операции так, что каждый перенос становится самостоятельной операцией.
// При первой некорректной операции возвращается *MalformedInputError и никакого результата.
func Convert(raw []RawOp) ([]Op, error) {
	result := make([]Op, 0, len(raw))
	for i, r := range raw {
		insert, err := convertInsert(r.Insert)
		if err != nil {
			return nil, &MalformedInputError{Index: i, Reason: err.Error()}
		}

		attrs := ParseAttributes(r.Attributes)

		if insert.Kind != KindText {
			result = append(result, Op{Insert: insert, Attributes: attrs})
			continue
		}

		// пустой текст ничего не вставляет
		if insert.Value == "" {
			continue
		}

		for _, line := range tokenizeWithNewLines(insert.Value) {
			result = append(result, Op{Insert: Text(line), Attributes: attrs})
		}
	}
	return result, nil
}

func convertInsert(v any) (Insert, error) {
	switch val := v.(type) {
	case nil:
		return Insert{}, errors.New("insert value is missing")
	case string:
		return Text(val), nil
	case map[string]any:
		if len(val) == 0 {
			return Insert{}, errors.New("empty embed object")
		}
		for _, kind := range []string{"image", "video", "formula"} {
			src, ok := val[kind]
			if !ok {
				continue
			}
			s, ok := src.(string)
			if !ok {
				return Insert{}, fmt.Errorf("%s value must be a string", kind)
			}
			switch kind {
			case "image":
				return Image(s), nil
			case "video":
				return Video(s), nil
			default:
				return Formula(s), nil
			}
		}
		if m, ok := val["mention"]; ok {
			record, ok := m.(map[string]any)
			if !ok {
				return Insert{}, errors.New("mention value must be an object")
			}
			return Mention(record), nil
		}

		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return Custom(keys[0], val[keys[0]]), nil
	}
	return Insert{}, fmt.Errorf("unsupported insert value of type %T", v)
}

// tokenizeWithNewLines разбивает строку на куски текста и одиночные переносы.
// "a\nb" -> ["a", "\n", "b"], "\n\n" -> ["\n", "\n"].
func tokenizeWithNewLines(s string) []string {
	if s == NewLine {
		return []string{s}
	}
	lines := strings.Split(s, NewLine)
	if len(lines) == 1 {
		return lines
	}

	res := make([]string, 0, len(lines)*2)
	last := len(lines) - 1
	for i, line := range lines {
		if i != last {
			if line != "" {
				res = append(res, line)
			}
			res = append(res, NewLine)
		} else if line != "" {
			res = append(res, line)
		}
	}
	return res
}
