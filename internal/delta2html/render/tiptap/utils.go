package tiptap

import "github.com/aisa-it/delta2html/internal/delta2html/delta"

// getAttrString безопасно извлекает строковый атрибут из map.
func getAttrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	str, _ := attrs[key].(string)
	return str
}

// splitLines режет строчные операции по простым переносам строки,
// каждая строка становится отдельным параграфом. Завершающий перенос не дает пустой строки.
func splitLines(ops []delta.Op) [][]delta.Op {
	var (
		lines   [][]delta.Op
		current []delta.Op
	)
	for i, op := range ops {
		if op.IsJustNewline() {
			lines = append(lines, current)
			current = nil
			if i == len(ops)-1 {
				return lines
			}
			continue
		}
		current = append(current, op)
	}
	return append(lines, current)
}
