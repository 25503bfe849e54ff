// Пакет delta описывает модель insert-операций документа (delta) и их классификацию.
// Каждая операция хранит вставленное значение и набор атрибутов форматирования.
//
// Основные возможности:
//   - Типизированное значение вставки (текст, изображение, видео, формула, упоминание, произвольный embed).
//   - Фиксированная схема атрибутов с отдельным мешком для нераспознанных ключей.
//   - Предикаты классификации операций (блоки, списки, отступы, выравнивание).
//   - Преобразование "сырых" операций из JSON с разбиением многострочного текста.
package delta

import "fmt"

// NewLine символ переноса строки, которым в delta обозначается граница блока.
const NewLine = "\n"

type Kind int

const (
	KindText Kind = iota
	KindImage
	KindVideo
	KindFormula
	KindMention
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindFormula:
		return "formula"
	case KindMention:
		return "mention"
	case KindCustom:
		return "custom"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Insert вставленное значение операции.
// Value содержит текст, адрес изображения/видео или исходник формулы.
// Для упоминаний и произвольных embed данные лежат в Payload, имя embed в CustomKind.
type Insert struct {
	Kind       Kind
	Value      string
	CustomKind string
	Payload    any
}

func Text(s string) Insert {
	return Insert{Kind: KindText, Value: s}
}

func Image(src string) Insert {
	return Insert{Kind: KindImage, Value: src}
}

func Video(src string) Insert {
	return Insert{Kind: KindVideo, Value: src}
}

func Formula(f string) Insert {
	return Insert{Kind: KindFormula, Value: f}
}

func Mention(record map[string]any) Insert {
	return Insert{Kind: KindMention, Payload: record}
}

func Custom(kind string, payload any) Insert {
	return Insert{Kind: KindCustom, CustomKind: kind, Payload: payload}
}

// MentionRecord возвращает запись упоминания, если она есть.
func (i Insert) MentionRecord() map[string]any {
	if m, ok := i.Payload.(map[string]any); ok {
		return m
	}
	return nil
}

// raw возвращает значение вставки в исходном JSON виде.
func (i Insert) raw() any {
	switch i.Kind {
	case KindImage:
		return map[string]any{"image": i.Value}
	case KindVideo:
		return map[string]any{"video": i.Value}
	case KindFormula:
		return map[string]any{"formula": i.Value}
	case KindMention:
		return map[string]any{"mention": i.Payload}
	case KindCustom:
		return map[string]any{i.CustomKind: i.Payload}
	}
	return i.Value
}
