// Пакет render преобразует дерево групп документа в HTML, Markdown, простой текст и PDF.
//
// Основные возможности:
//   - Генерация HTML для отдельной операции (теги, классы, стили, ссылки).
//   - Обход групп с поддержкой хуков до и после отрисовки каждой группы.
//   - Отрисовка произвольных embed через подключаемую стратегию.
//   - Экспорт в Markdown, простой текст и PDF.
package render

import "github.com/aisa-it/delta2html/internal/delta2html/grouper"

type Options struct {
	ParagraphTag string
	ClassPrefix  string
	EncodeHTML   bool

	LinkTarget string
	LinkRel    string

	// Цвет фона выводится классом ql-background-*, а не inline стилем
	AllowBackgroundClasses bool

	Merge grouper.MergeOptions
}

func DefaultOptions() Options {
	return Options{
		ParagraphTag: "p",
		ClassPrefix:  "ql",
		EncodeHTML:   true,
		LinkTarget:   "_blank",
		Merge:        grouper.DefaultMergeOptions(),
	}
}

func (o Options) paragraphTag() string {
	if o.ParagraphTag == "" {
		return "p"
	}
	return o.ParagraphTag
}

func (o Options) prefixClass(class string) string {
	if o.ClassPrefix == "" {
		return class
	}
	return o.ClassPrefix + "-" + class
}
