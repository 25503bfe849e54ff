package tiptap

import "github.com/aisa-it/delta2html/internal/delta2html/delta"

// marksFromAttributes строчные атрибуты операции в виде marks.
func marksFromAttributes(attrs delta.Attributes) []TipTapMark {
	marks := make([]TipTapMark, 0)

	if attrs.Bold {
		marks = append(marks, TipTapMark{Type: "bold"})
	}
	if attrs.Italic {
		marks = append(marks, TipTapMark{Type: "italic"})
	}
	if attrs.Underline {
		marks = append(marks, TipTapMark{Type: "underline"})
	}
	if attrs.Strike {
		marks = append(marks, TipTapMark{Type: "strike"})
	}
	if attrs.Code {
		marks = append(marks, TipTapMark{Type: "code"})
	}
	switch attrs.Script {
	case "super":
		marks = append(marks, TipTapMark{Type: "superscript"})
	case "sub":
		marks = append(marks, TipTapMark{Type: "subscript"})
	}

	// Цвет текста и шрифт
	if style := textStyle(attrs); len(style) > 0 {
		marks = append(marks, TipTapMark{Type: "textStyle", Attrs: style})
	}

	// Цвет фона
	if attrs.Background != "" {
		marks = append(marks, TipTapMark{
			Type:  "highlight",
			Attrs: map[string]any{"color": attrs.Background},
		})
	}

	if attrs.Link != "" {
		link := map[string]any{"href": attrs.Link}
		if attrs.Target != "" {
			link["target"] = attrs.Target
		}
		if attrs.Rel != "" {
			link["rel"] = attrs.Rel
		}
		marks = append(marks, TipTapMark{Type: "link", Attrs: link})
	}

	if len(marks) == 0 {
		return nil
	}
	return marks
}

func textStyle(attrs delta.Attributes) map[string]any {
	style := make(map[string]any)
	if attrs.Color != "" {
		style["color"] = attrs.Color
	}
	if attrs.Font != "" {
		style["fontFamily"] = attrs.Font
	}
	if attrs.Size != "" {
		style["fontSize"] = attrs.Size
	}
	return style
}
