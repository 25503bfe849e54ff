package delta

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MaxIndent верхняя граница уровня отступа.
const MaxIndent = 30

type ListType string

const (
	ListOrdered   ListType = "ordered"
	ListBullet    ListType = "bullet"
	ListChecked   ListType = "checked"
	ListUnchecked ListType = "unchecked"
)

// Attributes атрибуты операции. Распознанные ключи разложены по полям,
// остальные сохраняются в Extra без изменений.
type Attributes struct {
	// Блочные атрибуты
	Header     int
	Blockquote bool
	CodeBlock  bool
	CodeLang   string
	List       ListType
	Indent     int
	Align      string
	Direction  string

	// Строчные атрибуты
	Bold       bool
	Italic     bool
	Underline  bool
	Strike     bool
	Code       bool
	Script     string
	Link       string
	Target     string
	Rel        string
	Color      string
	Background string
	Font       string
	Size       string
	Width      string

	Mentions      bool
	Mention       map[string]any
	RenderAsBlock bool

	Extra map[string]any
}

// HasBlockAttributes сообщает, несет ли набор атрибутов признаки блока.
func (a Attributes) HasBlockAttributes() bool {
	return a.Header > 0 ||
		a.Blockquote ||
		a.CodeBlock ||
		a.List != "" ||
		a.Align != "" ||
		a.Direction != "" ||
		a.Indent > 0
}

// ParseAttributes нормализует произвольный набор атрибутов.
// Некорректные значения отбрасываются, отступ ограничивается диапазоном [0, MaxIndent].
func ParseAttributes(raw map[string]any) Attributes {
	var a Attributes
	for key, val := range raw {
		switch key {
		case "header":
			if h, ok := toInt(val); ok && h >= 1 && h <= 6 {
				a.Header = h
			}
		case "blockquote":
			a.Blockquote = truthy(val)
		case "code-block":
			if s, ok := val.(string); ok && s != "" && s != "true" && s != "plain" {
				a.CodeLang = s
			}
			a.CodeBlock = truthy(val)
		case "list":
			if s, ok := val.(string); ok {
				switch lt := ListType(s); lt {
				case ListOrdered, ListBullet, ListChecked, ListUnchecked:
					a.List = lt
				}
			}
		case "indent":
			if n, ok := toInt(val); ok {
				a.Indent = clampIndent(n)
			}
		case "align":
			if s := toString(val); s == "center" || s == "right" || s == "justify" {
				a.Align = s
			}
		case "direction":
			if s := toString(val); s == "rtl" {
				a.Direction = s
			}
		case "bold":
			a.Bold = truthy(val)
		case "italic":
			a.Italic = truthy(val)
		case "underline":
			a.Underline = truthy(val)
		case "strike":
			a.Strike = truthy(val)
		case "code":
			a.Code = truthy(val)
		case "script":
			if s := toString(val); s == "sub" || s == "super" {
				a.Script = s
			}
		case "link":
			a.Link = toString(val)
		case "target":
			a.Target = toString(val)
		case "rel":
			a.Rel = toString(val)
		case "color":
			a.Color = toString(val)
		case "background":
			a.Background = toString(val)
		case "font":
			a.Font = toString(val)
		case "size":
			a.Size = toString(val)
		case "width":
			a.Width = toString(val)
		case "mentions":
			a.Mentions = truthy(val)
		case "mention":
			if m, ok := val.(map[string]any); ok {
				a.Mention = m
			}
		case "renderAsBlock":
			a.RenderAsBlock = truthy(val)
		default:
			if a.Extra == nil {
				a.Extra = make(map[string]any)
			}
			a.Extra[key] = val
		}
	}
	return a
}

// Raw возвращает атрибуты в виде map, пригодном для JSON.
func (a Attributes) Raw() map[string]any {
	res := make(map[string]any, len(a.Extra))
	for k, v := range a.Extra {
		res[k] = v
	}
	setIf := func(key string, ok bool, v any) {
		if ok {
			res[key] = v
		}
	}
	setIf("header", a.Header > 0, a.Header)
	setIf("blockquote", a.Blockquote, true)
	if a.CodeBlock {
		if a.CodeLang != "" {
			res["code-block"] = a.CodeLang
		} else {
			res["code-block"] = true
		}
	}
	setIf("list", a.List != "", string(a.List))
	setIf("indent", a.Indent > 0, a.Indent)
	setIf("align", a.Align != "", a.Align)
	setIf("direction", a.Direction != "", a.Direction)
	setIf("bold", a.Bold, true)
	setIf("italic", a.Italic, true)
	setIf("underline", a.Underline, true)
	setIf("strike", a.Strike, true)
	setIf("code", a.Code, true)
	setIf("script", a.Script != "", a.Script)
	setIf("link", a.Link != "", a.Link)
	setIf("target", a.Target != "", a.Target)
	setIf("rel", a.Rel != "", a.Rel)
	setIf("color", a.Color != "", a.Color)
	setIf("background", a.Background != "", a.Background)
	setIf("font", a.Font != "", a.Font)
	setIf("size", a.Size != "", a.Size)
	setIf("width", a.Width != "", a.Width)
	setIf("mentions", a.Mentions, true)
	setIf("mention", a.Mention != nil, a.Mention)
	setIf("renderAsBlock", a.RenderAsBlock, true)
	if len(res) == 0 {
		return nil
	}
	return res
}

func clampIndent(n int) int {
	return max(0, min(n, MaxIndent))
}

// truthy повторяет правила истинности слабо типизированных документов:
// пустые строки, нули, nil и false считаются ложью.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	}
	return true
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	}
	return ""
}
