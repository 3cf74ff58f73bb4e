package content

import (
	"regexp"
	"strings"
)

// LinkColor is the accent applied to every link.
const LinkColor = "#3b82f6"

const defaultTextColor = "#000000"

type declaration struct {
	prop  string
	value string
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// normalizeColor returns a lower-case #rrggbb value so alpha suffixes can be appended.
func normalizeColor(c string) string {
	c = strings.TrimSpace(c)
	if !hexColor.MatchString(c) {
		return defaultTextColor
	}
	c = strings.ToLower(c)
	if len(c) == 4 {
		return "#" + string([]byte{c[1], c[1], c[2], c[2], c[3], c[3]})
	}
	return c
}

var headingSizes = map[string]string{
	"h1": "2rem",
	"h2": "1.5rem",
	"h3": "1.25rem",
	"h4": "1.125rem",
	"h5": "1rem",
	"h6": "0.875rem",
}

const (
	frameMaxWidth  = "100%"
	frameMinHeight = "200px"
)

var (
	mediaBlockStyle = []declaration{
		{"max-width", "100%"},
		{"height", "auto"},
		{"display", "block"},
		{"margin", "1rem auto"},
		{"border-radius", "8px"},
	}
	frameStyle = []declaration{
		{"width", "100%"},
		{"max-width", frameMaxWidth},
		{"min-height", frameMinHeight},
		{"aspect-ratio", "16 / 9"},
		{"height", "auto"},
		{"border", "0"},
		{"display", "block"},
		{"margin", "1rem auto"},
		{"border-radius", "8px"},
	}
	embedStyle = []declaration{
		{"width", "100%"},
		{"max-width", "100%"},
		{"display", "block"},
		{"margin", "1rem 0"},
	}
)

// elementStyle returns the declarations owned by the normalizer for element tag.
func elementStyle(tag, color string) []declaration {
	border := "1px solid " + color + "40"
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return []declaration{
			{"font-size", headingSizes[tag]},
			{"font-weight", "600"},
			{"line-height", "1.25"},
			{"margin-top", "2rem"},
			{"margin-bottom", "1rem"},
			{"color", color},
		}
	case "p":
		return []declaration{
			{"color", color},
			{"line-height", "1.75"},
			{"margin-bottom", "1rem"},
		}
	case "img":
		return []declaration{
			{"max-width", "100%"},
			{"width", "auto"},
			{"height", "auto"},
			{"display", "block"},
			{"margin", "1rem auto"},
			{"border-radius", "8px"},
			{"box-shadow", "0 2px 8px rgba(0,0,0,0.1)"},
		}
	case "video":
		return append([]declaration{{"width", "100%"}}, mediaBlockStyle...)
	case "table":
		return []declaration{
			{"width", "100%"},
			{"border-collapse", "collapse"},
			{"margin", "1rem 0"},
			{"border", border},
			{"color", color},
		}
	case "td":
		return []declaration{
			{"border", border},
			{"padding", "8px 12px"},
			{"color", color},
		}
	case "th":
		return []declaration{
			{"border", border},
			{"padding", "8px 12px"},
			{"color", color},
			{"background-color", color + "10"},
			{"font-weight", "bold"},
			{"text-align", "left"},
		}
	case "ul", "ol":
		marker := "disc"
		if tag == "ol" {
			marker = "decimal"
		}
		return []declaration{
			{"list-style-type", marker},
			{"padding-left", "1.5rem"},
			{"margin", "1rem 0"},
		}
	case "li":
		return []declaration{
			{"display", "list-item"},
			{"margin-bottom", "0.5rem"},
			{"color", color},
		}
	case "a":
		return []declaration{
			{"color", LinkColor},
			{"text-decoration", "none"},
			{"cursor", "pointer"},
		}
	case "blockquote":
		return []declaration{
			{"border-left", "4px solid " + color + "40"},
			{"padding-left", "1rem"},
			{"margin", "1rem 0"},
			{"font-style", "italic"},
			{"color", color},
		}
	}
	return nil
}

// parseStyle splits a style attribute into declarations. Semicolons inside
// quotes or parentheses do not terminate a declaration.
func parseStyle(style string) []declaration {
	var (
		out   []declaration
		depth int
		quote byte
		begin int
	)
	flush := func(end int) {
		part := strings.TrimSpace(style[begin:end])
		begin = end + 1
		if part == "" {
			return
		}
		i := strings.IndexByte(part, ':')
		if i <= 0 {
			return
		}
		prop := strings.ToLower(strings.TrimSpace(part[:i]))
		value := strings.TrimSpace(part[i+1:])
		if prop == "" || value == "" {
			return
		}
		out = append(out, declaration{prop: prop, value: value})
	}
	for i := 0; i < len(style); i++ {
		c := style[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ';' && depth == 0:
			flush(i)
		}
	}
	flush(len(style))
	return out
}

// mergeStyle applies ours on top of existing: matching properties are
// replaced where they stand and the rest are appended in order.
func mergeStyle(existing string, ours []declaration) string {
	decls := parseStyle(existing)
	for _, d := range ours {
		replaced := false
		for i := range decls {
			if decls[i].prop == d.prop {
				if !replaced {
					decls[i].value = d.value
					replaced = true
					continue
				}
				decls[i].prop = ""
			}
		}
		if !replaced {
			decls = append(decls, d)
		}
	}
	var b strings.Builder
	for _, d := range decls {
		if d.prop == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d.prop)
		b.WriteString(": ")
		b.WriteString(d.value)
	}
	return b.String()
}
