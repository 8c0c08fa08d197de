package fieldset

import (
	"context"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Issue is one problem found in a schema document, located by JSON pointer
// and, when it can be derived, by page.field path.
type Issue struct {
	Source  string `json:"source,omitempty"`
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// CheckOpenAPI loads and validates an OpenAPI document before it is imported.
// A nil result means the document is usable.
func CheckOpenAPI(ctx context.Context, data []byte, source string) []Issue {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return []Issue{issueFromError(source, err)}
	}
	if err := doc.Validate(ctx); err != nil {
		return []Issue{issueFromError(source, err)}
	}
	return nil
}

func issueFromError(source string, err error) Issue {
	msg := strings.TrimSpace(err.Error())
	path := extractJSONPointer(msg)
	if path != "" {
		msg = strings.TrimSpace(strings.Replace(msg, " at "+path, "", 1))
	}
	field := fieldPathFromPointer(path)
	if field == "" {
		field = fieldPathFromMessage(msg)
	}
	return Issue{Source: source, Path: path, Field: field, Message: msg}
}

func extractJSONPointer(message string) string {
	if idx := strings.LastIndex(message, " at "); idx >= 0 {
		if candidate := trimPointer(message[idx+4:]); strings.HasPrefix(candidate, "#/") || strings.HasPrefix(candidate, "/") {
			return candidate
		}
	}
	if idx := strings.LastIndex(message, "#/"); idx >= 0 {
		return trimPointer(message[idx:])
	}
	return ""
}

func trimPointer(pointer string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(pointer), ".)];,"))
}

// fieldPathFromPointer turns #/components/schemas/Visit/properties/visitor
// into visit.visitor.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(pointer), "#"), "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := unescapePointer(parts[idx])
		switch segment {
		case "", "components":
		case "schemas":
			if idx+1 < len(parts) {
				out = append(out, strings.ToLower(unescapePointer(parts[idx+1])))
				idx++
			}
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, unescapePointer(parts[idx+1]))
				idx++
			}
		default:
			out = append(out, segment)
		}
	}
	return strings.Join(out, ".")
}

func unescapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}

// fieldPathFromMessage reads the quoted schema and property names kin-openapi
// puts in its wrapped validation errors.
func fieldPathFromMessage(msg string) string {
	var out []string
	if name := quotedAfter(msg, `schema "`); name != "" {
		out = append(out, strings.ToLower(name))
	}
	if name := quotedAfter(msg, `property "`); name != "" {
		out = append(out, name)
	}
	return strings.Join(out, ".")
}

func quotedAfter(msg, marker string) string {
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return ""
	}
	rest := msg[idx+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}
