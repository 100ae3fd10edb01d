package queue

import "strings"

// tagFilter matches a broker tag expression: "" or "*" accept everything,
// "a || b" accepts either tag.
type tagFilter map[string]struct{}

func parseTags(expr string) tagFilter {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "*" {
		return nil
	}
	f := make(tagFilter)
	for _, part := range strings.Split(expr, "||") {
		if tag := strings.TrimSpace(part); tag != "" {
			f[tag] = struct{}{}
		}
	}
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f tagFilter) match(tag string) bool {
	if f == nil {
		return true
	}
	_, ok := f[tag]
	return ok
}
