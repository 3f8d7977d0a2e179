package transform

import "strings"

// SnakeToCamel bridges a snake_case storage name into the camelCase wire
// convention. The pipeline uses it to keep conflict responses addressable by
// the field names clients actually sent. Leading and trailing underscores are
// preserved so sentinel keys like "_meta" survive the bridge.
func SnakeToCamel(s string) string {
	lead := len(s) - len(strings.TrimLeft(s, "_"))
	trail := len(s) - len(strings.TrimRight(s, "_"))
	core := s[lead : len(s)-trail]

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:lead])
	up := false
	for _, r := range core {
		if r == '_' {
			up = true
			continue
		}
		if up {
			b.WriteString(strings.ToUpper(string(r)))
			up = false
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteString(s[len(s)-trail:])
	return b.String()
}
