package problem

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseValue converts a raw host encoding into the Go value of kind.
//
// Scalars map to rune, int32, int64, float64 and string; arrays map to slices
// of those. rune and int32 are the same Go type, so the kind disambiguates. Arrays are written as {a, b, c}, strings as "text" and characters
// as 'c'. A bare single character is accepted for KindChar.
func ParseValue(kind Kind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if !kind.IsArray() {
		return parseScalar(kind, raw)
	}
	if len(raw) < 2 || raw[0] != '{' || raw[len(raw)-1] != '}' {
		return nil, fmt.Errorf("%w: %s value %q is not enclosed in braces", ErrMalformedValue, kind, raw)
	}
	elems, err := splitElements(raw[1 : len(raw)-1])
	if err != nil {
		return nil, fmt.Errorf("%w: %s value %q: %v", ErrMalformedValue, kind, raw, err)
	}
	elem := kind.Elem()
	switch kind {
	case KindCharArray:
		return parseSlice[rune](elem, elems)
	case KindIntArray:
		return parseSlice[int32](elem, elems)
	case KindLongArray:
		return parseSlice[int64](elem, elems)
	case KindDoubleArray:
		return parseSlice[float64](elem, elems)
	default:
		return parseSlice[string](elem, elems)
	}
}

func parseSlice[T any](elem Kind, elems []string) ([]T, error) {
	out := make([]T, 0, len(elems))
	for i, e := range elems {
		v, err := parseScalar(elem, e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v.(T))
	}
	return out, nil
}

func parseScalar(kind Kind, raw string) (any, error) {
	switch kind {
	case KindChar:
		return parseChar(raw)
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: int %q: %v", ErrMalformedValue, raw, err)
		}
		return int32(n), nil
	case KindLong:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: long %q: %v", ErrMalformedValue, raw, err)
		}
		return n, nil
	case KindDouble:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: double %q: %v", ErrMalformedValue, raw, err)
		}
		return f, nil
	case KindString:
		return parseString(raw)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedDataType, kind)
}

func parseChar(raw string) (rune, error) {
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		s := unescape(raw[1 : len(raw)-1])
		if utf8.RuneCountInString(s) == 1 {
			r, _ := utf8.DecodeRuneInString(s)
			return r, nil
		}
	} else if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		return r, nil
	}
	return 0, fmt.Errorf("%w: char %q", ErrMalformedValue, raw)
}

func parseString(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", fmt.Errorf("%w: String %q is not quoted", ErrMalformedValue, raw)
	}
	return unescape(raw[1 : len(raw)-1]), nil
}

// unescape resolves \" \' and \; any other backslash is kept as written.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"', '\'', '\\':
				b.WriteByte(s[i+1])
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// splitElements splits the body of an array literal at top-level commas.
func splitElements(body string) ([]string, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var (
		elems   []string
		start   int
		quote   byte
		escaped bool
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if c == '\\' {
				escaped = true
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			elems = append(elems, strings.TrimSpace(body[start:i]))
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	elems = append(elems, strings.TrimSpace(body[start:]))
	for i, e := range elems {
		if e == "" {
			return nil, fmt.Errorf("empty element %d", i)
		}
	}
	return elems, nil
}

// FormatValue renders v in the host encoding accepted by ParseValue.
func FormatValue(kind Kind, v any) (string, error) {
	if !kind.IsArray() {
		return formatScalar(kind, v)
	}
	var parts []string
	var err error
	elem := kind.Elem()
	switch vs := v.(type) {
	case []int32: // also []rune
		parts, err = formatSlice(elem, vs)
	case []int64:
		parts, err = formatSlice(elem, vs)
	case []float64:
		parts, err = formatSlice(elem, vs)
	case []string:
		parts, err = formatSlice(elem, vs)
	default:
		return "", fmt.Errorf("%w: %T is not a %s", ErrMalformedValue, v, kind)
	}
	if err != nil {
		return "", err
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func formatSlice[T any](elem Kind, vs []T) ([]string, error) {
	parts := make([]string, 0, len(vs))
	for _, e := range vs {
		s, err := formatScalar(elem, e)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return parts, nil
}

func formatScalar(kind Kind, v any) (string, error) {
	switch x := v.(type) {
	case int32: // rune for KindChar
		if kind == KindChar {
			return "'" + escape(string(rune(x)), '\'') + "'", nil
		}
		if kind == KindInt {
			return strconv.FormatInt(int64(x), 10), nil
		}
	case int64:
		if kind == KindLong {
			return strconv.FormatInt(x, 10), nil
		}
	case float64:
		if kind == KindDouble {
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		}
	case string:
		if kind == KindString {
			return `"` + escape(x, '"') + `"`, nil
		}
	}
	return "", fmt.Errorf("%w: %T is not a %s", ErrMalformedValue, v, kind)
}

func escape(s string, quote byte) string {
	if !strings.ContainsAny(s, `\`+string(quote)) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == quote {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
