package store

import "fmt"

// Помощники для множественных операций над метками и членством в группах.
// Все функции сохраняют порядок первого вхождения.

// dedupeStrings убирает дубликаты, сохраняя порядок.
func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// diffStrings возвращает элементы a, отсутствующие в b (разность множеств).
func diffStrings(a, b []string) []string {
	drop := make(map[string]bool, len(b))
	for _, s := range b {
		drop[s] = true
	}
	out := make([]string, 0, len(a))
	for _, s := range a {
		if !drop[s] {
			out = append(out, s)
		}
	}
	return out
}

// dedupeValues убирает дубликаты из среза значений результата
// (семантика множества для tags/files). Не-срезы проходят без изменений.
func dedupeValues(v any) any {
	seq, ok := v.([]any)
	if !ok {
		return v
	}
	seen := make(map[any]bool, len(seq))
	out := make([]any, 0, len(seq))
	for _, el := range seq {
		if seen[el] {
			continue
		}
		seen[el] = true
		out = append(out, el)
	}
	return out
}

// asInt64 приводит числовое значение результата к int64.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

// asString приводит значение результата к строке.
func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// asStringSlice приводит значение результата к срезу строк.
func asStringSlice(v any) []string {
	switch seq := v.(type) {
	case []string:
		return seq
	case []any:
		out := make([]string, 0, len(seq))
		for _, el := range seq {
			if el == nil {
				continue
			}
			out = append(out, asString(el))
		}
		return out
	default:
		return nil
	}
}
