package pgtypes

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// Кэш преобразованных ключей. Словарь ключей фиксирован схемой БД,
// поэтому кэш не ограничен и никогда не инвалидируется.
var kebabCache sync.Map // string -> string

var wordSep = regexp.MustCompile(`[\s_]+`)

// KebabKey преобразует ключ из соглашения БД (snake_case, произвольный
// регистр) в соглашение приложения (kebab-case, нижний регистр).
// Результат мемоизируется: функция чистая, повторный вызов с тем же
// ключом возвращает то же значение.
func KebabKey(key string) string {
	if cached, ok := kebabCache.Load(key); ok {
		return cached.(string)
	}
	k := kebabize(key)
	kebabCache.Store(key, k)
	return k
}

// kebabize — само преобразование: граница строчная→заглавная буква
// становится разделителем слов, пробелы и подчёркивания схлопываются
// в один дефис, всё приводится к нижнему регистру.
func kebabize(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)

	runes := []rune(key)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	return strings.ToLower(wordSep.ReplaceAllString(b.String(), "-"))
}

// KebabizeDeep рекурсивно переписывает все ключи отображений в структуре
// произвольной вложенности. Последовательности и скалярные значения
// сохраняются без изменений, меняются только ключи.
func KebabizeDeep(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[KebabKey(k)] = KebabizeDeep(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = KebabizeDeep(el)
		}
		return out
	default:
		return v
	}
}
