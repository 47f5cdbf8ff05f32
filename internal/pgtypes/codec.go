// Пакет pgtypes — двунаправленное преобразование значений между
// колоночными типами PostgreSQL и каноническим представлением в памяти,
// а также нормализация ключей результатов к kebab-case.
package pgtypes

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Kind — распознаваемая разновидность колоночного типа.
// Диспетчеризация идёт по имени типа, которое сообщает сервер;
// нераспознанные типы проходят без преобразования.
type Kind int

const (
	// KindOther — тип без специальной обработки (passthrough).
	KindOther Kind = iota
	// KindTimestamp — временные типы (date, timestamp, timestamptz).
	KindTimestamp
	// KindRecord — композитные record-значения вида "(a,b,c)".
	KindRecord
	// KindJSON — json и jsonb.
	KindJSON
	// KindCIText — citext (регистронезависимый текст).
	KindCIText
	// KindArray — массивы; в PostgreSQL имя типа массива начинается с "_".
	KindArray
)

// KindOf определяет Kind по имени типа PostgreSQL.
func KindOf(typeName string) Kind {
	if strings.HasPrefix(typeName, "_") {
		return KindArray
	}
	switch typeName {
	case "date", "timestamp", "timestamptz":
		return KindTimestamp
	case "record":
		return KindRecord
	case "json", "jsonb":
		return KindJSON
	case "citext":
		return KindCIText
	default:
		return KindOther
	}
}

// DecodeColumn преобразует значение колонки, прочитанное из БД,
// в каноническое представление. Для распознанных типов ошибок не бывает;
// единственный путь с ошибкой — некорректный JSON-payload.
func DecodeColumn(typeName string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch KindOf(typeName) {
	case KindTimestamp:
		if t, ok := v.(time.Time); ok {
			return canonTime(t), nil
		}
		return v, nil

	case KindRecord:
		switch s := v.(type) {
		case string:
			return parseRecord(s), nil
		case []byte:
			return parseRecord(string(s)), nil
		case []any:
			// Драйвер уже разобрал композит на элементы
			fields := make([]string, len(s))
			for i, el := range s {
				fields[i] = fmt.Sprint(el)
			}
			return fields, nil
		default:
			return []string(nil), nil
		}

	case KindJSON:
		switch raw := v.(type) {
		case []byte:
			var parsed any
			if err := json.Unmarshal(raw, &parsed); err != nil {
				return nil, fmt.Errorf("некорректный JSON в колонке типа %s: %w", typeName, err)
			}
			return parsed, nil
		case string:
			var parsed any
			if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
				return nil, fmt.Errorf("некорректный JSON в колонке типа %s: %w", typeName, err)
			}
			return parsed, nil
		default:
			// Драйвер уже распарсил значение
			return v, nil
		}

	case KindCIText:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		default:
			return fmt.Sprint(s), nil
		}

	case KindArray:
		return decodeArray(typeName[1:], v)

	default:
		return v, nil
	}
}

// decodeArray поэлементно преобразует значение массива, рекурсивно применяя
// DecodeColumn с типом элемента. NULL-элементы отбрасываются: массив никогда
// не возвращается с "дырками".
func decodeArray(elemType string, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		// Значение не похоже на массив — отдаём как есть
		return v, nil
	}

	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		el := rv.Index(i).Interface()
		if el == nil {
			continue
		}
		decoded, err := DecodeColumn(elemType, el)
		if err != nil {
			return nil, err
		}
		if decoded == nil {
			continue
		}
		out = append(out, decoded)
	}
	return out, nil
}

// parseRecord разбирает текстовое представление композитного значения
// "(f1,f2,...)" в срез строк. Некорректный или пустой вход даёт nil,
// а не ошибку.
func parseRecord(s string) []string {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil
	}
	return strings.Split(s[1:len(s)-1], ",")
}

// canonTime приводит временное значение к каноническому виду:
// UTC с точностью до миллисекунды (round trip через epoch-миллисекунды).
func canonTime(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}

// BindValue преобразует исходящее значение параметра в представление,
// пригодное для передачи в БД. Выбор между нативным массивом и JSONB для
// срезов определяется объявленным типом параметра: имена типов массивов
// в PostgreSQL начинаются с "_".
func BindValue(declaredType string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	if t, ok := v.(time.Time); ok {
		return canonTime(t), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		// Отображения всегда уходят как JSONB
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации параметра в JSON: %w", err)
		}
		return raw, nil

	case reflect.Slice:
		// []byte — бинарное значение, не последовательность
		if _, ok := v.([]byte); ok {
			return v, nil
		}
		if strings.HasPrefix(declaredType, "_") {
			return v, nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации параметра в JSON: %w", err)
		}
		return raw, nil

	default:
		return v, nil
	}
}
