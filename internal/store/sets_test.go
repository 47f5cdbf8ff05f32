package store

import (
	"reflect"
	"testing"
)

func TestDedupeStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"без дубликатов", []string{"a", "b"}, []string{"a", "b"}},
		{"дубликаты", []string{"a", "b", "a", "b", "a"}, []string{"a", "b"}},
		{"порядок первого вхождения", []string{"b", "a", "b"}, []string{"b", "a"}},
		{"пустой срез", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupeStrings(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("dedupeStrings(%v) = %v, ожидается %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDiffStrings(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected []string
	}{
		{"разность", []string{"a", "b", "c"}, []string{"b"}, []string{"a", "c"}},
		{"b пустой", []string{"a", "b"}, nil, []string{"a", "b"}},
		{"a пустой", nil, []string{"a"}, []string{}},
		{"равные множества", []string{"a", "b"}, []string{"b", "a"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffStrings(tt.a, tt.b)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("diffStrings(%v, %v) = %v, ожидается %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

// TestDiffStrings_Reconcile: сверка членства {A,B} → {B,C} даёт
// ровно del={A} и add={C}.
func TestDiffStrings_Reconcile(t *testing.T) {
	current := []string{"group-a", "group-b"}
	desired := []string{"group-b", "group-c"}

	del := diffStrings(current, desired)
	add := diffStrings(desired, current)

	if !reflect.DeepEqual(del, []string{"group-a"}) {
		t.Errorf("del = %v, ожидается [group-a]", del)
	}
	if !reflect.DeepEqual(add, []string{"group-c"}) {
		t.Errorf("add = %v, ожидается [group-c]", add)
	}
}

func TestDedupeValues(t *testing.T) {
	got := dedupeValues([]any{"x", "y", "x", nil, nil})
	if !reflect.DeepEqual(got, []any{"x", "y", nil}) {
		t.Errorf("dedupeValues() = %v", got)
	}

	// не-срез проходит без изменений
	if v := dedupeValues("scalar"); v != "scalar" {
		t.Errorf("dedupeValues(scalar) = %v", v)
	}
}

func TestAsInt64(t *testing.T) {
	if asInt64(int64(7)) != 7 || asInt64(int32(7)) != 7 || asInt64(7) != 7 {
		t.Error("asInt64 не приводит числовые типы")
	}
	if asInt64("7") != 0 || asInt64(nil) != 0 {
		t.Error("asInt64 для нечисловых значений должен вернуть 0")
	}
}

func TestAsStringSlice(t *testing.T) {
	if got := asStringSlice([]any{"a", nil, "b"}); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("asStringSlice([]any) = %v", got)
	}
	if got := asStringSlice([]string{"a"}); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("asStringSlice([]string) = %v", got)
	}
	if got := asStringSlice(42); got != nil {
		t.Errorf("asStringSlice(42) = %v, ожидается nil", got)
	}
}
