package pgtypes

import (
	"reflect"
	"sync"
	"testing"
)

func TestKebabKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user_id", "user-id"},
		{"last_login", "last-login"},
		{"screenname", "screenname"},
		{"is_active", "is-active"},
		{"member_of", "member-of"},
		{"LastLogin", "last-login"},
		{"userID", "user-id"},
		{"Screen Name", "screen-name"},
		{"last__login", "last-login"},
		{"a_b_c", "a-b-c"},
		{"ALLCAPS", "allcaps"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := KebabKey(tt.input); got != tt.expected {
				t.Errorf("KebabKey(%q) = %q, ожидается %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestKebabKey_Idempotent: повторное преобразование результата
// даёт тот же результат.
func TestKebabKey_Idempotent(t *testing.T) {
	keys := []string{"user_id", "LastLogin", "member_of", "Screen Name", "views"}
	for _, k := range keys {
		once := KebabKey(k)
		twice := KebabKey(once)
		if once != twice {
			t.Errorf("KebabKey не идемпотентна: %q -> %q -> %q", k, once, twice)
		}
	}
}

// TestKebabKey_MemoStable: мемоизированный результат стабилен,
// в том числе при конкурентном доступе.
func TestKebabKey_MemoStable(t *testing.T) {
	const key = "concurrent_test_key"
	expected := KebabKey(key)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := KebabKey(key); got != expected {
					t.Errorf("KebabKey(%q) = %q, ожидается %q", key, got, expected)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestKebabizeDeep(t *testing.T) {
	input := map[string]any{
		"user_id":    int64(1),
		"last_login": "2024-05-17",
		"member_of": []any{
			map[string]any{"group_id": int64(7), "group_name": "support"},
			"scalar",
		},
		"nested_map": map[string]any{
			"inner_key": []any{int64(1), int64(2)},
		},
	}

	expected := map[string]any{
		"user-id":    int64(1),
		"last-login": "2024-05-17",
		"member-of": []any{
			map[string]any{"group-id": int64(7), "group-name": "support"},
			"scalar",
		},
		"nested-map": map[string]any{
			"inner-key": []any{int64(1), int64(2)},
		},
	}

	got := KebabizeDeep(input)
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("KebabizeDeep() = %#v, ожидается %#v", got, expected)
	}
}

// TestKebabizeDeep_ShapePreserved: меняются только ключи отображений,
// форма структуры и все значения сохраняются.
func TestKebabizeDeep_Scalars(t *testing.T) {
	for _, v := range []any{int64(5), "text", true, nil, []any{int64(1), "a"}} {
		got := KebabizeDeep(v)
		if !reflect.DeepEqual(got, v) {
			t.Errorf("KebabizeDeep(%v) = %v, ожидается без изменений", v, got)
		}
	}
}
