package store

import (
	"fmt"
	"strconv"
)

// Item is a stored record keyed by attribute name
type Item map[string]any

func (i Item) ID() string {
	return i.String(KeyAttr)
}

// String returns the attribute as a string, or "" when absent
func (i Item) String(attr string) string {
	switch v := i[attr].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the attribute as an int. Backends hand numbers back as
// int64, float64 or strings depending on the driver.
func (i Item) Int(attr string) int {
	switch v := i[attr].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Clone returns a shallow copy
func (i Item) Clone() Item {
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// Matches reports whether every attr in want equals the item's value,
// comparing numbers by value regardless of their Go type.
func (i Item) Matches(want map[string]any) bool {
	for attr, expected := range want {
		actual, ok := i[attr]
		if !ok {
			return false
		}
		if !sameValue(actual, expected) {
			return false
		}
	}
	return true
}

func sameValue(a, b any) bool {
	an, aNum := asInt64(a)
	bn, bNum := asInt64(b)
	if aNum && bNum {
		return an == bn
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), float64(int64(n)) == n
	}
	return 0, false
}
