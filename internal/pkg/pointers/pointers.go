package pointers

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func Int(v int) *int          { return &v }
func String(v string) *string { return &v }
func Uint64(v uint64) *uint64 { return &v }

// IntValue dereferences p, returning 0 for nil.
func IntValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// EqualInt reports whether both pointers are set and hold the same value.
func EqualInt(a, b *int) bool {
	return a != nil && b != nil && *a == *b
}
