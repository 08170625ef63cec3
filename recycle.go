package fabricate

// RecycleTo returns a new slice of length n formed by repeating values
// cyclically: element i of the result is values[i % len(values)].
func RecycleTo(values []any, n int) ([]any, error) {
	if len(values) == 0 {
		return nil, &EmptyInputError{Want: n}
	}
	if n < 0 {
		n = 0
	}
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = values[i%len(values)]
	}
	return out, nil
}
