package batch

// chunk splits s into consecutive chunks of at most n elements.
func chunk[T any](s []T, n int) [][]T {
	res := make([][]T, 0, (len(s)+n-1)/n)
	for len(s) > n {
		res = append(res, s[:n:n])
		s = s[n:]
	}
	if len(s) > 0 {
		res = append(res, s)
	}
	return res
}

// groupChunks splits s into groups of at most perGroup chunks of at most
// perCall elements.
func groupChunks[T any](s []T, perCall, perGroup int) [][][]T {
	return chunk(chunk(s, perCall), perGroup)
}
