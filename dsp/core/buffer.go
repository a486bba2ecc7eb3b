package core

// EnsureLen returns a slice of length n, reusing buf's capacity when it
// is large enough. Existing contents are not preserved across a grow, so
// it suits scratch buffers that are fully rewritten each block.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero fills buf with zeros.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// CopyInto copies src into dst up to the shorter length and reports how
// many samples were copied. Neither slice is grown.
func CopyInto(dst, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	copy(dst[:n], src[:n])
	return n
}
