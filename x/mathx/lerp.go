package mathx

// LerpU32 returns the i-th of n evenly spaced points from a to b, with
// 64-bit intermediates. i is clamped to [0..n]; n==0 returns b.
func LerpU32(a, b, i, n uint32) uint32 {
	if n == 0 {
		return b
	}
	i = Clamp(i, 0, n)
	d := int64(b) - int64(a)
	return uint32(int64(a) + d*int64(i)/int64(n))
}
