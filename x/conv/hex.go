// Package conv formats register values without fmt, for board builds.
package conv

const hexDigits = "0123456789ABCDEF"

// Word writes v as "0x" and ceil(bits/4) zero-padded uppercase hex digits
// into buf and returns the used tail. A 28-bit word gets 7 digits, a 32-bit
// word 8. buf needs at least 10 bytes; a shorter buf yields buf[:0].
func Word(buf []byte, v uint32, bits uint8) []byte {
	n := (int(bits) + 3) / 4
	if n < 1 {
		n = 1
	}
	if n > 8 {
		n = 8
	}
	if len(buf) < n+2 {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < n; j++ {
		i--
		buf[i] = hexDigits[v&0xF]
		v >>= 4
	}
	i -= 2
	buf[i], buf[i+1] = '0', 'x'
	return buf[i:]
}
