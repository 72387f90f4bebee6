package conv

import "testing"

func TestWord(t *testing.T) {
	var buf [16]byte
	for _, c := range []struct {
		v    uint32
		bits uint8
		want string
	}{
		{0x147AE147, 32, "0x147AE147"},
		{0x00A3D70A, 28, "0x0A3D70A"},
		{0, 32, "0x00000000"},
		{0x5, 4, "0x5"},
		{0xFFFFFFFF, 40, "0xFFFFFFFF"},
	} {
		if got := string(Word(buf[:], c.v, c.bits)); got != c.want {
			t.Fatalf("Word(%#x, %d)=%q want %q", c.v, c.bits, got, c.want)
		}
	}
	if got := Word(buf[:4], 1, 32); len(got) != 0 {
		t.Fatalf("short buffer produced %q", got)
	}
}
