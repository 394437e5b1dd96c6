package mathx

import "testing"

func TestClampMinMax(t *testing.T) {
	if got := Clamp(300, 0, 255); got != 255 {
		t.Fatalf("Clamp high = %d", got)
	}
	if got := Clamp(-4, 255, 0); got != 0 {
		t.Fatalf("Clamp swapped bounds = %d", got)
	}
	if Min(uint32(3), 9) != 3 || Max(uint32(3), 9) != 9 {
		t.Fatal("Min/Max")
	}
}

func TestIntDiv(t *testing.T) {
	if got := CeilDiv(uint32(13), 4); got != 4 {
		t.Fatalf("CeilDiv = %d", got)
	}
	if got := CeilDiv(uint32(13), 0); got != 0 {
		t.Fatalf("CeilDiv by zero = %d", got)
	}
	if got := RoundDiv(uint32(7), 2); got != 4 {
		t.Fatalf("RoundDiv = %d", got)
	}
	if got := AlignUp(uint32(13), 4); got != 16 {
		t.Fatalf("AlignUp = %d", got)
	}
	if got := AlignUp(uint32(16), 4); got != 16 {
		t.Fatalf("AlignUp aligned = %d", got)
	}
}

func TestMapU32(t *testing.T) {
	cases := []struct{ x, want uint32 }{
		{0, 0},
		{50, 128},
		{100, 255},
		{150, 255},
	}
	for _, c := range cases {
		if got := MapU32(c.x, 0, 100, 0, 255); got != c.want {
			t.Errorf("MapU32(%d) = %d, want %d", c.x, got, c.want)
		}
	}
	if got := MapU32(128, 0, 255, 0, 100); got != 50 {
		t.Errorf("MapU32 back = %d", got)
	}
}
