package palette

import (
	"math/rand/v2"
	"testing"
)

func TestColorFor_Idempotent(t *testing.T) {
	a := NewAssigner(rand.New(rand.NewPCG(1, 2)))

	first := a.ColorFor("123456789")
	for i := 0; i < 10; i++ {
		if got := a.ColorFor("123456789"); got != first {
			t.Fatalf("call %d returned %+v, want %+v", i, got, first)
		}
	}
	if a.Len() != 1 {
		t.Errorf("Len = %d, want 1", a.Len())
	}
}

func TestColorFor_ChannelRange(t *testing.T) {
	a := NewAssigner(nil)
	for i := 0; i < 2000; i++ {
		c := a.ColorFor(string(rune('a'+i%26)) + string(rune(i)))
		for _, v := range []uint8{c.R, c.G, c.B} {
			if v < 100 || v >= 255 {
				t.Fatalf("channel %d out of [100,255) in %+v", v, c)
			}
		}
	}
}

func TestColorFor_DistinctIdentities(t *testing.T) {
	a := NewAssigner(rand.New(rand.NewPCG(7, 7)))
	a.ColorFor("a")
	a.ColorFor("b")
	a.ColorFor("a")
	if a.Len() != 2 {
		t.Errorf("Len = %d, want 2", a.Len())
	}
}

func TestDerivedColors(t *testing.T) {
	c := RGB{R: 100, G: 200, B: 254}

	fill := c.Fill()
	if fill != (RGBA{R: 100, G: 200, B: 254, A: 128}) {
		t.Errorf("Fill = %+v", fill)
	}

	// 254*0.7 = 177.8 floors to 177
	border := c.Border()
	if border != (RGB{R: 70, G: 140, B: 177}) {
		t.Errorf("Border = %+v", border)
	}
}
