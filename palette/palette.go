// Package palette assigns each vessel a stable display color.
package palette

import (
	"math"
	"math/rand/v2"
)

const (
	channelMin = 100
	channelMax = 255 // exclusive
	fillAlpha  = 128
	borderDim  = 0.7
)

// RGB is an opaque display color.
type RGB struct {
	R, G, B uint8
}

// RGBA is a color with alpha.
type RGBA struct {
	R, G, B, A uint8
}

// Fill returns c at half opacity.
func (c RGB) Fill() RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: fillAlpha}
}

// Border returns c darkened to 70%.
func (c RGB) Border() RGB {
	dim := func(v uint8) uint8 { return uint8(math.Floor(float64(v) * borderDim)) }
	return RGB{R: dim(c.R), G: dim(c.G), B: dim(c.B)}
}

// Assigner hands out colors per identity. Assignments are never removed, so
// memory grows with the number of distinct identities seen. Not safe for
// concurrent use.
type Assigner struct {
	rng    *rand.Rand
	colors map[string]RGB
}

// NewAssigner returns an Assigner drawing from rng, or from a randomly seeded
// source when rng is nil.
func NewAssigner(rng *rand.Rand) *Assigner {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Assigner{rng: rng, colors: map[string]RGB{}}
}

// ColorFor returns the color for id, generating and storing one on first use.
// Every channel is in [100, 255).
func (a *Assigner) ColorFor(id string) RGB {
	if c, ok := a.colors[id]; ok {
		return c
	}
	c := RGB{R: a.channel(), G: a.channel(), B: a.channel()}
	a.colors[id] = c
	return c
}

// Len returns the number of identities that have a color.
func (a *Assigner) Len() int { return len(a.colors) }

func (a *Assigner) channel() uint8 {
	return uint8(math.Floor(channelMin + a.rng.Float64()*(channelMax-channelMin)))
}
