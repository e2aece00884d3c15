package tracking

import (
	"time"

	"github.com/theoremus-urban-solutions/ais-shipdomain/ais"
	"github.com/theoremus-urban-solutions/ais-shipdomain/palette"
	"github.com/theoremus-urban-solutions/ais-shipdomain/shipdomain"
)

// Vessel is one entry of a published snapshot.
type Vessel struct {
	Report  ais.Report
	Updates int
	// Heading is the direction in degrees the domain was rotated to: the
	// reported heading, or course over ground when heading is unavailable.
	Heading float64
	Color   palette.RGB
	Fill    palette.RGBA
	Border  palette.RGB
	Domain  shipdomain.Domain
}

// Snapshot is an immutable view of every tracked vessel in registry
// insertion order. Consumers must not modify it.
type Snapshot struct {
	Seq         uint64
	PublishedAt time.Time
	Vessels     []Vessel
}

// Len returns the number of vessels; a nil snapshot has none.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Vessels)
}

// Find returns the vessel with the given MMSI.
func (s *Snapshot) Find(mmsi string) (Vessel, bool) {
	if s == nil {
		return Vessel{}, false
	}
	for _, v := range s.Vessels {
		if v.Report.MMSI == mmsi {
			return v, true
		}
	}
	return Vessel{}, false
}
