package registry

import (
	"strconv"
	"testing"

	"github.com/theoremus-urban-solutions/ais-shipdomain/ais"
)

func report(id string, lon, lat float64) ais.Report {
	return ais.Report{MMSI: id, Lon: lon, Lat: lat, COG: 45, SOG: 10, Heading: 50, Length: 80, Timestamp: "t"}
}

func TestAdmit_LastWriteWins(t *testing.T) {
	g := New(DefaultBounds, 0)

	first := report("123", 120.2, 36.05)
	second := report("123", 120.3, 36.10)
	second.SOG = 0
	second.Timestamp = "later"

	if res := g.Admit(first); !res.Admitted || !res.New {
		t.Fatalf("first admit = %+v", res)
	}
	if res := g.Admit(second); !res.Admitted || res.New || res.Evicted != "" {
		t.Fatalf("second admit = %+v", res)
	}

	snap := g.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot has %d entries, want 1", len(snap))
	}
	if snap[0].Report != second {
		t.Errorf("state = %+v, want %+v", snap[0].Report, second)
	}
	if snap[0].Updates != 2 {
		t.Errorf("Updates = %d, want 2", snap[0].Updates)
	}
}

func TestAdmit_OutsideBounds(t *testing.T) {
	g := New(DefaultBounds, 0)
	g.Admit(report("inside", 120.2, 36.05))
	before := g.Snapshot()

	tests := []struct {
		name     string
		lon, lat float64
	}{
		{"west", 120.0, 36.0},
		{"east", 120.6, 36.0},
		{"south", 120.2, 35.8},
		{"north", 120.2, 36.4},
		{"far away", -70.0, 41.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.Admit(report("inside", tt.lon, tt.lat))
			if res.Admitted {
				t.Errorf("report at (%v, %v) should not be admitted", tt.lon, tt.lat)
			}
			after := g.Snapshot()
			if len(after) != len(before) || after[0] != before[0] {
				t.Errorf("snapshot changed: %+v -> %+v", before, after)
			}
		})
	}
}

func TestAdmit_BoundaryIsInclusive(t *testing.T) {
	g := New(DefaultBounds, 0)
	corners := [][2]float64{{120.036, 35.9}, {120.503, 36.3}, {120.036, 36.3}, {120.503, 35.9}}
	for i, c := range corners {
		if !g.Admit(report(strconv.Itoa(i), c[0], c[1])).Admitted {
			t.Errorf("corner %v should be admitted", c)
		}
	}
}

func TestAdmit_EvictsOldestIdentity(t *testing.T) {
	g := New(DefaultBounds, DefaultMaxVessels)

	for i := 0; i < DefaultMaxVessels; i++ {
		if res := g.Admit(report(strconv.Itoa(i), 120.2, 36.05)); res.Evicted != "" {
			t.Fatalf("unexpected eviction at %d: %+v", i, res)
		}
	}
	res := g.Admit(report("10000", 120.2, 36.05))
	if !res.New || res.Evicted != "0" {
		t.Fatalf("admit beyond cap = %+v, want eviction of \"0\"", res)
	}

	if g.Len() != DefaultMaxVessels {
		t.Errorf("Len = %d, want %d", g.Len(), DefaultMaxVessels)
	}
	if _, ok := g.Get("0"); ok {
		t.Error("first-seen identity should be evicted")
	}
	if _, ok := g.Get("10000"); !ok {
		t.Error("newest identity should be present")
	}
}

func TestAdmit_UpdateDoesNotReorderOrEvict(t *testing.T) {
	g := New(DefaultBounds, 3)
	g.Admit(report("a", 120.2, 36.05))
	g.Admit(report("b", 120.2, 36.05))
	g.Admit(report("c", 120.2, 36.05))

	// refreshing "a" must not protect it from eviction
	if res := g.Admit(report("a", 120.3, 36.1)); res.Evicted != "" {
		t.Fatalf("update evicted %q", res.Evicted)
	}
	res := g.Admit(report("d", 120.2, 36.05))
	if res.Evicted != "a" {
		t.Errorf("evicted %q, want \"a\"", res.Evicted)
	}

	var ids []string
	for _, st := range g.Snapshot() {
		ids = append(ids, st.Report.MMSI)
	}
	if len(ids) != 3 || ids[0] != "b" || ids[1] != "c" || ids[2] != "d" {
		t.Errorf("order = %v, want [b c d]", ids)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	g := New(DefaultBounds, 0)
	g.Admit(report("a", 120.2, 36.05))
	snap := g.Snapshot()
	snap[0].Report.MMSI = "mutated"

	if st, _ := g.Get("a"); st.Report.MMSI != "a" {
		t.Error("mutating a snapshot should not affect the registry")
	}
}
