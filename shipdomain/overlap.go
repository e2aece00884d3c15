package shipdomain

// ComputeOverlap returns the intersection of two domain rings and whether they
// intersect. Polygon intersection is not implemented yet, so it always reports
// no overlap; renderers can rely on this signature.
func ComputeOverlap(a, b Ring) (Ring, bool) {
	return nil, false
}
