package model

// ReportColumns is the fixed width of a summary report. Every emitted row is
// padded or truncated to this width before it reaches a range write.
const ReportColumns = 13

// ManagerStats accumulates counters for one manager within a single
// aggregation pass. No state survives between passes.
type ManagerStats struct {
	Total    int
	IP       int
	TOO      int
	Contract int
	Accept   int

	// Tag buckets: mutually exclusive, exhaustive over non-red rows.
	NibSale  int
	Nib      int
	Zero     int
	EmptyTag int
	OtherTag int

	// Red counts both red-zone rows and rows carrying a red marker in text,
	// so it can overlap Total.
	Red int
}

// AcceptRatio returns Accept/Total, or exactly 0 when Total is 0.
func (s *ManagerStats) AcceptRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Accept) / float64(s.Total)
}

// ReportRow renders the stats as one 13-column report row.
func (s *ManagerStats) ReportRow(manager string) []any {
	return []any{
		manager, s.Total, s.IP, s.TOO, s.Contract, s.Accept, s.AcceptRatio(),
		s.NibSale, s.Nib, s.Zero, s.EmptyTag, s.OtherTag, s.Red,
	}
}
