package contracts

import "time"

// FaultReason classifies a recoverable per-record data-quality fault.
type FaultReason string

const (
	FaultNonPositivePrice FaultReason = "non_positive_price"
	FaultDuplicateDate    FaultReason = "duplicate_date"
	FaultMalformedRow     FaultReason = "malformed_row"
)

// DataQualityFault records one skipped input record. The run continues;
// faults are reported in aggregate at the end.
type DataQualityFault struct {
	SecurityID string      `json:"security_id"`
	AsOf       time.Time   `json:"as_of,omitempty"`
	Reason     FaultReason `json:"reason"`
	Detail     string      `json:"detail,omitempty"`
}

// QualityReport is the structured warning summary for a run. It replaces
// any notion of shared mutable logging state: each component returns its
// own report and the pipeline merges them.
type QualityReport struct {
	SkippedPoints       int                `json:"skipped_points"`
	DuplicatePoints     int                `json:"duplicate_points"`
	MalformedRows       int                `json:"malformed_rows"`
	InsufficientHistory int                `json:"insufficient_history"` // securities with < 13 month-ends
	ExtremeHighReturns  int                `json:"extreme_high_returns"` // > +500%
	ExtremeLowReturns   int                `json:"extreme_low_returns"`  // < -90%
	MissingConstituents int                `json:"missing_constituents"` // reference entries without prices
	Faults              []DataQualityFault `json:"faults,omitempty"`
}

// AddFault records a fault and bumps the matching counter.
func (q *QualityReport) AddFault(f DataQualityFault) {
	switch f.Reason {
	case FaultNonPositivePrice:
		q.SkippedPoints++
	case FaultDuplicateDate:
		q.DuplicatePoints++
	case FaultMalformedRow:
		q.MalformedRows++
	}
	q.Faults = append(q.Faults, f)
}

// Merge folds another report into this one.
func (q *QualityReport) Merge(other QualityReport) {
	q.SkippedPoints += other.SkippedPoints
	q.DuplicatePoints += other.DuplicatePoints
	q.MalformedRows += other.MalformedRows
	q.InsufficientHistory += other.InsufficientHistory
	q.ExtremeHighReturns += other.ExtremeHighReturns
	q.ExtremeLowReturns += other.ExtremeLowReturns
	q.MissingConstituents += other.MissingConstituents
	q.Faults = append(q.Faults, other.Faults...)
}

// HasWarnings reports whether anything at all was skipped or flagged.
func (q *QualityReport) HasWarnings() bool {
	return q.SkippedPoints > 0 ||
		q.DuplicatePoints > 0 ||
		q.MalformedRows > 0 ||
		q.InsufficientHistory > 0 ||
		q.ExtremeHighReturns > 0 ||
		q.ExtremeLowReturns > 0 ||
		q.MissingConstituents > 0
}
