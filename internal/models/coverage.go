package models

// CoverageStatus summarises how well a slot is staffed.
type CoverageStatus string

const (
	CoverageCovered       CoverageStatus = "covered"
	CoverageUncovered     CoverageStatus = "uncovered"
	CoverageNoRequirement CoverageStatus = "no-requirement"
)

// LineCoverage reports which employees were claimed for a demand line.
type LineCoverage struct {
	QualificationID string   `json:"qualification_id"`
	Label           string   `json:"label"`
	PriorityRank    int      `json:"priority_rank"`
	Required        int      `json:"required"`
	Claimed         int      `json:"claimed"`
	Missing         int      `json:"missing"`
	Holders         []string `json:"holders"`
}

// CoverageResult is the verdict for one (date, shift) slot.
type CoverageResult struct {
	Lines     []LineCoverage `json:"lines"`
	Shortfall int            `json:"shortfall"`
	Status    CoverageStatus `json:"status"`
}
