package service

import (
	"sort"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

type coverageCandidate struct {
	employee  models.Employee
	usable    int
	rankTotal int
	order     int
}

// MatchCoverage claims slot employees against demand lines, one line per employee.
// Employees with fewer usable qualifications, and scarcer ones, are considered
// first. The assignment is greedy and not guaranteed optimal.
func MatchCoverage(lines []models.DemandLine, employees []models.Employee) models.CoverageResult {
	ordered := make([]models.DemandLine, len(lines))
	copy(ordered, lines)
	sortDemandLines(ordered)

	ranks := make(map[string]int, len(ordered))
	for _, line := range ordered {
		if rank, ok := ranks[line.QualificationID]; !ok || line.PriorityRank < rank {
			ranks[line.QualificationID] = line.PriorityRank
		}
	}

	candidates := make([]coverageCandidate, 0, len(employees))
	seen := make(map[string]struct{}, len(employees))
	for i, emp := range employees {
		if _, dup := seen[emp.ID]; dup {
			continue
		}
		seen[emp.ID] = struct{}{}
		c := coverageCandidate{employee: emp, order: i}
		held := make(map[string]struct{}, len(emp.QualificationIDs))
		for _, qid := range emp.QualificationIDs {
			if _, dup := held[qid]; dup {
				continue
			}
			held[qid] = struct{}{}
			if rank, ok := ranks[qid]; ok {
				c.usable++
				c.rankTotal += rank
			}
		}
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].usable != candidates[j].usable {
			return candidates[i].usable < candidates[j].usable
		}
		if candidates[i].rankTotal != candidates[j].rankTotal {
			return candidates[i].rankTotal < candidates[j].rankTotal
		}
		return candidates[i].order < candidates[j].order
	})

	claimed := make(map[string]struct{}, len(candidates))
	result := models.CoverageResult{Lines: make([]models.LineCoverage, 0, len(ordered))}
	totalRequired := 0
	for _, line := range ordered {
		required := line.RequiredCount
		if required < 0 {
			required = 0
		}
		totalRequired += required
		coverage := models.LineCoverage{
			QualificationID: line.QualificationID,
			Label:           line.Label,
			PriorityRank:    line.PriorityRank,
			Required:        required,
			Holders:         []string{},
		}
		for _, c := range candidates {
			if len(coverage.Holders) >= required {
				break
			}
			if _, taken := claimed[c.employee.ID]; taken {
				continue
			}
			if !c.employee.Holds(line.QualificationID) {
				continue
			}
			claimed[c.employee.ID] = struct{}{}
			coverage.Holders = append(coverage.Holders, c.employee.ID)
		}
		coverage.Claimed = len(coverage.Holders)
		coverage.Missing = required - coverage.Claimed
		result.Shortfall += coverage.Missing
		result.Lines = append(result.Lines, coverage)
	}

	switch {
	case result.Shortfall > 0:
		result.Status = models.CoverageUncovered
	case totalRequired > 0:
		result.Status = models.CoverageCovered
	default:
		result.Status = models.CoverageNoRequirement
	}
	return result
}
