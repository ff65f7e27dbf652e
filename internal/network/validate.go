package network

import (
	"fmt"
	"sort"

	"github.com/nvandessel/contagion/internal/models"
)

// Issue kinds reported by Validate.
const (
	IssueBadID             = "bad-id"
	IssueBadStatus         = "bad-status"
	IssueSelfLoop          = "self-loop"
	IssueDangling          = "dangling"
	IssueDuplicateEdge     = "duplicate-edge"
	IssueDuplicateContact  = "duplicate-connection"
	IssueMissingEdge       = "missing-edge"
	IssueMissingConnection = "missing-connection"
	IssueBadStrength       = "bad-strength"
)

// ValidationError describes one consistency problem in a network.
type ValidationError struct {
	IndividualID int    `json:"individual_id"`
	RefID        int    `json:"ref_id"`
	Issue        string `json:"issue"`
	Detail       string `json:"detail,omitempty"`
}

// String returns a human-readable description of the validation error.
func (e ValidationError) String() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %d -> %d (%s)", e.Issue, e.IndividualID, e.RefID, e.Detail)
	}
	return fmt.Sprintf("%s: %d -> %d", e.Issue, e.IndividualID, e.RefID)
}

// Validate checks that a network is well formed:
//   - ids are 0..n-1 in slice order and statuses are known
//   - no self-loops, dangling references or duplicate edges
//   - every edge appears in both endpoints' connections, and every
//     connection has an edge record
//   - edge strengths are in (0, 1]
//
// The result is sorted by individual, then reference, then issue.
func Validate(net *models.Network) []ValidationError {
	var issues []ValidationError
	n := net.Size()

	for i, ind := range net.Individuals {
		if ind.ID != i {
			issues = append(issues, ValidationError{IndividualID: i, RefID: ind.ID, Issue: IssueBadID})
		}
		if !ind.Status.Valid() {
			issues = append(issues, ValidationError{IndividualID: i, RefID: i, Issue: IssueBadStatus, Detail: string(ind.Status)})
		}
	}

	edgeSet := make(map[uint64]bool, len(net.Edges))
	for _, e := range net.Edges {
		switch {
		case e.Source == e.Target:
			issues = append(issues, ValidationError{IndividualID: e.Source, RefID: e.Target, Issue: IssueSelfLoop})
			continue
		case !inRange(e.Source, n) || !inRange(e.Target, n):
			issues = append(issues, ValidationError{IndividualID: e.Source, RefID: e.Target, Issue: IssueDangling, Detail: "edge"})
			continue
		}
		if e.Strength <= 0 || e.Strength > 1 {
			issues = append(issues, ValidationError{
				IndividualID: e.Source,
				RefID:        e.Target,
				Issue:        IssueBadStrength,
				Detail:       fmt.Sprintf("%.4f", e.Strength),
			})
		}
		key := models.PairKey(e.Source, e.Target)
		if edgeSet[key] {
			issues = append(issues, ValidationError{IndividualID: e.Source, RefID: e.Target, Issue: IssueDuplicateEdge})
			continue
		}
		edgeSet[key] = true
	}

	contactSet := make(map[uint64]int, len(net.Edges))
	for i, ind := range net.Individuals {
		seen := make(map[int]bool, len(ind.Connections))
		for _, ref := range ind.Connections {
			switch {
			case ref == i:
				issues = append(issues, ValidationError{IndividualID: i, RefID: ref, Issue: IssueSelfLoop, Detail: "connection"})
				continue
			case !inRange(ref, n):
				issues = append(issues, ValidationError{IndividualID: i, RefID: ref, Issue: IssueDangling, Detail: "connection"})
				continue
			case seen[ref]:
				issues = append(issues, ValidationError{IndividualID: i, RefID: ref, Issue: IssueDuplicateContact})
				continue
			}
			seen[ref] = true
			contactSet[models.PairKey(i, ref)]++
			if !edgeSet[models.PairKey(i, ref)] {
				issues = append(issues, ValidationError{IndividualID: i, RefID: ref, Issue: IssueMissingEdge})
			}
		}
	}

	// An edge must be listed on both sides.
	reported := make(map[uint64]bool)
	for _, e := range net.Edges {
		if e.Source == e.Target || !inRange(e.Source, n) || !inRange(e.Target, n) {
			continue
		}
		key := models.PairKey(e.Source, e.Target)
		if contactSet[key] < 2 && !reported[key] {
			reported[key] = true
			issues = append(issues, ValidationError{IndividualID: e.Source, RefID: e.Target, Issue: IssueMissingConnection})
		}
	}

	sort.Slice(issues, func(a, b int) bool {
		if issues[a].IndividualID != issues[b].IndividualID {
			return issues[a].IndividualID < issues[b].IndividualID
		}
		if issues[a].RefID != issues[b].RefID {
			return issues[a].RefID < issues[b].RefID
		}
		return issues[a].Issue < issues[b].Issue
	})
	return issues
}

func inRange(id, n int) bool {
	return id >= 0 && id < n
}
