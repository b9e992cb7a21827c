package scanner

import "math"

// Scoring weights. These hand-tuned constants define the observable behavior
// under test; scores are relative to the current scan because each term is
// normalized against the project-wide maximum.
const (
	weightFanIn    = 35.0
	weightFanOut   = 15.0
	weightBindings = 25.0
	weightLines    = 10.0
	weightRiskTags = 15.0

	// bindingSaturation caps the binding-density term: ten or more binding
	// points count as full density.
	bindingSaturation = 10.0

	// testScoreRelief is subtracted from test files, floored at zero.
	testScoreRelief = 20.0
)

// riskTags are the tags that contribute to the tag-overlap term.
var riskTags = map[string]struct{}{
	TagAPIEndpoint: {},
	TagDataModel:   {},
	TagUnsafeCode:  {},
	TagEventDriven: {},
}

// scoreRisk assigns each node its 0-100 risk score.
func (s *scan) scoreRisk() {
	maxFanIn := 1
	maxFanOut := 1
	maxLines := 1
	for _, n := range s.nodes {
		if n.FanIn > maxFanIn {
			maxFanIn = n.FanIn
		}
		if n.FanOut > maxFanOut {
			maxFanOut = n.FanOut
		}
		if n.Lines > maxLines {
			maxLines = n.Lines
		}
	}

	for _, n := range s.nodes {
		overlap := 0
		for _, t := range n.Tags {
			if _, ok := riskTags[t]; ok {
				overlap++
			}
		}
		score := float64(n.FanIn)/float64(maxFanIn)*weightFanIn +
			float64(n.FanOut)/float64(maxFanOut)*weightFanOut +
			math.Min(float64(len(n.BindingPoints))/bindingSaturation, 1)*weightBindings +
			float64(n.Lines)/float64(maxLines)*weightLines +
			float64(overlap)/float64(len(riskTags))*weightRiskTags
		n.RiskScore = clampScore(score)
	}
}

// clampScore bounds a score to [0,100] and rounds to one decimal.
func clampScore(score float64) float64 {
	return math.Round(math.Min(math.Max(score, 0), 100)*10) / 10
}

// Health-score weights (aggregate project measure).
const (
	healthAvgRiskWeight  = 0.4
	healthUntestedWeight = 30.0
	healthTestedWeight   = 20.0
)

// healthScore computes the aggregate 0-100 project health value. An empty
// node set yields the neutral maximum rather than dividing by zero.
func healthScore(nodes []*FileNode) int {
	total := len(nodes)
	if total == 0 {
		total = 1
	}
	var sum float64
	tested := 0
	criticalUntested := 0
	for _, n := range nodes {
		sum += n.RiskScore
		if n.HasTests {
			tested++
		} else if n.RiskScore >= 50 {
			criticalUntested++
		}
	}
	avg := sum / float64(total)
	health := 100 - avg*healthAvgRiskWeight -
		float64(criticalUntested)/float64(total)*healthUntestedWeight +
		float64(tested)/float64(total)*healthTestedWeight
	return int(math.Round(math.Min(math.Max(health, 0), 100)))
}
