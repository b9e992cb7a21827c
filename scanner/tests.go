package scanner

import "strings"

// testNameFragments are the filename conventions that mark a test file.
var testNameFragments = []string{
	"test_", "_test.", ".test.", "spec.", "_spec.", "Test.", "Tests.",
}

// testDirNames are path segments that mark everything under them as tests.
var testDirNames = map[string]struct{}{
	"tests": {}, "test": {}, "__tests__": {}, "spec": {},
}

// markTests classifies test files, tags them, and subtracts the test relief
// from their score (floored at zero). Runs after the git adjustment so the
// relief applies to the adjusted score.
func (s *scan) markTests() {
	for _, n := range s.nodes {
		if !isTestFile(n.Name, n.Path) {
			continue
		}
		n.HasTests = true
		n.addTag(TagTest)
		score := n.RiskScore - testScoreRelief
		if score < 0 {
			score = 0
		}
		n.RiskScore = score
	}
}

func isTestFile(name, relPath string) bool {
	for _, frag := range testNameFragments {
		if strings.Contains(name, frag) {
			return true
		}
	}
	for _, seg := range strings.Split(relPath, "/") {
		if _, ok := testDirNames[seg]; ok {
			return true
		}
	}
	return false
}
