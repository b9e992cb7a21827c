package scanner

import "strings"

// Line-count thresholds for the coarse complexity hint.
const (
	complexityHighLines   = 300
	complexityMediumLines = 100
)

// extract runs each compiled pattern of the node's language over the file
// content line by line. Every match becomes a BindingPoint; matches in the
// "imports" category are additionally collected as raw import strings in
// order of first appearance (duplicates permitted). A language missing from
// the table simply yields no binding points.
func (s *scan) extract() {
	for _, n := range s.nodes {
		content := s.contents[n.ID]
		lines := strings.Split(content, "\n")
		for _, p := range bindingPatterns[n.Language] {
			for i, line := range lines {
				for _, m := range p.re.FindAllStringSubmatch(line, -1) {
					name := matchName(m)
					if name == "" {
						continue
					}
					n.BindingPoints = append(n.BindingPoints, BindingPoint{
						Name: name,
						Type: p.category,
						Line: i + 1,
					})
					if p.category == categoryImports {
						n.Imports = append(n.Imports, name)
					}
				}
			}
		}
		switch {
		case n.Lines > complexityHighLines:
			n.Complexity = ComplexityHigh
		case n.Lines > complexityMediumLines:
			n.Complexity = ComplexityMedium
		}
	}
}

// matchName reduces a submatch to the binding name: the whole match when the
// pattern has no capture groups, otherwise the first non-empty group. Capture
// groups express either/or alternatives (e.g. `import X` vs `require(Y)`),
// so at most one of them is populated per match.
func matchName(m []string) string {
	if len(m) == 1 {
		return m[0]
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
