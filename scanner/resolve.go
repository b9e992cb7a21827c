package scanner

import (
	"path"
	"strings"
)

// resolve converts raw import strings into directed edges against the
// discovered file set. It is a best-effort path-shape lookup, not a module
// system: unresolved imports are silently dropped, and when two files
// register the same variant the first-registered one wins. That collision
// policy is a documented resolution ambiguity, not something to silently
// repair.
func (s *scan) resolve() {
	lookup := make(map[string]string)
	register := func(key, id string) {
		if _, exists := lookup[key]; !exists {
			lookup[key] = id
		}
	}

	for _, n := range s.nodes {
		rel := n.Path
		noExt := strings.TrimSuffix(rel, path.Ext(rel))
		stem := path.Base(noExt)
		for _, k := range []string{
			rel,
			noExt,
			stem,
			strings.ReplaceAll(noExt, "/", "."),
			"./" + noExt,
			"../" + noExt,
		} {
			register(k, n.ID)
		}
		if parts := strings.Split(noExt, "/"); len(parts) >= 2 {
			tail := parts[len(parts)-2:]
			register(strings.Join(tail, "/"), n.ID)
			register(strings.Join(tail, "."), n.ID)
		}
	}

	byID := make(map[string]*FileNode, len(s.nodes))
	for _, n := range s.nodes {
		byID[n.ID] = n
	}

	for _, n := range s.nodes {
		for _, imp := range n.Imports {
			target, ok := lookup[imp]
			if !ok {
				stripped := strings.TrimLeft(imp, "./")
				target, ok = lookup[strings.ReplaceAll(stripped, ".", "/")]
				if !ok {
					target, ok = lookup[strings.ReplaceAll(stripped, "/", ".")]
				}
			}
			if !ok || target == n.ID {
				continue
			}
			s.edges = append(s.edges, Edge{
				Source: n.ID,
				Target: target,
				Type:   EdgeTypeImport,
				Label:  imp,
			})
			byID[target].FanIn++
			n.FanOut++
		}
	}
}
