package scanner

import "time"

// Complexity buckets derived from line count.
const (
	ComplexityLow    = "low"
	ComplexityMedium = "medium"
	ComplexityHigh   = "high"
)

// BindingPoint is one pattern match inside a file: the matched name, the
// pattern's category, and the 1-based source line it was found on.
type BindingPoint struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Line int    `json:"line"`
}

// FileNode describes one discovered source file and everything the pipeline
// derives for it. Nodes are mutated in place by each stage and frozen once
// the ScanResult is assembled.
type FileNode struct {
	ID            string         `json:"id"`
	AbsPath       string         `json:"-"`
	Path          string         `json:"path"` // relative to the scan root, slash-separated
	Name          string         `json:"name"`
	Extension     string         `json:"-"`
	Language      string         `json:"language"`
	Lines         int            `json:"lines"`
	Size          int64          `json:"size"`
	LastModified  time.Time      `json:"last_modified"`
	Imports       []string       `json:"imports"`
	BindingPoints []BindingPoint `json:"binding_points"`
	Tags          []string       `json:"tags"`
	RiskScore     float64        `json:"risk_score"`
	FanIn         int            `json:"fan_in"`
	FanOut        int            `json:"fan_out"`
	Complexity    string         `json:"complexity"`
	GitChanges    int            `json:"git_changes"`
	HasTests      bool           `json:"has_tests"`
	Concerns      []string       `json:"concerns"`
	PlainEnglish  string         `json:"plain_english"`
}

// hasTag reports whether the node already carries the tag.
func (n *FileNode) hasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// addTag inserts the tag keeping the slice sorted and duplicate-free, so the
// tag set serializes deterministically.
func (n *FileNode) addTag(tag string) {
	if n.hasTag(tag) {
		return
	}
	i := 0
	for i < len(n.Tags) && n.Tags[i] < tag {
		i++
	}
	n.Tags = append(n.Tags, "")
	copy(n.Tags[i+1:], n.Tags[i:])
	n.Tags[i] = tag
}

// Edge is a directed import dependency between two files. Edges are derived
// best-effort from import resolution: they may be missing (unresolved import)
// or occasionally wrong (path-variant collision). Multiple import statements
// between the same pair produce multiple edges.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"edge_type"`
	Label  string `json:"label"`
}

// EdgeTypeImport is currently the only edge type produced.
const EdgeTypeImport = "import"

// ConcernEntry is one file inside a concern cluster.
type ConcernEntry struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Risk float64 `json:"risk"`
}

// CriticalFile is one entry of the ranked critical-files shortlist.
type CriticalFile struct {
	File          string   `json:"file"`
	RiskScore     float64  `json:"risk_score"`
	FanIn         int      `json:"fan_in"`
	Tags          []string `json:"tags"`
	BindingPoints int      `json:"binding_points"`
}

// Metadata summarizes one scan pass.
type Metadata struct {
	ProjectRoot        string    `json:"project_root"`
	ProjectName        string    `json:"project_name"`
	ScannedAt          time.Time `json:"scanned_at"`
	TotalFiles         int       `json:"total_files"`
	TotalEdges         int       `json:"total_edges"`
	TotalBindingPoints int       `json:"total_binding_points"`
	Languages          []string  `json:"languages"`
	HealthScore        int       `json:"health_score"`
}

// ScanResult is the immutable snapshot produced by one scan pass. It is
// consumed read-only by the server, the chat context builder, and the agent
// bridge until the next rescan replaces it wholesale.
type ScanResult struct {
	Metadata        Metadata                  `json:"metadata"`
	Nodes           []*FileNode               `json:"nodes"`
	Edges           []Edge                    `json:"edges"`
	Groups          map[string][]string       `json:"groups"`
	ConcernClusters map[string][]ConcernEntry `json:"concern_clusters"`
	CriticalFiles   []CriticalFile            `json:"critical_files"`
	AgentContext    string                    `json:"agent_context"`
}

// NodeByID returns the node with the given id, or nil.
func (r *ScanResult) NodeByID(id string) *FileNode {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
