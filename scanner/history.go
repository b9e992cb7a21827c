package scanner

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

const (
	historyTimeout = 30 * time.Second
	historyWindow  = "6 months ago"

	// historyWeight is the maximum score bump for the most-touched file.
	historyWeight = 10.0
)

// applyHistory bumps risk scores by recent change frequency. Any failure
// (no git, no repository, nonzero exit, timeout) degrades to zero adjustment
// and never fails the scan.
func (s *scan) applyHistory(ctx context.Context) {
	counts, err := gitChangeCounts(ctx, s.root)
	if err != nil || len(counts) == 0 {
		return
	}
	maxCount := 1
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	for _, n := range s.nodes {
		n.GitChanges = counts[n.Path]
		if n.GitChanges > 0 {
			n.RiskScore = clampScore(n.RiskScore + float64(n.GitChanges)/float64(maxCount)*historyWeight)
		}
	}
}

// gitChangeCounts returns per-file touch counts over the recent window,
// keyed by slash-separated repository-relative path.
func gitChangeCounts(ctx context.Context, root string) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", "-C", root, "log", "--format=", "--name-only", "--since="+historyWindow)
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			counts[line]++
		}
	}
	return counts, nil
}
