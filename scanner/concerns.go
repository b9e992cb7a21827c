package scanner

import "strings"

type concernBucket struct {
	label    string
	keywords []string
}

// concernBuckets is the fixed label→keyword table of the classifier. Order
// matters only for the order of labels on a node.
var concernBuckets = []concernBucket{
	{"authentication", []string{"auth", "login", "logout", "token", "jwt", "session", "password", "oauth", "signin", "signup", "credential"}},
	{"database", []string{"database", "db", "model", "schema", "migration", "query", "sql", "core_data", "realm", "sqlite", "mongo"}},
	{"networking", []string{"api", "http", "fetch", "request", "url", "endpoint", "rest", "graphql", "socket", "network"}},
	{"ui / views", []string{"view", "screen", "component", "widget", "layout", "page", "ui", "button", "form", "modal", "navigation"}},
	{"state management", []string{"state", "store", "redux", "context", "provider", "viewmodel", "observable", "published", "combine", "bloc"}},
	{"configuration", []string{"config", "env", "environment", "settings", "constants", "keys", "secret"}},
	{"payments", []string{"payment", "stripe", "billing", "subscription", "purchase", "storekit", "iap", "checkout"}},
	{"testing", []string{"test", "spec", "mock", "stub", "fixture", "assert"}},
	{"security", []string{"security", "encrypt", "decrypt", "keychain", "hash", "ssl", "cert"}},
	{"notifications", []string{"notification", "push", "alert", "apns", "fcm", "messaging"}},
	{"analytics", []string{"analytics", "tracking", "event", "metric", "log", "telemetry", "firebase"}},
}

// concernThreshold is the minimum keyword score for a label to stick.
const concernThreshold = 3

// classifyConcerns keyword-scores every node against each bucket: 3 points
// for a keyword in the filename, 2 in the relative path, 2 for an exact
// binding-point name, 1 anywhere in the content, all case-insensitive. This
// is a heuristic relevance filter; false positives below the threshold are
// expected and fine.
func (s *scan) classifyConcerns() {
	for _, n := range s.nodes {
		content := strings.ToLower(s.contents[n.ID])
		pathLower := strings.ToLower(n.Path)
		nameLower := strings.ToLower(n.Name)
		bindingNames := make(map[string]struct{}, len(n.BindingPoints))
		for _, bp := range n.BindingPoints {
			bindingNames[strings.ToLower(bp.Name)] = struct{}{}
		}
		for _, bucket := range concernBuckets {
			score := 0
			for _, kw := range bucket.keywords {
				switch {
				case strings.Contains(nameLower, kw):
					score += 3
				case strings.Contains(pathLower, kw):
					score += 2
				case hasKey(bindingNames, kw):
					score += 2
				case strings.Contains(content, kw):
					score++
				}
			}
			if score >= concernThreshold {
				n.Concerns = append(n.Concerns, bucket.label)
			}
		}
	}
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
