// Package bridge exposes the loaded project to coding agents over stdio
// JSON-RPC. Each tool relays to the dashboard HTTP API and renders the
// response as agent-readable text.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/sourcegraph/jsonrpc2"
)

// DefaultServerURL is where the dashboard API listens unless overridden.
const DefaultServerURL = "http://localhost:3000"

const maxSearchResults = 100

// Server answers agent tool calls over a jsonrpc2 connection.
type Server struct {
	relay  *relayClient
	logger *log.Logger
}

// NewServer builds a bridge pointed at the dashboard API.
func NewServer(serverURL string, logger *log.Logger) *Server {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		relay:  newRelayClient(serverURL),
		logger: logger,
	}
}

// Run serves tool calls over rwc until the context is cancelled or the
// stream closes. RunStdio wires it to the process stdin/stdout.
func (s *Server) Run(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	select {
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}

// RunStdio serves tool calls over the process standard streams.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &stdioPipe{reader: os.Stdin, writer: os.Stdout})
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	if req.Notif {
		return nil, nil
	}
	s.logger.Printf("tool call %s", req.Method)
	var params struct {
		Path     string `json:"path"`
		Command  string `json:"command"`
		Pattern  string `json:"pattern"`
		Filename string `json:"filename"`
	}
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
	}
	switch req.Method {
	case "get_loaded_project":
		return s.loadedProject()
	case "read_project_file":
		return s.readProjectFile(params.Path)
	case "execute_in_project":
		return s.executeInProject(params.Command)
	case "get_risk_map":
		return s.riskMap()
	case "search_project_files":
		return s.searchProjectFiles(params.Pattern)
	case "get_file_risk_info":
		return s.fileRiskInfo(params.Filename)
	default:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("unknown tool %q", req.Method)}
	}
}

func (s *Server) loadedProject() (string, error) {
	rootBody, err := s.relay.get("/api/project-root")
	if err != nil {
		return "", err
	}
	var rootResp struct {
		ProjectRoot string `json:"project_root"`
	}
	if err := json.Unmarshal(rootBody, &rootResp); err != nil {
		return "", err
	}
	scan, err := s.scanSnapshot()
	if err != nil {
		return "", err
	}
	meta := scan.Metadata
	return fmt.Sprintf(`Currently Loaded Project:
Path: %s
Name: %s
Files: %d
Languages: %s
Health Score: %d/100
`, rootResp.ProjectRoot, meta.ProjectName, meta.TotalFiles,
		strings.Join(meta.Languages, ", "), meta.HealthScore), nil
}

func (s *Server) readProjectFile(path string) (string, error) {
	if path == "" {
		return "", &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "path is required"}
	}
	body, status, err := s.relay.post("/api/read-file", map[string]string{"path": path})
	if err != nil {
		return "", err
	}
	switch status {
	case 404:
		return fmt.Sprintf("Error: File not found: %s", path), nil
	case 403:
		return fmt.Sprintf("Error: Access denied - path is outside project: %s", path), nil
	}
	if status >= 400 {
		return fmt.Sprintf("Error: %d - %s", status, strings.TrimSpace(string(body))), nil
	}
	var resp struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *Server) executeInProject(command string) (string, error) {
	if command == "" {
		return "", &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "command is required"}
	}
	body, status, err := s.relay.post("/api/exec-command", map[string]string{"command": command})
	if err != nil {
		return "", err
	}
	if status == 408 {
		return "Error: Command timed out (30s limit)", nil
	}
	if status >= 400 {
		return fmt.Sprintf("Error: %d - %s", status, strings.TrimSpace(string(body))), nil
	}
	var resp struct {
		Stdout     string `json:"stdout"`
		Stderr     string `json:"stderr"`
		ReturnCode int    `json:"returncode"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	var out []string
	if resp.Stdout != "" {
		out = append(out, "STDOUT:\n"+resp.Stdout)
	}
	if resp.Stderr != "" {
		out = append(out, "STDERR:\n"+resp.Stderr)
	}
	out = append(out, fmt.Sprintf("\nExit code: %d", resp.ReturnCode))
	return strings.Join(out, "\n"), nil
}

func (s *Server) riskMap() (string, error) {
	body, err := s.relay.get("/api/agent-context")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *Server) searchProjectFiles(pattern string) (string, error) {
	if pattern == "" {
		return "", &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "pattern is required"}
	}
	body, status, err := s.relay.post("/api/glob-files", map[string]string{"pattern": pattern})
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return fmt.Sprintf("Error: %d - %s", status, strings.TrimSpace(string(body))), nil
	}
	var resp struct {
		Matches []string `json:"matches"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Matches) == 0 {
		return fmt.Sprintf("No files found matching pattern: %s", pattern), nil
	}
	shown := resp.Matches
	if len(shown) > maxSearchResults {
		shown = shown[:maxSearchResults]
	}
	lines := make([]string, 0, len(shown)+1)
	lines = append(lines, fmt.Sprintf("Found %d files:", len(resp.Matches)))
	for _, m := range shown {
		lines = append(lines, "  - "+m)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Server) fileRiskInfo(filename string) (string, error) {
	if filename == "" {
		return "", &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "filename is required"}
	}
	scan, err := s.scanSnapshot()
	if err != nil {
		return "", err
	}
	var matches []scanNode
	for _, n := range scan.Nodes {
		if strings.Contains(n.Path, filename) || filename == n.Name {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		return fmt.Sprintf("File not found: %s", filename), nil
	}
	if len(matches) > 1 {
		var paths []string
		for i, m := range matches {
			if i == 10 {
				break
			}
			paths = append(paths, "  - "+m.Path)
		}
		return fmt.Sprintf("Multiple files match '%s':\n%s\n\nPlease be more specific.",
			filename, strings.Join(paths, "\n")), nil
	}
	n := matches[0]
	hasTests := "No"
	if n.HasTests {
		hasTests = "Yes"
	}
	out := []string{
		fmt.Sprintf("File: %s", n.Path),
		fmt.Sprintf("Risk Score: %.1f/100", n.RiskScore),
		fmt.Sprintf("Language: %s", n.Language),
		fmt.Sprintf("Lines: %d", n.Lines),
		fmt.Sprintf("Complexity: %s", n.Complexity),
		fmt.Sprintf("Dependents (Fan-In): %d", n.FanIn),
		fmt.Sprintf("Dependencies (Fan-Out): %d", n.FanOut),
		fmt.Sprintf("Has Tests: %s", hasTests),
	}
	if len(n.Tags) > 0 {
		out = append(out, "Tags: "+strings.Join(n.Tags, ", "))
	}
	if len(n.Concerns) > 0 {
		out = append(out, "Concerns: "+strings.Join(n.Concerns, ", "))
	}
	if n.PlainEnglish != "" {
		out = append(out, "\n"+n.PlainEnglish)
	}
	return strings.Join(out, "\n"), nil
}

// scanNode is the slice of the snapshot shape the bridge cares about. The
// bridge deliberately decodes JSON rather than importing the scanner types:
// it may run against a dashboard from a different build.
type scanNode struct {
	Path         string   `json:"path"`
	Name         string   `json:"name"`
	Language     string   `json:"language"`
	Lines        int      `json:"lines"`
	Complexity   string   `json:"complexity"`
	RiskScore    float64  `json:"risk_score"`
	FanIn        int      `json:"fan_in"`
	FanOut       int      `json:"fan_out"`
	HasTests     bool     `json:"has_tests"`
	Tags         []string `json:"tags"`
	Concerns     []string `json:"concerns"`
	PlainEnglish string   `json:"plain_english"`
}

type scanSnapshot struct {
	Metadata struct {
		ProjectName string   `json:"project_name"`
		TotalFiles  int      `json:"total_files"`
		Languages   []string `json:"languages"`
		HealthScore int      `json:"health_score"`
	} `json:"metadata"`
	Nodes []scanNode `json:"nodes"`
}

func (s *Server) scanSnapshot() (*scanSnapshot, error) {
	body, err := s.relay.get("/api/scan")
	if err != nil {
		return nil, err
	}
	var snap scanSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

type stdioPipe struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (p *stdioPipe) Read(b []byte) (int, error)  { return p.reader.Read(b) }
func (p *stdioPipe) Write(b []byte) (int, error) { return p.writer.Write(b) }
func (p *stdioPipe) Close() error {
	_ = p.reader.Close()
	return p.writer.Close()
}
