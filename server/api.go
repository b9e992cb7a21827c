package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexcodex/cartograph/llm"
	"github.com/lexcodex/cartograph/persistence"
	"github.com/lexcodex/cartograph/scanner"
)

const (
	execTimeout       = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
	chatHistoryWindow = 10
)

// APIServer exposes the scan snapshots, project management, file access, and
// chat endpoints consumed by the dashboard and the agent bridge.
type APIServer struct {
	Registry   *Registry
	Chat       persistence.ChatHistory
	Config     *persistence.Config
	ConfigPath string
	Logger     *log.Logger

	// LLMBaseURL overrides the chat endpoint; tests point it at a stub.
	LLMBaseURL string
}

// Routes builds the HTTP handler.
func (s *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scan", s.handleScan)
	mux.HandleFunc("/api/rescan", s.handleRescan)
	mux.HandleFunc("/api/agent-context", s.handleAgentContext)
	mux.HandleFunc("/api/project-root", s.handleProjectRoot)
	mux.HandleFunc("/api/projects", s.handleProjects)
	mux.HandleFunc("/api/recent-projects", s.handleRecentProjects)
	mux.HandleFunc("/api/load-project", s.handleLoadProject)
	mux.HandleFunc("/api/projects/unload", s.handleUnload)
	mux.HandleFunc("/api/projects/activate", s.handleActivate)
	mux.HandleFunc("/api/read-file", s.handleReadFile)
	mux.HandleFunc("/api/exec-command", s.handleExecCommand)
	mux.HandleFunc("/api/glob-files", s.handleGlobFiles)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/chat/history", s.handleChatHistory)
	mux.HandleFunc("/api/chat/clear", s.handleChatClear)
	mux.HandleFunc("/api/chat/config", s.handleChatConfig)
	return mux
}

// ServeContext listens on addr until the context is cancelled, then shuts
// down gracefully.
func (s *APIServer) ServeContext(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Routes()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	if s.Logger != nil {
		s.Logger.Printf("API listening on %s", addr)
	}
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *APIServer) projectID(r *http.Request) string {
	return r.URL.Query().Get("project_id")
}

// emptyScan mirrors the snapshot shape for "nothing loaded" responses.
var emptyScan = map[string]interface{}{
	"metadata": map[string]interface{}{},
	"nodes":    []interface{}{},
	"edges":    []interface{}{},
}

func (s *APIServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	project, ok := s.Registry.Get(s.projectID(r))
	if !ok {
		s.writeJSON(w, emptyScan)
		return
	}
	s.writeJSON(w, project.Scan)
}

func (s *APIServer) handleRescan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	result, err := s.Registry.Rescan(r.Context(), s.projectID(r))
	if err != nil {
		if errors.Is(err, ErrNoProject) {
			s.writeJSON(w, emptyScan)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, result)
}

func (s *APIServer) handleAgentContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var doc string
	if project, ok := s.Registry.Get(s.projectID(r)); ok {
		doc = project.Scan.AgentContext
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

func (s *APIServer) handleProjectRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	root := ""
	if project, ok := s.Registry.Get(s.projectID(r)); ok {
		root = project.Root
	}
	s.writeJSON(w, map[string]string{"project_root": root})
}

func (s *APIServer) handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, map[string]interface{}{"projects": s.Registry.List()})
}

func (s *APIServer) handleRecentProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	projects := s.Registry.RecentProjects()
	if projects == nil {
		projects = []string{}
	}
	s.writeJSON(w, map[string]interface{}{"projects": projects})
}

type loadProjectRequest struct {
	Path string `json:"path"`
}

func (s *APIServer) handleLoadProject(w http.ResponseWriter, r *http.Request) {
	var req loadProjectRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	if req.Path == "" {
		http.Error(w, "missing path parameter", http.StatusBadRequest)
		return
	}
	project, err := s.Registry.Load(r.Context(), req.Path)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scanner.ErrNotDirectory) || errors.Is(err, ErrProjectLimit) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"project_id":   project.ID,
		"project_name": project.Name,
		"scan_data":    project.Scan,
	})
}

type projectIDRequest struct {
	ProjectID string `json:"project_id"`
}

func (s *APIServer) handleUnload(w http.ResponseWriter, r *http.Request) {
	var req projectIDRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	s.Registry.Unload(req.ProjectID)
	s.writeJSON(w, map[string]bool{"success": true})
}

func (s *APIServer) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req projectIDRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	if err := s.Registry.Activate(req.ProjectID); err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]interface{}{"success": true, "project_id": req.ProjectID})
}

type readFileRequest struct {
	ProjectID string `json:"project_id"`
	Path      string `json:"path"`
}

func (s *APIServer) handleReadFile(w http.ResponseWriter, r *http.Request) {
	var req readFileRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	project, ok := s.Registry.Get(req.ProjectID)
	if !ok {
		http.Error(w, "no project loaded", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		http.Error(w, "missing path parameter", http.StatusBadRequest)
		return
	}
	full := filepath.Join(project.Root, filepath.FromSlash(req.Path))
	abs, err := filepath.Abs(full)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// Stay inside the project root.
	rel, err := filepath.Rel(project.Root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		http.Error(w, "access denied: path outside project", http.StatusForbidden)
		return
	}
	content, err := readFileReplacing(abs)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]string{"path": req.Path, "content": content})
}

type execCommandRequest struct {
	ProjectID string `json:"project_id"`
	Command   string `json:"command"`
}

func (s *APIServer) handleExecCommand(w http.ResponseWriter, r *http.Request) {
	var req execCommandRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	project, ok := s.Registry.Get(req.ProjectID)
	if !ok {
		http.Error(w, "no project loaded", http.StatusBadRequest)
		return
	}
	if req.Command == "" {
		http.Error(w, "missing command parameter", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), execTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "sh", "-c", req.Command)
	cmd.Dir = project.Root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		http.Error(w, "command timeout", http.StatusRequestTimeout)
		return
	}
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	s.writeJSON(w, map[string]interface{}{
		"command":    req.Command,
		"stdout":     stdout.String(),
		"stderr":     stderr.String(),
		"returncode": exitCode,
	})
}

type globFilesRequest struct {
	ProjectID string `json:"project_id"`
	Pattern   string `json:"pattern"`
}

func (s *APIServer) handleGlobFiles(w http.ResponseWriter, r *http.Request) {
	var req globFilesRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	project, ok := s.Registry.Get(req.ProjectID)
	if !ok {
		http.Error(w, "no project loaded", http.StatusBadRequest)
		return
	}
	if req.Pattern == "" {
		http.Error(w, "missing pattern parameter", http.StatusBadRequest)
		return
	}
	matches, err := globFiles(project.Root, req.Pattern)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if matches == nil {
		matches = []string{}
	}
	s.writeJSON(w, map[string]interface{}{"pattern": req.Pattern, "matches": matches})
}

type chatPostRequest struct {
	Message      string   `json:"message"`
	Model        string   `json:"model"`
	IncludeFiles []string `json:"include_files"`
	ProjectID    string   `json:"project_id"`
}

func (s *APIServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatPostRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		http.Error(w, "missing message parameter", http.StatusBadRequest)
		return
	}
	project, ok := s.Registry.Get(req.ProjectID)
	if !ok {
		http.Error(w, "no project loaded", http.StatusBadRequest)
		return
	}
	model := req.Model
	if model == "" {
		model = s.Config.Model
	}

	codebaseContext := llm.BuildContext(req.Message, project.Scan, req.IncludeFiles)

	client := llm.NewClient(s.Config.EffectiveAPIKey())
	if s.LLMBaseURL != "" {
		client.BaseURL = s.LLMBaseURL
	}
	history, err := s.Chat.History(r.Context(), project.ID, chatHistoryWindow)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	reply, err := client.Chat(r.Context(), model, req.Message, codebaseContext, history)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, llm.ErrNoAPIKey) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	if err := s.Chat.Append(r.Context(), project.ID,
		persistence.ChatMessage{Role: "user", Content: req.Message},
		persistence.ChatMessage{Role: "assistant", Content: reply},
	); err != nil && s.Logger != nil {
		s.Logger.Printf("chat history append failed: %v", err)
	}
	s.writeJSON(w, map[string]interface{}{
		"response":     reply,
		"model":        model,
		"context_size": len(codebaseContext),
	})
}

func (s *APIServer) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	messages := []persistence.ChatMessage{}
	if project, ok := s.Registry.Get(s.projectID(r)); ok {
		if history, err := s.Chat.History(r.Context(), project.ID, 0); err == nil && history != nil {
			messages = history
		}
	}
	s.writeJSON(w, map[string]interface{}{"messages": messages})
}

func (s *APIServer) handleChatClear(w http.ResponseWriter, r *http.Request) {
	var req projectIDRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	if project, ok := s.Registry.Get(req.ProjectID); ok {
		_ = s.Chat.Clear(r.Context(), project.ID)
	}
	s.writeJSON(w, map[string]bool{"success": true})
}

type chatConfigRequest struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

func (s *APIServer) handleChatConfig(w http.ResponseWriter, r *http.Request) {
	var req chatConfigRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.APIKey == "" {
		http.Error(w, "API key cannot be empty", http.StatusBadRequest)
		return
	}
	s.Config.APIKey = req.APIKey
	if req.Model != "" {
		s.Config.Model = req.Model
	}
	saved := true
	if err := s.Config.Save(s.ConfigPath); err != nil {
		saved = false
		if s.Logger != nil {
			s.Logger.Printf("config save failed: %v", err)
		}
	}
	s.writeJSON(w, map[string]interface{}{
		"success":       true,
		"model":         s.Config.Model,
		"api_key_set":   true,
		"saved_to_file": saved,
	})
}

// decodePost enforces the POST method and decodes the JSON body. It writes
// the error response itself and reports whether the handler may proceed.
func (s *APIServer) decodePost(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *APIServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil && s.Logger != nil {
		s.Logger.Printf("write response: %v", err)
	}
}
