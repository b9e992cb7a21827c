package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ignoreDirs are pruned from traversal entirely: build artifacts, dependency
// caches, VCS internals, and IDE metadata. Dot-prefixed directories are
// pruned as well.
var ignoreDirs = map[string]struct{}{
	"node_modules": {}, ".git": {}, "__pycache__": {}, ".next": {},
	"dist": {}, "build": {}, ".build": {}, "DerivedData": {}, "Pods": {},
	"venv": {}, ".venv": {}, "env": {}, ".env": {}, "vendor": {},
	"target": {}, "bin": {}, "obj": {}, ".idea": {}, ".vscode": {},
	".gradle": {}, ".dart_tool": {}, "coverage": {}, ".cache": {},
	".turbo": {}, "out": {}, ".output": {}, ".expo": {}, ".swiftpm": {},
	"xcuserdata": {},
}

// ignoreFiles are lockfiles and OS metadata that never become nodes.
var ignoreFiles = map[string]struct{}{
	".DS_Store": {}, "Thumbs.db": {}, "package-lock.json": {},
	"yarn.lock": {}, "pnpm-lock.yaml": {}, "Podfile.lock": {},
	"poetry.lock": {},
}

// discover walks the tree and creates one zero-valued FileNode per source
// file with a recognized extension. Files whose stat or read fails are
// silently skipped; undecodable bytes are replaced rather than failing the
// file. Raw content is held in memory for the extractor and never persisted
// in the snapshot.
func (s *scan) discover() {
	_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == s.root {
				return nil
			}
			if _, ok := ignoreDirs[name]; ok || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := ignoreFiles[name]; ok || strings.HasPrefix(name, ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		lang, ok := languageByExt[ext]
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		content := strings.ToValidUTF8(string(raw), "�")

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		id := fileID(s.projectID, rel)

		node := &FileNode{
			ID:           id,
			AbsPath:      path,
			Path:         rel,
			Name:         name,
			Extension:    ext,
			Language:     lang,
			Lines:        strings.Count(content, "\n") + 1,
			Size:         info.Size(),
			LastModified: info.ModTime(),
			Complexity:   ComplexityLow,
		}
		s.nodes = append(s.nodes, node)
		s.contents[id] = content
		return nil
	})
}
