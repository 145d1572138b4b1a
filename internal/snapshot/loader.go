// Package snapshot loads the codebase context the generative service is
// conditioned on: either a prebuilt repomix file or a bounded scan of the
// project directory. Truncation to per-call ceilings is the caller's job.
package snapshot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docforge/internal/config"
)

// codeExtensions are the source file types whose contents are inlined into
// the scan output.
var codeExtensions = map[string]bool{
	".py":   true,
	".js":   true,
	".ts":   true,
	".java": true,
	".cpp":  true,
	".go":   true,
	".rs":   true,
}

var readmeNames = []string{"README.md", "readme.md", "README.txt", "README"}

// Snapshot is the loaded project context.
type Snapshot struct {
	Text       string
	CommitHash string // short HEAD hash, empty when not a git repository
}

// Loader builds snapshots for one project.
type Loader struct {
	cfg         config.SnapshotConfig
	projectPath string
	projectName string
}

// NewLoader creates a loader.
func NewLoader(cfg config.SnapshotConfig, projectPath, projectName string) *Loader {
	return &Loader{cfg: cfg, projectPath: projectPath, projectName: projectName}
}

// Load returns the project context. A configured repomix file wins; the
// directory scan is the fallback.
func (l *Loader) Load() (*Snapshot, error) {
	hash := headHash(l.projectPath)

	if l.cfg.RepomixFile != "" {
		if data, err := os.ReadFile(l.cfg.RepomixFile); err == nil {
			slog.Info("Loaded context from repomix file",
				"path", l.cfg.RepomixFile, "chars", len(data))
			return &Snapshot{Text: string(data), CommitHash: hash}, nil
		}
		slog.Warn("Repomix file configured but unreadable, scanning directory instead",
			"path", l.cfg.RepomixFile)
	}

	text, err := l.scan()
	if err != nil {
		return nil, err
	}
	return &Snapshot{Text: text, CommitHash: hash}, nil
}

// scan assembles context from the project directory: README first, then the
// file listing, then the contents of small source files up to the configured
// count.
func (l *Loader) scan() (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s\n\n", l.projectName)

	for _, name := range readmeNames {
		data, err := os.ReadFile(filepath.Join(l.projectPath, name))
		if err == nil {
			fmt.Fprintf(&sb, "=== README ===\n%s\n\n", data)
			break
		}
	}

	files, err := l.listFiles()
	if err != nil {
		return "", fmt.Errorf("scanning project directory: %w", err)
	}

	sb.WriteString("=== Project Structure ===\n")
	for _, rel := range files {
		fmt.Fprintf(&sb, "- %s\n", rel)
	}
	sb.WriteString("\n")

	maxSize := int64(l.cfg.MaxFileSizeKB) * 1024
	count := 0
	for _, rel := range files {
		if count >= l.cfg.MaxFiles {
			break
		}
		if !codeExtensions[filepath.Ext(rel)] {
			continue
		}
		full := filepath.Join(l.projectPath, rel)
		info, err := os.Stat(full)
		if err != nil || info.Size() >= maxSize {
			continue
		}
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "=== File: %s ===\n%s\n\n", rel, data)
		count++
	}

	slog.Info("Scanned project directory", "files", len(files), "inlined", count)
	return sb.String(), nil
}

// listFiles returns project-relative file paths in deterministic order.
// Git-tracked files are preferred when the project is a repository, which
// keeps build output and other untracked noise out of the context.
func (l *Loader) listFiles() ([]string, error) {
	if files, ok := trackedFiles(l.projectPath); ok {
		sort.Strings(files)
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(l.projectPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if l.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(l.projectPath, path)
		if relErr != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) excluded(name string) bool {
	for _, ex := range l.cfg.ExcludedDirs {
		if name == ex {
			return true
		}
	}
	return false
}
