// Package render resolves screenshot targets and diagram sources to artifact
// files on disk. All capture output is self-contained HTML written to the
// screenshot directory; a browser pointed at the artifact sees the intended
// view. Failures here are never fatal to a run, callers log and move on.
package render

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dferrors "git.home.luguber.info/inful/docforge/internal/errors"
)

// Target is one screenshot request resolved by the targeting call.
type Target struct {
	Description  string `json:"description"`
	TargetType   string `json:"target_type"`
	TargetPath   string `json:"target_path"`
	Instructions string `json:"instructions,omitempty"`
}

// Renderer resolves a target to an artifact path. An empty path with a nil
// error means the target could not be served, which callers treat the same
// as a capture failure: the media item stays unresolved.
type Renderer interface {
	Capture(target Target) (string, error)
}

const (
	maxTreeDepth    = 4
	maxTreeChildren = 20
)

// HTMLRenderer writes capture artifacts as styled HTML pages.
type HTMLRenderer struct {
	projectPath   string
	screenshotDir string
	maxCodeLines  int
	excludedDirs  []string
}

// NewHTMLRenderer creates the renderer and its output directory.
func NewHTMLRenderer(projectPath, screenshotDir string, maxCodeLines int, excludedDirs []string) (*HTMLRenderer, error) {
	if maxCodeLines <= 0 {
		maxCodeLines = 50
	}
	if err := os.MkdirAll(screenshotDir, 0o755); err != nil {
		return nil, dferrors.WrapError(err, dferrors.CategoryFileSystem, "creating screenshot directory")
	}
	return &HTMLRenderer{
		projectPath:   projectPath,
		screenshotDir: screenshotDir,
		maxCodeLines:  maxCodeLines,
		excludedDirs:  excludedDirs,
	}, nil
}

// Capture dispatches on the target type. Unknown types resolve to absence.
func (r *HTMLRenderer) Capture(target Target) (string, error) {
	switch target.TargetType {
	case "code_file", "config_file":
		return r.captureCodeFile(target.TargetPath)
	case "directory_structure":
		return r.captureDirectoryTree()
	default:
		return "", nil
	}
}

// captureCodeFile renders a line-capped view of one source file.
func (r *HTMLRenderer) captureCodeFile(relPath string) (string, error) {
	full := filepath.Join(r.projectPath, relPath)
	data, err := os.ReadFile(full)
	if err != nil {
		return "", dferrors.WrapError(err, dferrors.CategoryRender,
			fmt.Sprintf("reading capture target %s", relPath))
	}

	code := string(data)
	lines := strings.Split(code, "\n")
	if len(lines) > r.maxCodeLines {
		code = strings.Join(lines[:r.maxCodeLines], "\n") +
			fmt.Sprintf("\n\n... (truncated, %d more lines)", len(lines)-r.maxCodeLines)
	}

	page := codePage(relPath, code)
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(relPath) + ".html"
	return r.write(name, page)
}

// captureDirectoryTree renders a box-drawing listing of the project tree.
func (r *HTMLRenderer) captureDirectoryTree() (string, error) {
	tree := r.buildTree(r.projectPath, "", 0)
	page := treePage(tree)
	return r.write("directory_structure.html", page)
}

func (r *HTMLRenderer) write(name, content string) (string, error) {
	path := filepath.Join(r.screenshotDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", dferrors.WrapError(err, dferrors.CategoryRender, "writing capture artifact")
	}
	return path, nil
}

// buildTree lists directories before recursing, files sorted after
// directories at each level. Depth and fanout are capped to keep the
// artifact readable for large trees.
func (r *HTMLRenderer) buildTree(dir, prefix string, depth int) string {
	if depth > maxTreeDepth {
		return ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var kept []os.DirEntry
	for _, e := range entries {
		if r.excluded(e.Name()) {
			continue
		}
		kept = append(kept, e)
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].IsDir() != kept[j].IsDir() {
			return kept[i].IsDir()
		}
		return kept[i].Name() < kept[j].Name()
	})
	if len(kept) > maxTreeChildren {
		kept = kept[:maxTreeChildren]
	}

	var sb strings.Builder
	for i, e := range kept {
		last := i == len(kept)-1
		connector := "├── "
		childPrefix := prefix + "│   "
		if last {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		if e.IsDir() {
			fmt.Fprintf(&sb, "%s%s%s/\n", prefix, connector, e.Name())
			sb.WriteString(r.buildTree(filepath.Join(dir, e.Name()), childPrefix, depth+1))
		} else {
			fmt.Fprintf(&sb, "%s%s%s\n", prefix, connector, e.Name())
		}
	}
	return sb.String()
}

func (r *HTMLRenderer) excluded(name string) bool {
	for _, ex := range r.excludedDirs {
		if name == ex {
			return true
		}
	}
	return false
}

func codePage(relPath, code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
body { margin: 20px; background: #0d1117; font-family: monospace; }
pre { margin: 0; border-radius: 6px; padding: 16px; background: #161b22; color: #c9d1d9; font-size: 13px; line-height: 1.5; }
.file-header { color: #c9d1d9; font-size: 14px; margin-bottom: 10px; padding: 8px; background: #161b22; border-radius: 6px; }
</style>
</head>
<body>
<div class="file-header">%s</div>
<pre><code>%s</code></pre>
</body>
</html>
`, html.EscapeString(relPath), html.EscapeString(code))
}

func treePage(tree string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
body { background: #0d1117; color: #c9d1d9; font-family: monospace; padding: 20px; font-size: 14px; line-height: 1.6; }
pre { margin: 0; background: #161b22; padding: 16px; border-radius: 6px; }
.header { color: #58a6ff; font-size: 16px; margin-bottom: 12px; font-weight: bold; }
</style>
</head>
<body>
<div class="header">Project Structure</div>
<pre>%s</pre>
</body>
</html>
`, html.EscapeString(tree))
}
