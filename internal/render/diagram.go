package render

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	dferrors "git.home.luguber.info/inful/docforge/internal/errors"
)

// DiagramRenderer turns generated mermaid source into a browsable artifact.
// The source is kept next to an HTML wrapper that renders it client-side;
// the wrapper is the artifact path handed to the assembler.
type DiagramRenderer struct {
	outputDir string
}

// NewDiagramRenderer creates the renderer and its output directory.
func NewDiagramRenderer(outputDir string) (*DiagramRenderer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, dferrors.WrapError(err, dferrors.CategoryFileSystem, "creating diagram directory")
	}
	return &DiagramRenderer{outputDir: outputDir}, nil
}

// Render writes the diagram source and its wrapper. The name is slugged into
// a filesystem-safe stem.
func (d *DiagramRenderer) Render(source, name string) (string, error) {
	source = stripDiagramFence(source)
	if strings.TrimSpace(source) == "" {
		return "", dferrors.New(dferrors.CategoryRender, dferrors.SeverityWarning, "empty diagram source")
	}

	stem := slug(name)
	srcPath := filepath.Join(d.outputDir, stem+".mmd")
	if err := os.WriteFile(srcPath, []byte(source), 0o644); err != nil {
		return "", dferrors.WrapError(err, dferrors.CategoryRender, "writing diagram source")
	}

	wrapperPath := filepath.Join(d.outputDir, stem+".html")
	if err := os.WriteFile(wrapperPath, []byte(diagramPage(name, source)), 0o644); err != nil {
		return "", dferrors.WrapError(err, dferrors.CategoryRender, "writing diagram wrapper")
	}
	return wrapperPath, nil
}

// stripDiagramFence removes a surrounding markdown fence. Generated diagram
// source frequently arrives as a ```mermaid block.
func stripDiagramFence(source string) string {
	s := strings.TrimSpace(source)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func slug(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := strings.Trim(sb.String(), "_")
	if out == "" {
		out = "diagram"
	}
	return out
}

func diagramPage(title, source string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
<style>
body { background: #ffffff; font-family: sans-serif; padding: 20px; }
.header { font-size: 16px; margin-bottom: 12px; font-weight: bold; }
</style>
</head>
<body>
<div class="header">%s</div>
<pre class="mermaid">%s</pre>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(source))
}
