package writer

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Sentinels the generation prompt asks the model to wrap code examples in.
// Models use them inconsistently, so fenced markdown blocks are extracted
// too.
const (
	codeBlockStart = "CODE_BLOCK_START"
	codeBlockEnd   = "CODE_BLOCK_END"
)

// ExtractCodeFragments pulls code examples out of generated section prose.
// Fenced markdown blocks are found by walking the goldmark AST; sentinel
// delimited blocks by a line scan. The prose itself is left untouched, so a
// fragment can appear both inline and in the returned list; the assembler
// resolves that duplication.
func ExtractCodeFragments(content string) []string {
	var fragments []string
	fragments = append(fragments, fencedBlocks(content)...)
	fragments = append(fragments, sentinelBlocks(content)...)
	return fragments
}

func fencedBlocks(content string) []string {
	source := []byte(content)
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	var blocks []string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch n.Kind() {
		case gmast.KindFencedCodeBlock, gmast.KindCodeBlock:
			var sb strings.Builder
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(source))
			}
			if block := strings.TrimRight(sb.String(), "\n"); block != "" {
				blocks = append(blocks, block)
			}
		}
		return gmast.WalkContinue, nil
	})
	return blocks
}

func sentinelBlocks(content string) []string {
	var blocks []string
	var current []string
	inBlock := false

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.Contains(line, codeBlockStart):
			inBlock = true
			current = nil
		case strings.Contains(line, codeBlockEnd):
			if inBlock && len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
			}
			inBlock = false
			current = nil
		case inBlock:
			current = append(current, line)
		}
	}
	return blocks
}
