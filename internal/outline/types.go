// Package outline defines the documentation plan model and the planner that
// produces it from a codebase snapshot.
package outline

// Node is one proposed outline entry: a title plus its hierarchy depth and
// the images it wants. Nodes are immutable once the plan is finalized.
type Node struct {
	Title       string
	Level       int // 1 for main heading, 2 for subheading, etc.
	WantsImages bool
	ImageWants  []string // requested image descriptions, in order
}

// MediaItem is one requested image and, once allocated, the artifact path
// that satisfies it. An empty Path means the request went unresolved, which
// is a normal outcome when the screenshot budget runs out.
type MediaItem struct {
	Description string
	Path        string
}

// DiagramItem is one generated diagram: its description, the generated
// diagram source, and the rendered artifact path (empty if rendering
// failed).
type DiagramItem struct {
	Description string
	Source      string
	Path        string
}

// Section owns one Node's identity plus all mutable generation state. The
// writer sets Content and CodeFragments; the scheduler fills media and
// diagram items. Once handed to the assembler a Section is read-only.
type Section struct {
	Node

	Content       string
	CodeFragments []string
	MediaItems    []MediaItem
	DiagramItems  []DiagramItem
}

// NewSection creates the Section for a Node, with media slots seeded from
// the node's requested image descriptions.
func NewSection(n Node) *Section {
	s := &Section{Node: n}
	for _, desc := range n.ImageWants {
		s.MediaItems = append(s.MediaItems, MediaItem{Description: desc})
	}
	return s
}

// Plan is the finalized documentation blueprint: a document title and the
// ordered sections to generate.
type Plan struct {
	Title    string
	Sections []*Section
}

// ResolvedMediaCount returns how many media items across all sections have a
// resolved artifact path.
func (p *Plan) ResolvedMediaCount() int {
	n := 0
	for _, s := range p.Sections {
		for _, m := range s.MediaItems {
			if m.Path != "" {
				n++
			}
		}
	}
	return n
}

// ResolvedDiagramCount returns how many diagram items across all sections
// have a resolved artifact path.
func (p *Plan) ResolvedDiagramCount() int {
	n := 0
	for _, s := range p.Sections {
		for _, d := range s.DiagramItems {
			if d.Path != "" {
				n++
			}
		}
	}
	return n
}
