package governor

import (
	"time"

	"git.home.luguber.info/inful/docforge/internal/config"
)

// Category identifies the kind of generative request being paced. It is a
// closed enumeration with a total delay lookup, so an unconfigured category
// is a compile-time error rather than a silent default.
type Category int

const (
	CategoryPlan Category = iota
	CategorySectionContent
	CategoryScreenshotTargeting
	CategoryDiagram
)

// String returns the category name used in logs, metrics, and the journal.
func (c Category) String() string {
	switch c {
	case CategoryPlan:
		return "plan"
	case CategorySectionContent:
		return "section-content"
	case CategoryScreenshotTargeting:
		return "screenshot-targeting"
	case CategoryDiagram:
		return "diagram"
	default:
		return "unknown"
	}
}

// Delays holds the per-category minimum inter-request delay. Categories are
// tuned independently so cheap call types are not slowed down by expensive
// ones.
type Delays struct {
	Plan       time.Duration
	Section    time.Duration
	Screenshot time.Duration
	Diagram    time.Duration
}

// DelaysFromConfig converts configured second counts into typed delays.
func DelaysFromConfig(g config.GovernorConfig) Delays {
	return Delays{
		Plan:       time.Duration(g.PlanDelaySeconds) * time.Second,
		Section:    time.Duration(g.SectionDelaySeconds) * time.Second,
		Screenshot: time.Duration(g.ScreenshotDelaySeconds) * time.Second,
		Diagram:    time.Duration(g.DiagramDelaySeconds) * time.Second,
	}
}

// For returns the delay for a category. The switch is exhaustive over the
// enumeration above.
func (d Delays) For(c Category) time.Duration {
	switch c {
	case CategoryPlan:
		return d.Plan
	case CategorySectionContent:
		return d.Section
	case CategoryScreenshotTargeting:
		return d.Screenshot
	case CategoryDiagram:
		return d.Diagram
	default:
		return 0
	}
}
