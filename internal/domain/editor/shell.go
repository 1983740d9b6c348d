package editor

import (
	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// Shell is the editor presentation. Its value doubles as the draft mode.
type Shell = draft.Mode

const (
	ShellPage     = draft.ModePage
	ShellModal    = draft.ModeModal
	ShellGuided   = draft.ModeGuided
	ShellAdvanced = draft.ModeAdvanced
	ShellQuick    = draft.ModeQuick
)

// State is the shared editor state machine.
type State string

const (
	StateSelectingTemplate State = "selecting-template"
	StateEditing           State = "editing"
	StateSubmitting        State = "submitting"
	StateDone              State = "done"
)

const (
	// DefaultWizardStepSize is the number of blocks per wizard step.
	DefaultWizardStepSize = 3
	// DefaultQuickLogThreshold is the interaction count after which quick log nudges.
	DefaultQuickLogThreshold = 3
)

// Step is one slice of a template's blocks in the wizard.
type Step struct {
	Index    int      `json:"index"`
	BlockIDs []string `json:"blockIds"`
}

// wizard tracks step position. Steps already passed stay completed.
type wizard struct {
	steps     []Step
	current   int
	completed map[int]bool
}

func newWizard(tpl template.ActivityTemplate, size int) *wizard {
	if size <= 0 {
		size = DefaultWizardStepSize
	}
	w := &wizard{completed: make(map[int]bool)}
	for i := 0; i < len(tpl.Blocks); i += size {
		end := min(i+size, len(tpl.Blocks))
		step := Step{Index: len(w.steps)}
		for _, b := range tpl.Blocks[i:end] {
			step.BlockIDs = append(step.BlockIDs, b.ID)
		}
		w.steps = append(w.steps, step)
	}
	return w
}

func (w *wizard) last() bool {
	return w.current >= len(w.steps)-1
}

// Tab groups blocks in the advanced editor.
type Tab struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var (
	tabBasics  = Tab{Key: "basics", Label: "Basics"}
	tabDetails = Tab{Key: "details", Label: "Details"}
	tabContext = Tab{Key: "context", Label: "Context"}
	tabExtras  = Tab{Key: "extras", Label: "Extras"}

	tabOrder = []Tab{tabBasics, tabDetails, tabContext, tabExtras}
)

func tabFor(bt template.BlockType) Tab {
	switch bt {
	case template.BlockTitle, template.BlockTime, template.BlockSubcategory:
		return tabBasics
	case template.BlockMeasurement, template.BlockRating, template.BlockPortion, template.BlockTimer, template.BlockChecklist:
		return tabDetails
	case template.BlockLocation, template.BlockWeather, template.BlockPeople:
		return tabContext
	default:
		return tabExtras
	}
}

type tabGroup struct {
	tab    Tab
	blocks []template.BlockDef
}

// groupTabs splits blocks into non-empty tabs in tab order, keeping template order within each.
func groupTabs(blocks []template.BlockDef) []tabGroup {
	byKey := make(map[string][]template.BlockDef)
	for _, b := range blocks {
		t := tabFor(b.Type)
		byKey[t.Key] = append(byKey[t.Key], b)
	}
	var out []tabGroup
	for _, t := range tabOrder {
		if bs := byKey[t.Key]; len(bs) > 0 {
			out = append(out, tabGroup{tab: t, blocks: bs})
		}
	}
	return out
}
