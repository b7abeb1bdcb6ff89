package board

// InterruptController models the save-and-disable / restore interruption
// primitive of the target. Restores must exactly reverse the preceding
// disable; unbalanced nesting is a programming error and panics.
type InterruptController struct {
	enabled bool
	depth   int
}

// NewInterruptController returns a controller with interruptions enabled.
func NewInterruptController() *InterruptController {
	return &InterruptController{enabled: true}
}

// SaveAndDisable disables interruptions and returns the prior state as a
// stash token.
func (ic *InterruptController) SaveAndDisable() uint32 {
	var stash uint32
	if ic.enabled {
		stash = 1
	}

	ic.enabled = false
	ic.depth++

	return stash
}

// Restore re-establishes the state captured by the matching SaveAndDisable.
func (ic *InterruptController) Restore(stash uint32) {
	if ic.depth == 0 {
		panic("board: interrupt restore without matching disable")
	}

	ic.depth--
	ic.enabled = stash != 0
}

// Enabled reports whether interruptions are currently enabled.
func (ic *InterruptController) Enabled() bool {
	return ic.enabled
}
