// ABOUTME: Viewport manager for cursor-to-middle scrolling
// ABOUTME: Keeps the data set and point cursors visible in lists taller than the screen

package tui

// ViewportManager computes scroll offsets for a cursor in a list
// vim/less style: the cursor moves to the middle, then the content scrolls.
type ViewportManager struct {
	height     int // Viewport height in lines
	cursorPos  int // Current cursor position
	totalItems int // Total number of items
}

// NewViewportManager creates a new viewport manager
func NewViewportManager(height, cursorPos, totalItems int) *ViewportManager {
	return &ViewportManager{
		height:     height,
		cursorPos:  cursorPos,
		totalItems: totalItems,
	}
}

// ScrollPhase returns which scrolling phase the cursor is currently in
type ScrollPhase int

// Scroll phases: top (cursor moves), middle (content scrolls), bottom (cursor moves)
const (
	TopPhase ScrollPhase = iota
	MiddlePhase
	BottomPhase
)

// Phase returns the current scrolling phase
func (vm *ViewportManager) Phase() ScrollPhase {
	if vm.totalItems == 0 || vm.height < 1 {
		return TopPhase
	}

	middle := vm.height / 2
	if vm.cursorPos < middle {
		return TopPhase
	}

	if vm.cursorPos < vm.totalItems-vm.height+middle {
		return MiddlePhase
	}

	return BottomPhase
}

// CalculateOffset returns the index of the first visible item
func (vm *ViewportManager) CalculateOffset() int {
	switch vm.Phase() {
	case MiddlePhase:
		return vm.cursorPos - vm.height/2
	case BottomPhase:
		return max(0, vm.totalItems-vm.height)
	default:
		return 0
	}
}

// Window returns the half-open range of visible items
func (vm *ViewportManager) Window() (int, int) {
	start := vm.CalculateOffset()
	end := min(vm.totalItems, start+max(vm.height, 0))

	return start, end
}
