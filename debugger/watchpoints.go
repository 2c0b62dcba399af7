package debugger

import (
	"fmt"
	"sync"

	"github.com/tigrkoshka/karma/specs"
	"github.com/tigrkoshka/karma/vm"
)

// WatchType represents the type of watchpoint.
// NOTE: the current implementation can only detect value changes, not
// specific read/write operations. All watchpoint types behave the
// same way - they trigger when the monitored value differs from its
// previous value. True read-only or write-only tracking would require
// integration with Storage's memory access layer.
type WatchType int

const (
	WatchWrite     WatchType = iota // Trigger on write (currently same as WatchReadWrite)
	WatchRead                       // Trigger on read (currently same as WatchReadWrite)
	WatchReadWrite                  // Trigger on read or write (value change detection)
)

// Watchpoint represents a watchpoint for monitoring memory or
// register changes.
type Watchpoint struct {
	ID         int
	Type       WatchType
	Expression string     // Expression to watch (e.g., "r0", "[0x1000]", "myvar")
	Address    specs.Word // Resolved address for memory watchpoints
	IsRegister bool       // True if watching a register
	Register   specs.Register
	Enabled    bool
	LastValue  specs.Word
	HitCount   int
}

// WatchpointManager manages all watchpoints
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates a new watchpoint manager
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddWatchpoint adds a new watchpoint
func (wm *WatchpointManager) AddWatchpoint(wpType WatchType, expression string, address specs.Word, isRegister bool, register specs.Register) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Type:       wpType,
		Expression: expression,
		Address:    address,
		IsRegister: isRegister,
		Register:   register,
		Enabled:    true,
	}

	wm.watchpoints[wp.ID] = wp
	wm.nextID++

	return wp
}

// DeleteWatchpoint removes a watchpoint by ID
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	delete(wm.watchpoints, id)
	return nil
}

// EnableWatchpoint enables a watchpoint by ID
func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	wp.Enabled = true
	return nil
}

// DisableWatchpoint disables a watchpoint by ID
func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	wp.Enabled = false
	return nil
}

// GetWatchpoint gets a watchpoint by ID
func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	return wm.watchpoints[id]
}

// GetAllWatchpoints returns all watchpoints
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}

	return result
}

// CheckWatchpoints checks all watchpoints against machine and returns
// the first that has changed.
// NOTE: this uses value change detection, not true read/write
// tracking: the Type field is currently not enforced.
func (wm *WatchpointManager) CheckWatchpoints(machine *vm.Machine) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}

		var currentValue specs.Word
		var err error

		if wp.IsRegister {
			currentValue, err = machine.Storage().RReg(wp.Register, true)
		} else {
			currentValue, err = machine.Storage().RMem(wp.Address, true)
		}
		if err != nil {
			continue
		}

		if currentValue != wp.LastValue {
			wp.HitCount++
			wp.LastValue = currentValue
			return wp, true
		}
	}

	return nil, false
}

// InitializeWatchpoint captures the current value of a watchpoint so
// the next CheckWatchpoints call only fires on a genuine change.
func (wm *WatchpointManager) InitializeWatchpoint(id int, machine *vm.Machine) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	var value specs.Word
	var err error
	if wp.IsRegister {
		value, err = machine.Storage().RReg(wp.Register, true)
	} else {
		value, err = machine.Storage().RMem(wp.Address, true)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize watchpoint: %w", err)
	}

	wp.LastValue = value
	return nil
}

// Clear removes all watchpoints
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	return len(wm.watchpoints)
}
