package state

// ModuleState is an opaque value owned by exactly one module. The engine
// never inspects its contents; it only stores and retrieves it by slot
// index. A nil ModuleState is valid and means the module is stateless.
type ModuleState any

// CloneableState is the optional deep-copy capability for module states.
// States that do not implement it are shared by reference when the owning
// model state is cloned — a documented limitation, not an error.
type CloneableState interface {
	CloneModuleState() ModuleState
}

// cloneModuleState deep-copies a module state when it knows how.
func cloneModuleState(ms ModuleState) ModuleState {
	if c, ok := ms.(CloneableState); ok {
		return c.CloneModuleState()
	}
	return ms
}

// ModelState aggregates one cogxel store, the array of module-state slots,
// the latest external input, and an initialization flag. The slot array
// length must equal the owning driver's module count; drivers reject states
// that violate this on attachment.
type ModelState struct {
	cogxels      *CogxelState
	moduleStates []ModuleState
	input        any
	initialized  bool
}

// NewModelState allocates an empty, uninitialized model state with
// moduleCount module-state slots.
func NewModelState(moduleCount int) *ModelState {
	return &ModelState{
		cogxels:      NewCogxelState(),
		moduleStates: make([]ModuleState, moduleCount),
	}
}

// Cogxels returns the shared cogxel store.
func (m *ModelState) Cogxels() *CogxelState { return m.cogxels }

// NumSlots returns the length of the module-state slot array.
func (m *ModelState) NumSlots() int { return len(m.moduleStates) }

// ModuleState returns the state in the given slot.
func (m *ModelState) ModuleState(slot int) ModuleState { return m.moduleStates[slot] }

// SetModuleState stores a module's state in its slot. Not a deep operation.
func (m *ModelState) SetModuleState(slot int, ms ModuleState) { m.moduleStates[slot] = ms }

// Input returns the last external input stored on this state.
func (m *ModelState) Input() any { return m.input }

// SetInput stores the external input for the current tick.
func (m *ModelState) SetInput(input any) { m.input = input }

// Initialized reports whether each module has been asked once for its
// initial state.
func (m *ModelState) Initialized() bool { return m.initialized }

// SetInitialized marks the state as initialized. The driver owns
// initialization; see the driver's InitializeCognitiveState.
func (m *ModelState) SetInitialized(v bool) { m.initialized = v }

// Clear empties the cogxel store, nulls every module-state slot, clears the
// input, and resets the initialized flag. The slot array's length is
// unchanged.
func (m *ModelState) Clear() {
	m.cogxels.Clear()
	for i := range m.moduleStates {
		m.moduleStates[i] = nil
	}
	m.input = nil
	m.initialized = false
}

// Clone deep-copies the cogxel store and clones every non-nil module-state
// slot that implements CloneableState; the rest are shared by reference.
// The input is shared, not copied.
func (m *ModelState) Clone() *ModelState {
	clone := &ModelState{
		cogxels:      m.cogxels.Clone(),
		moduleStates: make([]ModuleState, len(m.moduleStates)),
		input:        m.input,
		initialized:  m.initialized,
	}
	for i, ms := range m.moduleStates {
		if ms != nil {
			clone.moduleStates[i] = cloneModuleState(ms)
		}
	}
	return clone
}
