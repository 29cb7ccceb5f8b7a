// Package regalloc implements the register manager of spec.md §4.6: the
// eight 32-bit general-purpose x86 registers, allocation by id, the
// "ever used" set for prologue/epilogue save-restore, and width-aware name
// resolution so a value's width can change without changing "which register"
// it lives in.
package regalloc

import (
	"cc32/pkg/diag"
	"cc32/pkg/token"
)

// Id identifies one of the eight general registers, matching the x86
// ModRM register field encoding (eax=0 .. edi=7), the same ordering
// davy-yusuke-gasm's x86_64 encoder uses for its register name table.
type Id int

const (
	EAX Id = iota
	ECX
	EDX
	EBX
	ESP
	EBP
	ESI
	EDI

	numRegisters = 8
	// ReturnRegister is the id of the cdecl return-value register.
	ReturnRegister = EAX
)

// names[width][id] gives the register name at that width. Width 1 is only
// addressable for EAX..EBX (ids 0..3); AH/CH/DH/BH-style high-byte aliases
// are deliberately not modeled, matching spec.md §4.6's restriction.
var names = map[int][numRegisters]string{
	4: {"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"},
	2: {"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"},
	1: {"al", "cl", "dl", "bl", "", "", "", ""},
}

// Name returns the assembly name of register id at the given width in
// bytes (1, 2, or 4). It fails InvalidTypeCast if id is not addressable at
// that width (narrowing ESP..EDI to one byte).
func Name(id Id, width int, loc token.Location) (string, error) {
	row, ok := names[width]
	if !ok {
		return "", diag.New(diag.InvalidTypeCast, loc, "no %d-byte register name for register id %d", width, id)
	}
	n := row[id]
	if n == "" {
		return "", diag.New(diag.InvalidTypeCast, loc, "register %s is not addressable at 1 byte", names[4][id])
	}
	return n, nil
}

// Allocation is an opaque handle to a live register allocation. The
// generator changes a value's width by re-resolving the same allocation's
// name at a new width; the allocation's identity (and thus "which register")
// never changes.
type Allocation struct {
	id Id
}

// Id reports the concrete register this allocation currently occupies.
func (a Allocation) Id() Id { return a.id }

// Manager tracks which of the eight registers are currently allocated and
// which were ever used during the current function, for prologue/epilogue
// save-restore. ESP and EBP are never allocated.
type Manager struct {
	held [numRegisters]bool
	used [numRegisters]bool
}

// NewManager returns a Manager with no registers held.
func NewManager() *Manager {
	return &Manager{}
}

func allocatable(id Id) bool { return id != ESP && id != EBP }

// CalleeSaved reports whether id must be preserved across a call under
// cdecl (spec.md §4.5): EBX, ESI, and EDI survive a call and so must be
// saved by the function that clobbers them; EAX, ECX, and EDX are
// volatile and never need prologue/epilogue preservation.
func CalleeSaved(id Id) bool {
	return id == EBX || id == ESI || id == EDI
}

// Allocate finds a free register, marks it held and ever-used, and returns
// an allocation handle. Fails OutOfRegisters when none is free.
func (m *Manager) Allocate(loc token.Location) (Allocation, error) {
	for id := Id(0); id < numRegisters; id++ {
		if allocatable(id) && !m.held[id] {
			m.held[id] = true
			m.used[id] = true
			return Allocation{id: id}, nil
		}
	}
	return Allocation{}, diag.New(diag.OutOfRegisters, loc, "no free registers available")
}

// Require forces allocation of a specific register id. If that id is
// currently held by another allocation, the old holder is transparently
// reallocated to a new free id; the caller is responsible for emitting the
// `mov` that preserves its value and is told which id it moved to via
// displacedTo (-1 if nothing was displaced).
func (m *Manager) Require(id Id, loc token.Location) (alloc Allocation, displacedTo Id, err error) {
	if !m.held[id] {
		m.held[id] = true
		m.used[id] = true
		return Allocation{id: id}, -1, nil
	}

	newAlloc, err := m.allocateExcluding(id, loc)
	if err != nil {
		return Allocation{}, -1, err
	}
	// The previous occupant of id now lives at newAlloc.id; id itself
	// remains held, now on behalf of the caller's new allocation.
	m.held[newAlloc.id] = true
	m.used[newAlloc.id] = true
	m.used[id] = true
	return Allocation{id: id}, newAlloc.id, nil
}

func (m *Manager) allocateExcluding(exclude Id, loc token.Location) (Allocation, error) {
	for id := Id(0); id < numRegisters; id++ {
		if id == exclude || !allocatable(id) || m.held[id] {
			continue
		}
		return Allocation{id: id}, nil
	}
	return Allocation{}, diag.New(diag.OutOfRegisters, loc, "no free registers available to displace register %d", exclude)
}

// GetReturnRegister is Require tailored to return-value sequencing
// (spec.md §4.5 step 4): it always targets EAX.
func (m *Manager) GetReturnRegister(loc token.Location) (alloc Allocation, displacedTo Id, err error) {
	return m.Require(ReturnRegister, loc)
}

// Free releases a held allocation. Idempotent: freeing an id that is not
// currently held is a no-op, matching the Value-level contract where
// non-register values are freed unconditionally.
func (m *Manager) Free(a Allocation) {
	m.held[a.id] = false
}

// ResetUsed clears the per-function ever-used set. Called at the start of
// each function's code generation.
func (m *Manager) ResetUsed() {
	m.used = [numRegisters]bool{}
}

// Used returns the ids that were ever allocated during the current
// function, in ascending id order, for prologue push / epilogue pop.
func (m *Manager) Used() []Id {
	var ids []Id
	for id := Id(0); id < numRegisters; id++ {
		if m.used[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// UsedCalleeSaved is Used filtered to the registers that actually need
// prologue/epilogue preservation under cdecl.
func (m *Manager) UsedCalleeSaved() []Id {
	var ids []Id
	for _, id := range m.Used() {
		if CalleeSaved(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// LiveCount reports how many registers are currently held. Used by tests to
// check that Free releases an allocation.
func (m *Manager) LiveCount() int {
	n := 0
	for _, h := range m.held {
		if h {
			n++
		}
	}
	return n
}
