package expr

import (
	"math"
)

// MaxSlots bounds the number of slots an Engine will create. Setting slot k
// allocates every slot below k, so the bound keeps a stray index from
// allocating unbounded memory.
const MaxSlots = 1024

// emptyDiagnostic is the diagnostic of a slot that was created implicitly or
// cleared, and therefore never held an expression.
const emptyDiagnostic = "empty expression"

// State is the compile state of a slot: either [Compiled] or [Failed].
type State interface {
	isState()
}

// Compiled is the state of a slot whose text compiled successfully.
type Compiled struct {
	Program *Program
}

// Failed is the state of a slot without a usable program.
type Failed struct {
	Diagnostic string
	// Err is the compile error, nil for slots that were never set.
	Err *SyntaxError
}

func (Compiled) isState() {}
func (Failed) isState()   {}

// Slot is one indexed expression together with its compile state.
type Slot struct {
	Text  string
	State State
}

// Valid reports whether the slot holds a compiled program.
func (s Slot) Valid() bool {
	_, ok := s.State.(Compiled)
	return ok
}

// Program returns the compiled program, or nil when the slot is invalid.
func (s Slot) Program() *Program {
	if c, ok := s.State.(Compiled); ok {
		return c.Program
	}
	return nil
}

// Diagnostic returns the failure message, or "" when the slot is valid.
func (s Slot) Diagnostic() string {
	if f, ok := s.State.(Failed); ok {
		return f.Diagnostic
	}
	return ""
}

func emptySlot() Slot {
	return Slot{State: Failed{Diagnostic: emptyDiagnostic}}
}

// Engine holds indexed expression slots. The zero value is ready to use.
// It is not safe for concurrent use.
type Engine struct {
	slots []Slot
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{}
}

// SetExpression compiles text into slot index, replacing whatever the slot held.
// Slots below index that do not exist yet are created empty and invalid.
// It returns false when the text does not compile (the slot then holds the
// diagnostic) or when index is outside [0, MaxSlots).
func (e *Engine) SetExpression(index int, text string) bool {
	if index < 0 || index >= MaxSlots {
		return false
	}
	for len(e.slots) <= index {
		e.slots = append(e.slots, emptySlot())
	}
	prog, err := Compile(text)
	if err != nil {
		se, _ := err.(*SyntaxError)
		if se == nil {
			se = newSyntaxError(text, 0, err.Error())
		}
		e.slots[index] = Slot{Text: text, State: Failed{Diagnostic: se.Error(), Err: se}}
		return false
	}
	e.slots[index] = Slot{Text: text, State: Compiled{Program: prog}}
	return true
}

// Slot returns a copy of slot index and whether it exists.
func (e *Engine) Slot(index int) (Slot, bool) {
	if index < 0 || index >= len(e.slots) {
		return Slot{}, false
	}
	return e.slots[index], true
}

// Handle returns the compiled program of slot index. It fails with
// UNDEFINED_SLOT when the slot does not exist or is invalid.
func (e *Engine) Handle(index int) (*Program, error) {
	s, ok := e.Slot(index)
	if !ok || !s.Valid() {
		return nil, undefinedSlot(index)
	}
	return s.Program(), nil
}

// Evaluate evaluates slot index at x.
func (e *Engine) Evaluate(index int, x float64) (float64, error) {
	p, err := e.Handle(index)
	if err != nil {
		return math.NaN(), err
	}
	return p.Eval(x)
}

// EvaluateRange evaluates slot index at every element of xs. Failures and
// non-finite results become NaN; the call as a whole never fails.
func (e *Engine) EvaluateRange(index int, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	p, err := e.Handle(index)
	if err != nil {
		for i := range ys {
			ys[i] = math.NaN()
		}
		return ys
	}
	for i, x := range xs {
		v, err := p.Eval(x)
		if err != nil {
			v = math.NaN()
		}
		ys[i] = v
	}
	return ys
}

// IsValid reports whether slot index holds a compiled program.
func (e *Engine) IsValid(index int) bool {
	s, ok := e.Slot(index)
	return ok && s.Valid()
}

// Diagnostic returns the compile diagnostic of slot index, or "" for valid or
// nonexistent slots.
func (e *Engine) Diagnostic(index int) string {
	s, ok := e.Slot(index)
	if !ok {
		return ""
	}
	return s.Diagnostic()
}

// Expression returns the text last assigned to slot index.
func (e *Engine) Expression(index int) string {
	s, _ := e.Slot(index)
	return s.Text
}

// Len returns the number of slots, valid or not.
func (e *Engine) Len() int { return len(e.slots) }

// Clear resets slot index to the empty invalid state. The slot keeps its
// position so other indices are unaffected.
func (e *Engine) Clear(index int) {
	if index >= 0 && index < len(e.slots) {
		e.slots[index] = emptySlot()
	}
}

// Remove deletes slot index and shifts the following slots down by one.
func (e *Engine) Remove(index int) {
	if index >= 0 && index < len(e.slots) {
		e.slots = append(e.slots[:index], e.slots[index+1:]...)
	}
}

// ClearAll removes every slot.
func (e *Engine) ClearAll() {
	e.slots = nil
}

// Valid returns the indices of all valid slots in ascending order.
func (e *Engine) Valid() []int {
	var out []int
	for i, s := range e.slots {
		if s.Valid() {
			out = append(out, i)
		}
	}
	return out
}
