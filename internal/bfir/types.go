// Package bfir defines the intermediate representation for bfc: the
// tagged instruction tree produced by the parser, consumed and
// produced by every peephole pass, and finally walked by the code
// generator.
package bfir

import "fmt"

// Position is a half-open byte range [Start, End) into the original
// source buffer. It exists for diagnostics and so that merging
// adjacent instructions (combine_increments et al.) can preserve
// provenance instead of pointing at a single collapsed instruction.
type Position struct {
	Start, End int
}

// Union returns the smallest Position spanning both p and other. Used
// when two instructions are coalesced into one.
func (p Position) Union(other Position) Position {
	start, end := p.Start, p.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Position{Start: start, End: end}
}

// Cell is an 8-bit value with wrap-around semantics. Go's unsigned
// integer arithmetic already wraps modulo 2^8, so ordinary + and -
// on Cell are the wrapping operations the spec calls for; there is no
// need for a distinct Wrapping wrapper type as the original Rust does.
type Cell uint8

// NegCell returns the Cell representing -n, i.e. the additive inverse
// of n modulo 256. Used to turn a BF '-' into Increment{Amount: NegCell(1)}.
func NegCell(n uint8) Cell {
	return Cell(-n)
}

// Instruction is the closed sum of the seven IR node kinds. It is
// implemented by exactly the types in this file; instrNode is
// unexported so no other package can add a variant, matching the
// "closed sum, exhaustive pattern match" requirement in a language
// without native sum types. Passes switch on the concrete type and
// should have a `default: panic("bfir: unhandled Instruction variant")`
// arm so that adding an eighth variant is a loud failure, not a silent
// no-op.
type Instruction interface {
	instrNode()
}

// Increment adds Amount to the cell at ptr+Offset.
type Increment struct {
	Amount Cell
	Offset int
	Pos    Position
}

func (Increment) instrNode() {}

// PointerIncrement moves the tape pointer by Amount (may be negative).
type PointerIncrement struct {
	Amount int
	Pos    Position
}

func (PointerIncrement) instrNode() {}

// Read reads one byte from stdin into the current cell. EOF yields 0.
type Read struct {
	Pos Position
}

func (Read) instrNode() {}

// Write writes the current cell to stdout.
type Write struct {
	Pos Position
}

func (Write) instrNode() {}

// Loop executes Body while the current cell is nonzero.
type Loop struct {
	Body []Instruction
	Pos  Position
}

func (Loop) instrNode() {}

// Set overwrites the cell at ptr+Offset with Amount. Synthetic: never
// produced by the parser, only by peephole passes.
type Set struct {
	Amount Cell
	Offset int
}

func (Set) instrNode() {}

// MultiplyMove atomically multiplies the current cell's value into
// each target cell and zeros the source. Targets never contains key 0
// (the source cell is implicit). Synthetic: introduced only by
// extract_multiply.
type MultiplyMove struct {
	Targets map[int]Cell
}

func (MultiplyMove) instrNode() {}

// String renders an instruction tree one instruction per line, with
// nested loop bodies indented — used by --dump-ir and by test failure
// messages.
func String(instrs []Instruction) string {
	var out []byte
	for _, instr := range instrs {
		out = appendIndented(out, instr, 0)
	}
	return string(out)
}

func appendIndented(out []byte, instr Instruction, indent int) []byte {
	for i := 0; i < indent; i++ {
		out = append(out, ' ', ' ')
	}
	switch i := instr.(type) {
	case Increment:
		out = append(out, fmt.Sprintf("Increment{amount:%d, offset:%d}\n", int8(i.Amount), i.Offset)...)
	case PointerIncrement:
		out = append(out, fmt.Sprintf("PointerIncrement{%d}\n", i.Amount)...)
	case Read:
		out = append(out, "Read\n"...)
	case Write:
		out = append(out, "Write\n"...)
	case Set:
		out = append(out, fmt.Sprintf("Set{amount:%d, offset:%d}\n", int8(i.Amount), i.Offset)...)
	case MultiplyMove:
		out = append(out, fmt.Sprintf("MultiplyMove%v\n", i.Targets)...)
	case Loop:
		out = append(out, "Loop\n"...)
		for _, body := range i.Body {
			out = appendIndented(out, body, indent+1)
		}
	default:
		panic("bfir: unhandled Instruction variant in String")
	}
	return out
}

// Unparse renders instrs back to BF source text. It only needs to
// handle the four parser-producible variants plus Loop; Set and
// MultiplyMove never appear in a freshly parsed tree, so Unparse
// panics on them — it exists for the parse/print round-trip property
// (spec.md §8.1), not as a general-purpose pretty printer.
func Unparse(instrs []Instruction) string {
	var out []byte
	for _, instr := range instrs {
		switch i := instr.(type) {
		case Increment:
			if i.Amount == 1 {
				out = append(out, '+')
			} else {
				out = append(out, '-')
			}
		case PointerIncrement:
			if i.Amount > 0 {
				for n := 0; n < i.Amount; n++ {
					out = append(out, '>')
				}
			} else {
				for n := 0; n < -i.Amount; n++ {
					out = append(out, '<')
				}
			}
		case Read:
			out = append(out, ',')
		case Write:
			out = append(out, '.')
		case Loop:
			out = append(out, '[')
			out = append(out, Unparse(i.Body)...)
			out = append(out, ']')
		default:
			panic("bfir: Unparse does not support synthetic instructions")
		}
	}
	return string(out)
}

// Count returns the total number of instructions in the tree,
// counting a Loop as one plus its body (used by the size-non-increase
// property, §8.3).
func Count(instrs []Instruction) int {
	n := 0
	for _, instr := range instrs {
		n++
		if loop, ok := instr.(Loop); ok {
			n += Count(loop.Body)
		}
	}
	return n
}

// Equal reports whether two instruction sequences are structurally
// identical, including Position — this is the whole-tree comparison
// the fixed-point driver (internal/optimize) uses to detect
// convergence. It is O(size) per call but the driver calls it once per
// round, giving the documented O(size^2) worst case; see DESIGN.md.
func Equal(a, b []Instruction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalInstr(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalInstr(a, b Instruction) bool {
	switch x := a.(type) {
	case Increment:
		y, ok := b.(Increment)
		return ok && x.Amount == y.Amount && x.Offset == y.Offset && x.Pos == y.Pos
	case PointerIncrement:
		y, ok := b.(PointerIncrement)
		return ok && x.Amount == y.Amount && x.Pos == y.Pos
	case Read:
		y, ok := b.(Read)
		return ok && x.Pos == y.Pos
	case Write:
		y, ok := b.(Write)
		return ok && x.Pos == y.Pos
	case Set:
		y, ok := b.(Set)
		return ok && x.Amount == y.Amount && x.Offset == y.Offset
	case MultiplyMove:
		y, ok := b.(MultiplyMove)
		if !ok || len(x.Targets) != len(y.Targets) {
			return false
		}
		for k, v := range x.Targets {
			if yv, ok := y.Targets[k]; !ok || yv != v {
				return false
			}
		}
		return true
	case Loop:
		y, ok := b.(Loop)
		return ok && x.Pos == y.Pos && Equal(x.Body, y.Body)
	default:
		panic("bfir: unhandled Instruction variant in Equal")
	}
}

// Clone returns a deep copy of instrs. Passes are value-semantic (each
// returns a fresh tree) but MultiplyMove carries a map, which Go
// aliases by reference; Clone is used wherever a pass needs to mutate
// a Targets map without corrupting the input tree.
func Clone(instrs []Instruction) []Instruction {
	out := make([]Instruction, len(instrs))
	for i, instr := range instrs {
		out[i] = cloneInstr(instr)
	}
	return out
}

func cloneInstr(instr Instruction) Instruction {
	switch i := instr.(type) {
	case Loop:
		return Loop{Body: Clone(i.Body), Pos: i.Pos}
	case MultiplyMove:
		targets := make(map[int]Cell, len(i.Targets))
		for k, v := range i.Targets {
			targets[k] = v
		}
		return MultiplyMove{Targets: targets}
	default:
		return instr
	}
}
