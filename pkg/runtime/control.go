package runtime

// Signal tags the outcome of evaluating a node.
type Signal int

const (
	SignalValue Signal = iota
	SignalBreak
	SignalContinue
	SignalReturn
)

func (s Signal) String() string {
	switch s {
	case SignalValue:
		return "Runtime Value"
	case SignalBreak:
		return "Break Statement"
	case SignalContinue:
		return "Continue Statement"
	case SignalReturn:
		return "Return Statement"
	default:
		return "Unknown Signal"
	}
}

// ControlFlowResult is produced by every node evaluation and interpreted by the
// enclosing block, loop or call.
type ControlFlowResult struct {
	Signal Signal
	// Value is set for SignalValue and SignalReturn.
	Value Value
}

// Result wraps a plain value.
func Result(v Value) ControlFlowResult {
	return ControlFlowResult{Signal: SignalValue, Value: v}
}

// ReturnResult carries a value out of a function body.
func ReturnResult(v Value) ControlFlowResult {
	return ControlFlowResult{Signal: SignalReturn, Value: v}
}

var (
	BreakResult    = ControlFlowResult{Signal: SignalBreak}
	ContinueResult = ControlFlowResult{Signal: SignalContinue}
	VoidResult     = ControlFlowResult{Signal: SignalValue, Value: VoidValue{}}
)

// IsValue reports whether the result is a plain value.
func (r ControlFlowResult) IsValue() bool { return r.Signal == SignalValue }

// Interrupts reports whether the result stops the enclosing block.
func (r ControlFlowResult) Interrupts() bool { return r.Signal != SignalValue }

// Name describes the result for error messages.
func (r ControlFlowResult) Name() string { return r.Signal.String() }
