package cfr

import "fmt"

// Category distinguishes the four kinds of failure a solver run can hit,
// per the error taxonomy: invariant violations and numerical failures are
// programmer/data bugs, I/O is recoverable at the driver boundary, and
// Interrupted is not an error at all but a clean-shutdown signal.
type Category uint8

const (
	FaultInvariant Category = iota
	FaultNumerical
	FaultIO
	FaultInterrupted
)

func (c Category) String() string {
	switch c {
	case FaultInvariant:
		return "invariant"
	case FaultNumerical:
		return "numerical"
	case FaultIO:
		return "io"
	case FaultInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Fault wraps an underlying error with a Category so driver code can decide
// retry-vs-fatal with a type switch instead of string matching.
type Fault struct {
	Category Category
	Context  string
	Err      error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Category, f.Context)
	}
	return fmt.Sprintf("%s: %s: %v", f.Category, f.Context, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Invariantf builds a FaultInvariant for a domain invariant violation, e.g.
// Apply on an illegal edge or Payoff on a non-terminal node.
func Invariantf(format string, args ...any) error {
	return &Fault{Category: FaultInvariant, Context: fmt.Sprintf(format, args...)}
}

// Numericalf builds a FaultNumerical for a NaN/non-finite value escaping a
// schedule computation.
func Numericalf(format string, args ...any) error {
	return &Fault{Category: FaultNumerical, Context: fmt.Sprintf(format, args...)}
}

// IOErrorf wraps an I/O failure (sink/source) as a FaultIO. Nothing in this
// module retries it: a FaultIO that reaches cmd/solver ends the command
// like any other error.
func IOErrorf(err error, format string, args ...any) error {
	return &Fault{Category: FaultIO, Context: fmt.Sprintf(format, args...), Err: err}
}

// Interrupted builds the FaultInterrupted sentinel signalling clean
// shutdown; callers should not log it as an error.
func Interrupted() error {
	return &Fault{Category: FaultInterrupted, Context: "interrupt requested"}
}

// IsInterrupted reports whether err is (or wraps) the Interrupted fault.
func IsInterrupted(err error) bool {
	var f *Fault
	if !asFault(err, &f) {
		return false
	}
	return f.Category == FaultInterrupted
}

func asFault(err error, target **Fault) bool {
	for err != nil {
		if f, ok := err.(*Fault); ok {
			*target = f
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
