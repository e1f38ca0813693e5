// Package assert provides hard precondition checks. A failed check is a programmer error and
// panics; callers are expected to guard with liveness checks before mutating.
package assert

import "fmt"

func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
