package plugin

import (
	"fmt"

	"github.com/beartype/bearcheck/internal/bearcheck"
)

// FixtureFailure is the sentinel value a wrapped fixture yields instead of
// erroring when it violates its declared types. Erroring inside fixture
// setup would classify every dependent test as errored and bury the cause
// in runner internals; yielding the sentinel lets the test-call hook turn
// it into an ordinary failure of the test that requested the fixture, with
// the fixture named in the message.
type FixtureFailure struct {
	Fixture   string
	Violation *bearcheck.Violation
}

func (f *FixtureFailure) Error() string {
	return fmt.Sprintf("fixture %q failed type-checking: %v", f.Fixture, f.Violation)
}

func (f *FixtureFailure) Unwrap() error { return f.Violation }
