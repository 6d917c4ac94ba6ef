package bindgen

import (
	"fmt"
)

// DuplicateImportError occurs when two declarations register under the
// same import name.
type DuplicateImportError struct {
	Name   string
	First  int
	Second int
}

func (e *DuplicateImportError) Error() string {
	return fmt.Sprintf("import '%s' is declared twice (declarations %d and %d)",
		e.Name, e.First, e.Second)
}

// DuplicateTrampolineError occurs when two declarations name the same
// native function, so both would generate the same trampoline.
type DuplicateTrampolineError struct {
	Name   string
	Native string
	First  string
	Second string
}

func (e *DuplicateTrampolineError) Error() string {
	return fmt.Sprintf("declarations '%s' and '%s' both bind native '%s' (trampoline '%s')",
		e.First, e.Second, e.Native, e.Name)
}

// InvalidNativeNameError occurs when a native name cannot be called from
// the generated host file.
type InvalidNativeNameError struct {
	Declaration string
	Native      string
	Reason      string
}

func (e *InvalidNativeNameError) Error() string {
	return fmt.Sprintf("native '%s' of declaration '%s' is unusable: %s",
		e.Native, e.Declaration, e.Reason)
}
