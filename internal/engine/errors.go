package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAnonymousDefine is returned by Define when no id is given and no source
// unit is being evaluated.
var ErrAnonymousDefine = errors.New("anonymous define outside of a module source")

// ProtocolViolationError reports a state transition the lifecycle forbids.
type ProtocolViolationError struct {
	ID     string
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("protocol violation for module '%s': %s", e.ID, e.Reason)
}

// FetchError reports that the source of a module could not be fetched.
type FetchError struct {
	ID      string
	Locator string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch module '%s' from %s: %v", e.ID, e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EvaluationError reports that a fetched source could not be evaluated.
type EvaluationError struct {
	ID      string
	Locator string
	Err     error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate module '%s' (%s): %v", e.ID, e.Locator, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// FactoryError reports that a module factory returned an error or panicked.
type FactoryError struct {
	ID  string
	Err error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("factory of module '%s' failed: %v", e.ID, e.Err)
}

func (e *FactoryError) Unwrap() error { return e.Err }

// DependencyError is delivered to an error callback when one of the
// requested modules failed. Err is the failed module's own error.
type DependencyError struct {
	ID  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency '%s' failed: %v", e.ID, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// NotReadyError is returned by a synchronous require of a module that is not
// Ready.
type NotReadyError struct {
	ID    string
	State string
}

func (e *NotReadyError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("module '%s' has not been loaded", e.ID)
	}
	return fmt.Sprintf("module '%s' is not ready (state: %s)", e.ID, e.State)
}

// UndefinedModuleError is recorded when a source unit finished evaluating
// without defining the module it was fetched for.
type UndefinedModuleError struct {
	ID      string
	Locator string
}

func (e *UndefinedModuleError) Error() string {
	return fmt.Sprintf("source %s did not define module '%s'", e.Locator, e.ID)
}

// IncompleteLoadError is returned by Load when the loop went idle while the
// requested modules were still unresolved.
type IncompleteLoadError struct {
	IDs        []string
	Unresolved []string
}

func (e *IncompleteLoadError) Error() string {
	return fmt.Sprintf("load of [%s] never completed; unresolved modules: [%s]",
		strings.Join(e.IDs, ", "), strings.Join(e.Unresolved, ", "))
}

func errNoEvaluator(ext string) error {
	return fmt.Errorf("no evaluator registered for extension %q", ext)
}
