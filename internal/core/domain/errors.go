package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Resolution and registration errors. ErrInvalidCredentials deliberately uses
// one message for both "unknown name" and "wrong secret" so callers cannot
// tell which case occurred.
var (
	ErrNeedsCredentials   = errors.New("credentials needed")
	ErrInvalidCredentials = errors.New("invalid name or PIN")
	ErrRateLimited        = errors.New("please wait before registering again")
	ErrInvalidName        = errors.New("please enter a valid name")
	ErrWeakSecret         = errors.New("PIN must be at least 4 characters")
	ErrNameTaken          = errors.New("this name is already taken")
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// PartialClearError reports an administrative clear that succeeded on some
// collections and failed on others. Cleared collections stay cleared.
type PartialClearError struct {
	Cleared []string
	Failed  map[string]error
}

func (e *PartialClearError) Error() string {
	failed := make([]string, 0, len(e.Failed))
	for name := range e.Failed {
		failed = append(failed, name)
	}
	sort.Strings(failed)
	return fmt.Sprintf("clear failed for collections [%s], cleared [%s]",
		strings.Join(failed, ", "), strings.Join(e.Cleared, ", "))
}
