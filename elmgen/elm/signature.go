package elm

import (
	"errors"

	"github.com/jhickner/servant-elm/elmgen/elm/syntax"
)

// ErrEmptySignature is returned by BuildSignature when given no types.
var ErrEmptySignature = errors.New("elm: signature needs at least a result type")

// ResultType wraps t as the outcome of an HTTP task.
func ResultType(t syntax.Type) syntax.Type {
	return syntax.Con("Task.Task", syntax.Con("Http.Error"), t)
}

// BuildSignature folds argument types into a curried function type. The last
// element is the result type and becomes Task.Task Http.Error T; each earlier
// element is prepended as an argument. A single element yields the bare task
// type of a parameterless function.
func BuildSignature(argTypes []syntax.Type) (syntax.Type, error) {
	if len(argTypes) == 0 {
		return nil, ErrEmptySignature
	}
	last := len(argTypes) - 1
	sig := ResultType(argTypes[last])
	for i := last - 1; i >= 0; i-- {
		sig = &syntax.TFunc{From: argTypes[i], To: sig}
	}
	return sig, nil
}
