package core

import "github.com/hashicorp/go-multierror"

// appendErr accumulates an error into an aggregate. Nil inputs are
// identity; nested aggregates are flattened so fan-out operations report a
// single flat list of failures.
func appendErr(result error, err error) error {
	if err == nil {
		return result
	}
	return multierror.Append(result, err)
}

// errOrNil collapses an aggregate to nil when it holds no errors, and to
// the raw error when it holds exactly one.
func errOrNil(result error) error {
	merr, ok := result.(*multierror.Error)
	if !ok {
		return result
	}
	if len(merr.Errors) == 1 {
		return merr.Errors[0]
	}
	return merr.ErrorOrNil()
}
