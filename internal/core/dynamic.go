package core

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/hashicorp/go-argmapper"
	"github.com/lseinc/vagrant/internal/ui"
)

// dynamicCall invokes a plugin-provided function, supplying every declared
// input by type or name from the given argument set. The caller appends its
// scope defaults before handing args over.
//
// If expected is a non-nil pointer sentinel such as (*int64)(nil) or
// (*plugin.Command)(nil), the returned value is checked against the
// pointed-to type; otherwise the raw value is returned as-is.
//
// The UI status indicator is closed on every return path so transient
// output never leaks past the invocation.
func dynamicCall(
	ctx context.Context,
	log *slog.Logger,
	u ui.UI,
	mappers []*argmapper.Func,
	expected interface{},
	f interface{},
	args ...argmapper.Arg,
) (interface{}, error) {
	// We allow f to be an *argmapper.Func already, since mapper components
	// hand those over directly.
	rawFunc, ok := f.(*argmapper.Func)
	if !ok {
		var err error
		rawFunc, err = argmapper.NewFunc(f)
		if err != nil {
			return nil, fmt.Errorf("preparing dynamic function: %w", err)
		}
	}

	// Be sure that the status is closed after every operation so we don't
	// leak transient output outside the normal execution.
	defer u.Status().Close()

	args = append(args,
		argmapper.ConverterFunc(mappers...),
		argmapper.Typed(ctx, log, u),
	)

	callResult := rawFunc.Call(args...)
	if err := callResult.Err(); err != nil {
		return nil, err
	}
	raw := callResult.Out(0)

	// If we don't have an expected result type, then just return as-is.
	// Otherwise, we need to verify the result type matches properly.
	if expected == nil {
		return raw, nil
	}

	expectedType := reflect.TypeOf(expected).Elem()
	rawType := reflect.TypeOf(raw)
	if expectedType.Kind() == reflect.Interface {
		if rawType == nil || !rawType.Implements(expectedType) {
			return nil, fmt.Errorf(
				"operation expected result type %s, got %T", expectedType.String(), raw)
		}
		return raw, nil
	}

	if rawType == nil || !rawType.AssignableTo(expectedType) {
		return nil, fmt.Errorf(
			"operation expected result type %s, got %T", expectedType.String(), raw)
	}
	return raw, nil
}
