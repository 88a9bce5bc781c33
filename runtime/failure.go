package runtime

import (
	"boardroom/contract"
	"boardroom/domain/event"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// fail emits the terminal error record and hands err back to the caller.
func fail(sink contract.EventSink, err error) error {
	if _, emitErr := sink.Emit(event.Error{Message: err.Error(), Detail: detail(err)}); emitErr != nil {
		return errors.Join(err, emitErr)
	}
	return err
}

// detail renders the error chain followed by the current goroutine stack.
func detail(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		fmt.Fprintf(&b, "%s%T: %s\n", strings.Repeat("  ", depth), err, err.Error())
		err = errors.Unwrap(err)
	}
	b.Write(debug.Stack())
	return b.String()
}
