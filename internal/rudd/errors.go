// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package rudd

import "fmt"

// Error returns the error status of the BDD, or the empty string if there
// have been no errors.
func (b *engine) Error() string {
	if b.err == nil {
		return ""
	}
	return b.err.Error()
}

func (b *engine) seterror(format string, a ...interface{}) Node {
	if b.err != nil {
		format = format + "; " + b.err.Error()
	}
	b.err = fmt.Errorf(format, a...)
	return nil
}
