// Package errutil contains methods to simplify working with error
package errutil

import (
	"io"

	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
)

// Close closes the closer and, if err is nil, sets it to a close
// failure wrapped into the io-error taxonomy so it satisfies
// xerrors.Is(err, ginternals.ErrIoError) like every other failure
// returned by this core.
func Close(c io.Closer, err *error) {
	e := c.Close()
	if *err == nil && e != nil {
		*err = xerrors.Errorf("could not close: %w: %s", ginternals.ErrIoError, e)
	}
}
