//go:build !unix

package process

import "errors"

var errPriorityUnsupported = errors.New("process priority hints are not supported on this platform")

func setPriority(int, int) error {
	return errPriorityUnsupported
}
