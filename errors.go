// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates an operation that would otherwise block found no
// work to do. The blocking Reserve never returns it; it surfaces from the
// sink package's drain loop when a ring has nothing ready to consume.
//
// This is an alias for [iox.ErrWouldBlock], so iox's error helpers
// classify it.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal, not a failure.
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// ErrAllocationFailed wraps a failure to allocate a ring's backing
// storage. It is fatal to the ring under construction; the owning
// producer thread has no ring to log through until Build succeeds.
var ErrAllocationFailed = errors.New("ring: allocation failed")

// newAllocationError wraps cause with ErrAllocationFailed so callers can
// match it with errors.Is while still seeing the underlying reason.
func newAllocationError(cause error) error {
	return fmt.Errorf("%w: %v", ErrAllocationFailed, cause)
}
