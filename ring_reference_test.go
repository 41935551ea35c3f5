// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring_test

import "sync"

// refRing is a mutex-guarded byte-FIFO oracle: a plain bounded byte
// queue with no cache-line concerns, used only to check the lock-free
// Ring's observable behavior, never its timing.
type refRing struct {
	mu   sync.Mutex
	data []byte
}

func newRefRing() *refRing {
	return &refRing{}
}

func (r *refRing) push(b []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, b...)
}

func (r *refRing) pop(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > len(r.data) {
		n = len(r.data)
	}
	out := append([]byte(nil), r.data[:n]...)
	r.data = r.data[n:]
	return out
}
