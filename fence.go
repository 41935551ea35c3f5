// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import "code.hybscloud.com/atomix"

// storeReleaseU64 publishes val to dst with store-release semantics: all
// prior stores on this goroutine become visible to any goroutine that
// subsequently observes val via a load-acquire on dst.
//
// On strongly-ordered architectures this collapses to a compiler barrier.
// On weakly-ordered architectures atomix emits the corresponding fence.
func storeReleaseU64(dst *atomix.Uint64, val uint64) {
	dst.StoreRelease(val)
}

// loadAcquireU64 reads dst with load-acquire semantics: no load that
// follows this call on this goroutine can be reordered before it.
func loadAcquireU64(src *atomix.Uint64) uint64 {
	return src.LoadAcquire()
}

// storeRelaxedU64 and loadRelaxedU64 perform plain atomic access with no
// ordering guarantee beyond single-word atomicity: a compiler barrier on
// every architecture, never a hardware fence. Reserve's fast path uses
// the same relaxed access, calling atomix.Uint64's methods directly;
// nothing in this package calls these two wrappers.
func storeRelaxedU64(dst *atomix.Uint64, val uint64) {
	dst.StoreRelaxed(val)
}

func loadRelaxedU64(src *atomix.Uint64) uint64 {
	return src.LoadRelaxed()
}
