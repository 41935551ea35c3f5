// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package ring

// RaceEnabled is true when the race detector is active.
// Concurrent tests can trigger false positives under the race detector
// because it cannot see the happens-before relationship established by
// atomix's acquire/release atomics; this package's concurrent tests are
// excluded with a //go:build !race tag rather than by checking this constant.
const RaceEnabled = true
