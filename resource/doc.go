// Package resource accounts for memory reserved by octrees and throttles snapshot IO.
//
// A single Controller can be shared by many trees: each tree reserves the size of
// its node arena when it is created and releases it on Close. Snapshot transfers
// wait on the IO limiter and bound their parallel compression workers with the
// background slots.
package resource
