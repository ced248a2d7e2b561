// Package testutil provides testing utilities for membuf.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Payloads
//
//	rng := testutil.NewRNG(seed)
//	payload := rng.Bytes(64)   // 64 pseudo-random bytes
//	rng.Fill(buf)              // overwrite buf in place
//
// # Recognizable Payloads
//
//	testutil.Pattern(10) // "0123456789"
package testutil
