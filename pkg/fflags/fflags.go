// Package fflags manages optional strictness features of the ledger
// harness.
//
// The feature mechanism lets a test scenario toggle behavior that a
// real validator gates behind protocol features, without threading
// booleans through every component.
package fflags

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
)

// Feature is an opaque handle to a feature flag.
type Feature uint

type featureInfo struct {
	handle Feature
	name   string
	gate   [32]byte
}

// seq is the sequence number for allocating feature flag IDs.
// Zero is the sentinel value.
var seq Feature

// featureMap maps feature handle numbers to feature gate addresses.
var featureMap = make(map[Feature]featureInfo)

// gateIndex maps gate addresses back to handles for idempotent Register.
var gateIndex = make(map[[32]byte]Feature)

// GateAddress derives a stable 32-byte gate address from a feature
// name, so harness-local features have addresses without an on-chain
// registry.
func GateAddress(name string) [32]byte {
	return sha256.Sum256([]byte("banksim-feature:" + name))
}

// Register creates a new application-wide feature flag for the given
// gate address and returns an opaque handle. Idempotent, such that the
// same gate address can be registered twice, returning the same handle.
// Not thread-safe -- should only be called from the init/main goroutine.
func Register(gate [32]byte, name string) Feature {
	if handle, ok := gateIndex[gate]; ok {
		return handle
	}
	seq++
	featureMap[seq] = featureInfo{
		handle: seq,
		name:   name,
		gate:   gate,
	}
	gateIndex[gate] = seq
	return seq
}

// Name returns the registered name of a feature, or the base58 gate
// address if the feature has no name.
func Name(flag Feature) string {
	info, ok := featureMap[flag]
	if !ok {
		panic("invalid feature flag handle")
	}
	if info.name != "" {
		return info.name
	}
	return base58.Encode(info.gate[:])
}

// Features is a set of feature flags.
type Features struct {
	buckets []uint32
}

func (s *Features) set(idx uint, v uint) {
	if idx == 0 || idx > uint(seq) {
		panic("invalid feature flag handle")
	}
	bucket := int(idx / 32)
	if bucket >= len(s.buckets) {
		s.buckets = append(s.buckets, make([]uint32, bucket-len(s.buckets)+1)...)
	}
	if v == 1 {
		s.buckets[bucket] |= 1 << (idx % 32)
	} else if v == 0 {
		s.buckets[bucket] &= ^(1 << (idx % 32))
	} else {
		panic("invalid bit value; valid values are 0 and 1")
	}
}

// HasFeature returns true if the given feature flag is set.
// Panics on invalid handle, or if the expected bucket for the given
// feature has not yet been created via enablement using WithFeature or
// disablement using WithoutFeature.
func (s *Features) HasFeature(flag Feature) bool {
	bucket := uint(flag) / 32
	if flag == 0 || flag > seq {
		panic("invalid feature flag handle")
	} else if int(bucket) >= len(s.buckets) {
		panic("no bucket for feature: missing WithFeature or WithoutFeature")
	}
	return s.buckets[bucket]&(1<<(uint(flag)%32)) != 0
}

// WithFeature modifies s to include the given feature flag.
// Returns s to support chaining-style syntax. Panics on invalid handle.
func (s *Features) WithFeature(flag Feature) *Features {
	s.set(uint(flag), 1)
	return s
}

// WithoutFeature modifies s to exclude the given feature flag.
// Returns s to support chaining-style syntax. Panics on invalid handle.
func (s *Features) WithoutFeature(flag Feature) *Features {
	s.set(uint(flag), 0)
	return s
}

// Clone creates a copy of s.
func (s *Features) Clone() *Features {
	c := new(Features)
	c.buckets = make([]uint32, len(s.buckets))
	copy(c.buckets, s.buckets)
	return c
}
