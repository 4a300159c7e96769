// Package pda derives deterministic program-owned addresses from seed
// lists, matching the sha256-based derivation used on-chain.
package pda

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
)

const MaxSeeds = 16
const MaxSeedLen = 32
const PdaMarker = "ProgramDerivedAddress"

var (
	ErrSeedLength       = errors.New("Max seeds (16) exceeded")
	ErrSeedTooLong      = errors.New("Max seed length (32) exceeded")
	ErrOnCurve          = errors.New("Invalid seeds - generated address must be off-curve")
	ErrNoValidBumpFound = errors.New("ErrNoValidBumpFound")
)

// CreateProgramAddress hashes the seeds, program id and PDA marker into
// a candidate address. Fails with ErrOnCurve if the result lands on the
// ed25519 curve, i.e. could collide with a real signing key.
func CreateProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return solana.PublicKey{}, ErrSeedLength
	}

	hasher := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return solana.PublicKey{}, ErrSeedTooLong
		}
		hasher.Write(seed)
	}

	hasher.Write(programID[:])
	hasher.Write([]byte(PdaMarker))
	hash := hasher.Sum(nil)

	if IsOnCurve(hash) {
		return solana.PublicKey{}, ErrOnCurve
	}

	return solana.PublicKeyFromBytes(hash), nil
}

// FindProgramAddress searches bump seeds from 255 downward for the
// first off-curve address. Pure and reproducible: identical seeds and
// program id always yield the same (address, bump).
func FindProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	if len(seeds)+1 > MaxSeeds {
		return solana.PublicKey{}, 0, ErrSeedLength
	}

	for bump := uint8(255); bump > 0; bump-- {
		seedsWithBump := make([][]byte, len(seeds), len(seeds)+1)
		copy(seedsWithBump, seeds)
		seedsWithBump = append(seedsWithBump, []byte{bump})

		addr, err := CreateProgramAddress(seedsWithBump, programID)
		if err == nil {
			return addr, bump, nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return solana.PublicKey{}, 0, err
		}
	}

	return solana.PublicKey{}, 0, ErrNoValidBumpFound
}

// IsOnCurve checks if 'b' decodes to a point on the ed25519 curve.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
