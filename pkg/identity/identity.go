// Package identity manages signer keypairs for the test ledger. The
// private key never leaves this package; everything else addresses an
// identity by its public key.
package identity

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var ErrNoSigningCapability = errors.New("ErrNoSigningCapability")

type Identity struct {
	address solana.PublicKey
	key     solana.PrivateKey
}

// New generates a fresh ed25519 keypair.
func New() (*Identity, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	return &Identity{address: key.PublicKey(), key: key}, nil
}

// WatchOnly wraps a bare address into an identity without a signing
// capability. Signing with it fails with ErrNoSigningCapability.
func WatchOnly(address solana.PublicKey) *Identity {
	return &Identity{address: address}
}

func (id *Identity) Address() solana.PublicKey {
	return id.address
}

// CanSign reports whether the identity holds its private key.
func (id *Identity) CanSign() bool {
	return id.key != nil
}

// Sign signs an arbitrary payload with the identity's private key.
// Only the transaction signer is expected to call this.
func (id *Identity) Sign(payload []byte) (solana.Signature, error) {
	if id.key == nil {
		return solana.Signature{}, ErrNoSigningCapability
	}
	return id.key.Sign(payload)
}
