package ledger

import (
	"github.com/gagliardetto/solana-go"
	"github.com/zeebo/blake3"

	"github.com/ontora-ai/banksim/pkg/accounts"
	"github.com/ontora-ai/banksim/pkg/util"
)

// Snapshot is a deep copy of the full store state, used by the
// transaction submitter to roll back a failed transaction as a unit.
type Snapshot struct {
	accounts map[solana.PublicKey]*accounts.Account
	seeded   uint64
}

func (s *AccountStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		accounts: make(map[solana.PublicKey]*accounts.Account, len(s.accounts)),
		seeded:   s.seeded,
	}
	for key, acct := range s.accounts {
		snap.accounts[key] = acct.Clone()
	}
	return snap
}

// Restore replaces the entire store state with a previously taken
// snapshot. The snapshot's own copies are cloned again so one snapshot
// can be restored more than once.
func (s *AccountStore) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[solana.PublicKey]*accounts.Account, len(snap.accounts))
	for key, acct := range snap.accounts {
		s.accounts[key] = acct.Clone()
	}
	s.seeded = snap.seeded
}

// StateFingerprint hashes every account in key order into a single
// blake3 digest. Two stores with equal fingerprints hold identical
// observable state.
func (s *AccountStore) StateFingerprint() [32]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]solana.PublicKey, 0, len(s.accounts))
	for key := range s.accounts {
		keys = append(keys, key)
	}
	util.SortPubkeys(keys)

	hasher := blake3.New()
	for _, key := range keys {
		acctHash := s.accounts[key].Hash()
		_, _ = hasher.Write(acctHash[:])
	}

	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out
}
