package banks

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ontora-ai/banksim/pkg/accounts"
	"github.com/ontora-ai/banksim/pkg/clock"
	"github.com/ontora-ai/banksim/pkg/ledger"
)

// ProgramHandler executes one instruction of a registered program.
// The handler must route every mutation through the InvokeContext so
// that signer and writability privileges are enforced.
type ProgramHandler func(ic *InvokeContext) error

// InvokeContext is the view of the ledger a program handler executes
// against: the instruction's declared accounts, its opaque argument
// payload, and the verified signer set.
type InvokeContext struct {
	ProgramID solana.PublicKey
	Metas     []AccountMeta
	Data      []byte
	Ledger    *ledger.AccountStore
	Clock     *clock.Controller
	signers   map[solana.PublicKey]bool
}

func (ic *InvokeContext) Meta(index int) (AccountMeta, error) {
	if index >= len(ic.Metas) {
		return AccountMeta{}, InstrErrNotEnoughAccountKeys
	}
	return ic.Metas[index], nil
}

// IsSigner reports whether the pubkey signed the enclosing transaction.
func (ic *InvokeContext) IsSigner(pubkey solana.PublicKey) bool {
	return ic.signers[pubkey]
}

// Account returns a read-only snapshot of the instruction account at
// the given position.
func (ic *InvokeContext) Account(index int) (accounts.Account, error) {
	meta, err := ic.Meta(index)
	if err != nil {
		return accounts.Account{}, err
	}
	acct, ok := ic.Ledger.Open(meta.Pubkey)
	if !ok {
		return accounts.Account{}, InstrErrMissingAccount
	}
	return acct, nil
}

// MutateAccount applies a data mutation to the instruction account at
// the given position. The account must be marked writable.
func (ic *InvokeContext) MutateAccount(index int, mutator func(*accounts.Account) error) error {
	meta, err := ic.Meta(index)
	if err != nil {
		return err
	}
	if !meta.IsWritable {
		return InstrErrReadonlyDataModified
	}
	return ic.Ledger.ApplyProgramEffect(meta.Pubkey, mutator)
}

// Transfer moves lamports between two instruction accounts. The source
// must have signed and both sides must be writable.
func (ic *InvokeContext) Transfer(fromIndex int, toIndex int, lamports uint64) error {
	from, err := ic.Meta(fromIndex)
	if err != nil {
		return err
	}
	to, err := ic.Meta(toIndex)
	if err != nil {
		return err
	}

	if !from.IsSigner || !ic.IsSigner(from.Pubkey) {
		return InstrErrMissingRequiredSignature
	}
	if !from.IsWritable || !to.IsWritable {
		return InstrErrReadonlyLamportChange
	}

	return ic.Ledger.Transfer(from.Pubkey, to.Pubkey, lamports)
}

// CreateAccount creates the account at newIndex with the given space
// and owner, funded out of the account at funderIndex. Both must have
// signed, matching the system program's rules.
func (ic *InvokeContext) CreateAccount(funderIndex int, newIndex int, lamports uint64, space uint64, owner solana.PublicKey) error {
	funder, err := ic.Meta(funderIndex)
	if err != nil {
		return err
	}
	newMeta, err := ic.Meta(newIndex)
	if err != nil {
		return err
	}

	if !funder.IsSigner || !ic.IsSigner(funder.Pubkey) {
		return InstrErrMissingRequiredSignature
	}
	if !newMeta.IsSigner || !ic.IsSigner(newMeta.Pubkey) {
		return InstrErrMissingRequiredSignature
	}
	if !funder.IsWritable || !newMeta.IsWritable {
		return InstrErrReadonlyLamportChange
	}

	err = ic.Ledger.Create(newMeta.Pubkey, 0, owner, false, make([]byte, space))
	if err == ledger.ErrAccountAlreadyExists {
		return SystemProgErrAccountAlreadyInUse
	}
	if err != nil {
		return err
	}

	return ic.Ledger.Transfer(funder.Pubkey, newMeta.Pubkey, lamports)
}

// CreateDerivedAccount creates a program-owned account at a derived
// address. Derived addresses have no signing key, so only the funder
// must have signed; ownership goes to the invoking program.
func (ic *InvokeContext) CreateDerivedAccount(funderIndex int, address solana.PublicKey, lamports uint64, space uint64) error {
	funder, err := ic.Meta(funderIndex)
	if err != nil {
		return err
	}
	if !funder.IsSigner || !ic.IsSigner(funder.Pubkey) {
		return InstrErrMissingRequiredSignature
	}
	if !funder.IsWritable {
		return InstrErrReadonlyLamportChange
	}

	err = ic.Ledger.Create(address, 0, ic.ProgramID, false, make([]byte, space))
	if err == ledger.ErrAccountAlreadyExists {
		return SystemProgErrAccountAlreadyInUse
	}
	if err != nil {
		return err
	}

	return ic.Ledger.Transfer(funder.Pubkey, address, lamports)
}
