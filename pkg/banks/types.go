package banks

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ontora-ai/banksim/pkg/identity"
)

type AccountMeta struct {
	Pubkey     solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// CommitmentLevel selects how long a caller is willing to wait before
// treating a transaction as settled. In this simulated ledger every
// level resolves immediately after application; the levels exist for
// API parity with a real ledger client.
type CommitmentLevel uint8

const (
	CommitmentProcessed CommitmentLevel = iota
	CommitmentConfirmed
	CommitmentFinalized
)

func (c CommitmentLevel) String() string {
	switch c {
	case CommitmentProcessed:
		return "processed"
	case CommitmentConfirmed:
		return "confirmed"
	case CommitmentFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

type TxState uint8

const (
	TxStateBuilt TxState = iota
	TxStateSigned
	TxStateSubmitted
	TxStateConfirmed
	TxStateFailed
)

func (s TxState) String() string {
	switch s {
	case TxStateBuilt:
		return "built"
	case TxStateSigned:
		return "signed"
	case TxStateSubmitted:
		return "submitted"
	case TxStateConfirmed:
		return "confirmed"
	case TxStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transaction is an ordered instruction batch with its fee payer and
// signer set. Immutable once signed; submission is final.
type Transaction struct {
	instructions    []Instruction
	feePayer        solana.PublicKey
	signers         map[solana.PublicKey]*identity.Identity
	recentBlockhash [32]byte
	blockhashSlot   uint64
	signatures      map[solana.PublicKey]solana.Signature
	state           TxState
}

func (tx *Transaction) State() TxState {
	return tx.state
}

func (tx *Transaction) FeePayer() solana.PublicKey {
	return tx.feePayer
}

// requiredSigners returns the fee payer plus every account any
// instruction marks as a signer, deduplicated.
func (tx *Transaction) requiredSigners() []solana.PublicKey {
	seen := map[solana.PublicKey]bool{tx.feePayer: true}
	required := []solana.PublicKey{tx.feePayer}
	for _, instr := range tx.instructions {
		for _, meta := range instr.Accounts {
			if meta.IsSigner && !seen[meta.Pubkey] {
				seen[meta.Pubkey] = true
				required = append(required, meta.Pubkey)
			}
		}
	}
	return required
}

// Message serializes the transaction content covered by signatures.
func (tx *Transaction) Message() []byte {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)

	_ = enc.WriteBytes(tx.feePayer[:], false)
	_ = enc.WriteBytes(tx.recentBlockhash[:], false)
	_ = enc.WriteUint64(uint64(len(tx.instructions)), bin.LE)
	for _, instr := range tx.instructions {
		_ = enc.WriteBytes(instr.ProgramID[:], false)
		_ = enc.WriteUint64(uint64(len(instr.Accounts)), bin.LE)
		for _, meta := range instr.Accounts {
			_ = enc.WriteBytes(meta.Pubkey[:], false)
			_ = enc.WriteBool(meta.IsSigner)
			_ = enc.WriteBool(meta.IsWritable)
		}
		_ = enc.WriteUint64(uint64(len(instr.Data)), bin.LE)
		_ = enc.WriteBytes(instr.Data, false)
	}

	return buf.Bytes()
}
