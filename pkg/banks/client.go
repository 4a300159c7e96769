// Package banks drives signed instruction batches through the ledger:
// the in-process equivalent of a banks client talking to a single
// authoritative replica.
package banks

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"k8s.io/klog/v2"

	"github.com/ontora-ai/banksim/pkg/clock"
	"github.com/ontora-ai/banksim/pkg/fflags"
	"github.com/ontora-ai/banksim/pkg/identity"
	"github.com/ontora-ai/banksim/pkg/ledger"
)

// MaxProcessingAge is how many slots a recent-blockhash stays valid.
const MaxProcessingAge = 150

// Client builds, signs and submits transactions. Submission is a
// single logical step: instructions apply in order and a failure rolls
// the whole transaction back.
type Client struct {
	ledger   *ledger.AccountStore
	clock    *clock.Controller
	features *fflags.Features
	registry map[solana.PublicKey]ProgramHandler
}

func NewClient(store *ledger.AccountStore, clk *clock.Controller, features *fflags.Features) *Client {
	c := &Client{
		ledger:   store,
		clock:    clk,
		features: features,
		registry: make(map[solana.PublicKey]ProgramHandler),
	}
	c.registry[SystemProgramAddr] = systemProgramExecute
	return c
}

// RegisterProgram installs a handler for an external program id.
func (c *Client) RegisterProgram(programID solana.PublicKey, handler ProgramHandler) error {
	if _, exists := c.registry[programID]; exists {
		return ErrProgramAlreadyRegistered
	}
	c.registry[programID] = handler
	return nil
}

// Build assembles an unsigned transaction. Every account any
// instruction marks as a signer, and the fee payer, must have a
// matching identity in signers.
func (c *Client) Build(instructions []Instruction, feePayer solana.PublicKey, signers []*identity.Identity) (*Transaction, error) {
	if len(instructions) == 0 {
		return nil, ErrNoInstructions
	}

	byAddress := make(map[solana.PublicKey]*identity.Identity, len(signers))
	for _, signer := range signers {
		byAddress[signer.Address()] = signer
	}

	slot := c.clock.CurrentSlot()
	tx := &Transaction{
		instructions:    instructions,
		feePayer:        feePayer,
		signers:         byAddress,
		recentBlockhash: c.clock.RecentBlockhashAt(slot),
		blockhashSlot:   slot,
		signatures:      make(map[solana.PublicKey]solana.Signature),
		state:           TxStateBuilt,
	}

	for _, required := range tx.requiredSigners() {
		if _, ok := byAddress[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSigner, required)
		}
	}

	return tx, nil
}

// Sign collects a signature from every required signer. Fails with
// ErrSignatureUnavailable if any identity cannot produce one.
func (c *Client) Sign(tx *Transaction) error {
	if tx.state != TxStateBuilt {
		return ErrTxAlreadySigned
	}

	message := tx.Message()
	for _, required := range tx.requiredSigners() {
		signer, ok := tx.signers[required]
		if !ok || !signer.CanSign() {
			return fmt.Errorf("%w: %s", ErrSignatureUnavailable, required)
		}
		sig, err := signer.Sign(message)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrSignatureUnavailable, required)
		}
		tx.signatures[required] = sig
	}

	tx.state = TxStateSigned
	return nil
}

// Submit applies the transaction's instructions to the ledger in
// order. If any instruction fails, the ledger is restored to its
// pre-submission state and the failure is reported with the failing
// instruction index. Confirmation resolves synchronously at every
// commitment level; the context is honored so an asynchronous backend
// can keep the same signature.
func (c *Client) Submit(ctx context.Context, tx *Transaction, commitment CommitmentLevel) error {
	switch tx.state {
	case TxStateSigned:
	case TxStateBuilt:
		return ErrTxNotSigned
	default:
		return ErrTxAlreadySubmitted
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	currentSlot := c.clock.CurrentSlot()
	if currentSlot-tx.blockhashSlot > MaxProcessingAge {
		tx.state = TxStateFailed
		return ErrBlockhashNotFound
	}

	if err := c.verifySignatures(tx); err != nil {
		tx.state = TxStateFailed
		return err
	}

	signerSet := make(map[solana.PublicKey]bool, len(tx.signatures))
	for pubkey := range tx.signatures {
		signerSet[pubkey] = true
	}

	snapshot := c.ledger.Snapshot()
	tx.state = TxStateSubmitted

	for idx, instr := range tx.instructions {
		handler, ok := c.registry[instr.ProgramID]
		if !ok {
			c.ledger.Restore(snapshot)
			tx.state = TxStateFailed
			return &InstructionErr{Index: idx, Cause: ErrUnsupportedProgram}
		}

		ic := &InvokeContext{
			ProgramID: instr.ProgramID,
			Metas:     instr.Accounts,
			Data:      instr.Data,
			Ledger:    c.ledger,
			Clock:     c.clock,
			signers:   signerSet,
		}

		if err := handler(ic); err != nil {
			klog.V(2).Infof("instruction %d failed, rolling back transaction: %v", idx, err)
			c.ledger.Restore(snapshot)
			tx.state = TxStateFailed
			return &InstructionErr{Index: idx, Cause: err}
		}
	}

	// no asynchronous network: all commitment levels settle here
	tx.state = TxStateConfirmed
	klog.V(2).Infof("transaction confirmed at %s commitment, slot %d", commitment, currentSlot)
	return nil
}

func (c *Client) verifySignatures(tx *Transaction) error {
	message := tx.Message()
	for _, required := range tx.requiredSigners() {
		sig, ok := tx.signatures[required]
		if !ok {
			return NewTxErrInvalidSignature(fmt.Sprintf("missing signature for %s", required))
		}
		if !c.features.HasFeature(fflags.FeatureVerifySignatures) {
			continue
		}
		if !ed25519.Verify(ed25519.PublicKey(required[:]), message, sig[:]) {
			return NewTxErrInvalidSignature(fmt.Sprintf("invalid signature for %s", required))
		}
	}
	return nil
}
