// Package harness wires the ledger, clock and banks client into one
// explicit test environment. Nothing here is ambient: every scenario
// owns its Env and passes it around by reference.
package harness

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"k8s.io/klog/v2"

	"github.com/ontora-ai/banksim/pkg/accounts"
	"github.com/ontora-ai/banksim/pkg/banks"
	"github.com/ontora-ai/banksim/pkg/clock"
	"github.com/ontora-ai/banksim/pkg/fflags"
	"github.com/ontora-ai/banksim/pkg/identity"
	"github.com/ontora-ai/banksim/pkg/ledger"
	"github.com/ontora-ai/banksim/pkg/pda"
)

// InitialLamports is the default balance for a freshly created test
// user: 10 SOL.
const InitialLamports = 10_000_000_000

// TestStakeAmount is the conventional 1 SOL stake used by scenarios.
const TestStakeAmount = 1_000_000_000

type Config struct {
	// PayerLamports is the payer's starting balance. Defaults to
	// 10x InitialLamports.
	PayerLamports uint64

	// SkipSignatureVerify disables ed25519 verification on submit,
	// keeping only the signature presence check.
	SkipSignatureVerify bool
}

// Env is the test environment: the single ledger replica, its clock,
// the banks client and a funded payer.
type Env struct {
	Ledger   *ledger.AccountStore
	Clock    *clock.Controller
	Banks    *banks.Client
	Payer    *identity.Identity
	Features *fflags.Features
}

func NewEnv(cfg Config) (*Env, error) {
	features := new(fflags.Features)
	if cfg.SkipSignatureVerify {
		features.WithoutFeature(fflags.FeatureVerifySignatures)
	} else {
		features.WithFeature(fflags.FeatureVerifySignatures)
	}
	features.WithFeature(fflags.FeatureStrictConservation)

	store := ledger.NewAccountStore(features)

	clk, err := clock.New(store)
	if err != nil {
		return nil, err
	}

	payer, err := identity.New()
	if err != nil {
		return nil, err
	}

	payerLamports := cfg.PayerLamports
	if payerLamports == 0 {
		payerLamports = InitialLamports * 10
	}

	err = store.Bootstrap(accounts.Account{
		Key:      payer.Address(),
		Lamports: payerLamports,
		Owner:    banks.SystemProgramAddr,
	})
	if err != nil {
		return nil, err
	}

	env := &Env{
		Ledger:   store,
		Clock:    clk,
		Banks:    banks.NewClient(store, clk, features),
		Payer:    payer,
		Features: features,
	}
	klog.V(1).Infof("test environment ready, payer %s funded with %d lamports", payer.Address(), payerLamports)
	return env, nil
}

// RegisterProgram installs a handler for an external program id.
func (e *Env) RegisterProgram(programID solana.PublicKey, handler banks.ProgramHandler) error {
	return e.Banks.RegisterProgram(programID, handler)
}

// Process builds, signs and submits one transaction at Confirmed
// commitment. The payer is always included as fee payer and signer.
func (e *Env) Process(ctx context.Context, instructions []banks.Instruction, signers []*identity.Identity) error {
	all := append([]*identity.Identity{e.Payer}, signers...)
	tx, err := e.Banks.Build(instructions, e.Payer.Address(), all)
	if err != nil {
		return err
	}
	if err = e.Banks.Sign(tx); err != nil {
		return err
	}
	return e.Banks.Submit(ctx, tx, banks.CommitmentConfirmed)
}

// CreateUser creates a fresh identity with a funded system account,
// paid for by the payer.
func (e *Env) CreateUser(ctx context.Context, lamports uint64) (*identity.Identity, error) {
	user, err := identity.New()
	if err != nil {
		return nil, err
	}

	instr := banks.NewCreateAccountInstruction(lamports, 0, banks.SystemProgramAddr, e.Payer.Address(), user.Address())
	if err = e.Process(ctx, []banks.Instruction{instr}, []*identity.Identity{user}); err != nil {
		return nil, err
	}
	return user, nil
}

// FundAccount tops up an existing account from the payer.
func (e *Env) FundAccount(ctx context.Context, to solana.PublicKey, lamports uint64) error {
	instr := banks.NewTransferInstruction(lamports, e.Payer.Address(), to)
	return e.Process(ctx, []banks.Instruction{instr}, nil)
}

// Balance returns the account's lamports.
func (e *Env) Balance(pubkey solana.PublicKey) (uint64, error) {
	acct, ok := e.Ledger.Open(pubkey)
	if !ok {
		return 0, ledger.ErrAccountNotFound
	}
	return acct.Lamports, nil
}

func (e *Env) CurrentSlot() uint64 {
	return e.Clock.CurrentSlot()
}

// AdvanceSlot moves the clock forward by n slots.
func (e *Env) AdvanceSlot(n int64) error {
	return e.Clock.Advance(n)
}

// WarpToSlot jumps the clock directly to the given slot.
func (e *Env) WarpToSlot(slot uint64) error {
	return e.Clock.SetSlot(slot)
}

// DeriveAddress finds the program-derived address for the seed list.
func (e *Env) DeriveAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return pda.FindProgramAddress(seeds, programID)
}

// Invoke packages a single external-program instruction, submits it at
// Confirmed commitment, and returns the post-state of the account the
// caller most likely cares about: the first writable non-signer
// instruction account (a derived account in the typical flow), falling
// back to the first account.
func (e *Env) Invoke(ctx context.Context, programID solana.PublicKey, metas []banks.AccountMeta, args []byte, signers []*identity.Identity) (accounts.Account, error) {
	instr := banks.Instruction{ProgramID: programID, Accounts: metas, Data: args}
	if err := e.Process(ctx, []banks.Instruction{instr}, signers); err != nil {
		return accounts.Account{}, err
	}

	if len(metas) == 0 {
		return accounts.Account{}, nil
	}
	result := resultMeta(metas)
	acct, ok := e.Ledger.Open(result.Pubkey)
	if !ok {
		return accounts.Account{}, ledger.ErrAccountNotFound
	}
	return acct, nil
}

func resultMeta(metas []banks.AccountMeta) banks.AccountMeta {
	for _, meta := range metas {
		if meta.IsWritable && !meta.IsSigner {
			return meta
		}
	}
	return metas[0]
}
