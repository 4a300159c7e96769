package harness

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/ontora-ai/banksim/pkg/accounts"
	"github.com/ontora-ai/banksim/pkg/banks"
)

// BootstrapAccount is the YAML shape of a pre-seeded account.
type BootstrapAccount struct {
	Address    string `yaml:"address"`
	Lamports   uint64 `yaml:"lamports"`
	Owner      string `yaml:"owner,omitempty"`
	Executable bool   `yaml:"executable,omitempty"`
	Data       string `yaml:"data,omitempty"` // base64
	RentEpoch  uint64 `yaml:"rent_epoch,omitempty"`
}

type BootstrapFile struct {
	Accounts []BootstrapAccount `yaml:"accounts"`
}

func (b *BootstrapAccount) toAccount() (accounts.Account, error) {
	key, err := solana.PublicKeyFromBase58(b.Address)
	if err != nil {
		return accounts.Account{}, fmt.Errorf("invalid account address %q: %w", b.Address, err)
	}

	owner := banks.SystemProgramAddr
	if b.Owner != "" {
		owner, err = solana.PublicKeyFromBase58(b.Owner)
		if err != nil {
			return accounts.Account{}, fmt.Errorf("invalid owner address %q: %w", b.Owner, err)
		}
	}

	var data []byte
	if b.Data != "" {
		data, err = base64.StdEncoding.DecodeString(b.Data)
		if err != nil {
			return accounts.Account{}, fmt.Errorf("invalid account data for %q: %w", b.Address, err)
		}
	}

	return accounts.Account{
		Key:        key,
		Lamports:   b.Lamports,
		Data:       data,
		Owner:      owner,
		Executable: b.Executable,
		RentEpoch:  b.RentEpoch,
	}, nil
}

// Bootstrap pre-seeds the given accounts before any transaction runs.
func (e *Env) Bootstrap(accts []BootstrapAccount) error {
	for _, entry := range accts {
		acct, err := entry.toAccount()
		if err != nil {
			return err
		}
		if err = e.Ledger.Bootstrap(acct); err != nil {
			return fmt.Errorf("bootstrapping %s: %w", acct.Key, err)
		}
	}
	return nil
}

// BootstrapFromYAML reads a bootstrap fixture and pre-seeds its
// accounts.
func (e *Env) BootstrapFromYAML(r io.Reader) error {
	var file BootstrapFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return err
	}
	return e.Bootstrap(file.Accounts)
}

// BootstrapFromYAMLFile is BootstrapFromYAML over a fixture path.
func (e *Env) BootstrapFromYAMLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return e.BootstrapFromYAML(f)
}
