package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/ontora-ai/banksim/pkg/banks"
	"github.com/ontora-ai/banksim/pkg/harness"
	"github.com/ontora-ai/banksim/pkg/identity"
)

var scenarioCmd = cobra.Command{
	Use:   "scenario <fixture.yaml>",
	Short: "Run a declarative transfer scenario against a fresh ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenario,
}

var payerLamports uint64

func init() {
	scenarioCmd.Flags().Uint64VarP(&payerLamports, "payer-lamports", "p", 0, "Payer starting balance (default 100 SOL)")
}

// scenarioFile is the YAML shape of a scenario fixture.
type scenarioFile struct {
	Accounts []harness.BootstrapAccount `yaml:"accounts,omitempty"`
	Users    []scenarioUser             `yaml:"users"`
	Steps    []scenarioStep             `yaml:"steps"`
}

type scenarioUser struct {
	Name     string `yaml:"name"`
	Lamports uint64 `yaml:"lamports"`
}

type scenarioStep struct {
	Transfer *scenarioTransfer `yaml:"transfer,omitempty"`
	Advance  *int64            `yaml:"advance_slots,omitempty"`
}

type scenarioTransfer struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Lamports uint64 `yaml:"lamports"`
}

func runScenario(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var scenario scenarioFile
	if err = yaml.NewDecoder(f).Decode(&scenario); err != nil {
		return fmt.Errorf("parsing scenario: %w", err)
	}

	env, err := harness.NewEnv(harness.Config{PayerLamports: payerLamports})
	if err != nil {
		return err
	}

	if err = env.Bootstrap(scenario.Accounts); err != nil {
		return err
	}

	users := map[string]*identity.Identity{"payer": env.Payer}
	for _, user := range scenario.Users {
		lamports := user.Lamports
		if lamports == 0 {
			lamports = harness.InitialLamports
		}
		id, err := env.CreateUser(ctx, lamports)
		if err != nil {
			return fmt.Errorf("creating user %q: %w", user.Name, err)
		}
		users[user.Name] = id
		klog.V(1).Infof("created user %q at %s", user.Name, id.Address())
	}

	for idx, step := range scenario.Steps {
		switch {
		case step.Transfer != nil:
			if err = runTransfer(cmd, env, users, step.Transfer); err != nil {
				return fmt.Errorf("step %d: %w", idx, err)
			}
		case step.Advance != nil:
			if err = env.AdvanceSlot(*step.Advance); err != nil {
				return fmt.Errorf("step %d: %w", idx, err)
			}
		default:
			return fmt.Errorf("step %d: empty step", idx)
		}
	}

	printBalances(cmd, env, users)
	return nil
}

func runTransfer(cmd *cobra.Command, env *harness.Env, users map[string]*identity.Identity, transfer *scenarioTransfer) error {
	from, ok := users[transfer.From]
	if !ok {
		return fmt.Errorf("unknown user %q", transfer.From)
	}
	to, ok := users[transfer.To]
	if !ok {
		return fmt.Errorf("unknown user %q", transfer.To)
	}

	instr := banks.NewTransferInstruction(transfer.Lamports, from.Address(), to.Address())
	return env.Process(cmd.Context(), []banks.Instruction{instr}, []*identity.Identity{from})
}

func printBalances(cmd *cobra.Command, env *harness.Env, users map[string]*identity.Identity) {
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)

	pretty := isatty.IsTerminal(os.Stdout.Fd())
	for _, name := range names {
		address := users[name].Address()
		balance, err := env.Balance(address)
		if err != nil {
			klog.Errorf("reading balance for %q: %v", name, err)
			continue
		}
		if pretty {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s  %d lamports (slot %d)\n", name, address, balance, env.CurrentSlot())
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", name, address, balance)
		}
	}
}
