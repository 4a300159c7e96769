package main

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/ontora-ai/banksim/pkg/pda"
)

var deriveCmd = cobra.Command{
	Use:   "derive <seed>...",
	Short: "Derive a program address from seeds",
	Long: `Derive a deterministic program-owned address from an ordered seed
list. Seeds are taken as raw UTF-8 bytes; prefix a seed with "b58:" to
pass base58-encoded bytes (e.g. a pubkey).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDerive,
}

var deriveProgramID string

func init() {
	deriveCmd.Flags().StringVarP(&deriveProgramID, "program", "P", "", "Owning program id (base58)")
	_ = deriveCmd.MarkFlagRequired("program")
}

func runDerive(cmd *cobra.Command, args []string) error {
	programID, err := solana.PublicKeyFromBase58(deriveProgramID)
	if err != nil {
		return fmt.Errorf("invalid program id: %w", err)
	}

	seeds := make([][]byte, 0, len(args))
	for _, arg := range args {
		if encoded, ok := strings.CutPrefix(arg, "b58:"); ok {
			seed, err := base58.Decode(encoded)
			if err != nil {
				return fmt.Errorf("invalid base58 seed %q: %w", arg, err)
			}
			seeds = append(seeds, seed)
		} else {
			seeds = append(seeds, []byte(arg))
		}
	}

	address, bump, err := pda.FindProgramAddress(seeds, programID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "address: %s\nbump: %d\n", address, bump)
	return nil
}
