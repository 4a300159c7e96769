package banks

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var SystemProgramAddr = solana.SystemProgramID

const (
	SystemProgramInstrTypeCreateAccount = iota
	SystemProgramInstrTypeAssign
	SystemProgramInstrTypeTransfer
)

type SystemInstrCreateAccount struct {
	Lamports uint64
	Space    uint64
	Owner    solana.PublicKey
}

func (instr *SystemInstrCreateAccount) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteUint64(instr.Lamports, bin.LE)
	_ = encoder.WriteUint64(instr.Space, bin.LE)
	return encoder.WriteBytes(instr.Owner[:], false)
}

func (instr *SystemInstrCreateAccount) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return InstrErrInvalidInstructionData
	}
	instr.Space, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return InstrErrInvalidInstructionData
	}
	if err = decoder.Decode(&instr.Owner); err != nil {
		return InstrErrInvalidInstructionData
	}
	return nil
}

type SystemInstrTransfer struct {
	Lamports uint64
}

func (instr *SystemInstrTransfer) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint64(instr.Lamports, bin.LE)
}

func (instr *SystemInstrTransfer) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return InstrErrInvalidInstructionData
	}
	return nil
}

func systemProgramExecute(ic *InvokeContext) error {
	decoder := bin.NewBinDecoder(ic.Data)

	instrType, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return InstrErrInvalidInstructionData
	}

	switch instrType {
	case SystemProgramInstrTypeCreateAccount:
		var createAcct SystemInstrCreateAccount
		if err = createAcct.UnmarshalWithDecoder(decoder); err != nil {
			return err
		}
		return ic.CreateAccount(0, 1, createAcct.Lamports, createAcct.Space, createAcct.Owner)

	case SystemProgramInstrTypeTransfer:
		var transfer SystemInstrTransfer
		if err = transfer.UnmarshalWithDecoder(decoder); err != nil {
			return err
		}
		return ic.Transfer(0, 1, transfer.Lamports)

	default:
		return InstrErrInvalidInstructionData
	}
}

func encodeSystemInstr(instrType uint32, body interface {
	MarshalWithEncoder(*bin.Encoder) error
}) []byte {
	buf := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buf)
	_ = encoder.WriteUint32(instrType, bin.LE)
	_ = body.MarshalWithEncoder(encoder)
	return buf.Bytes()
}

// NewTransferInstruction builds a system transfer between two existing
// accounts.
func NewTransferInstruction(lamports uint64, from solana.PublicKey, to solana.PublicKey) Instruction {
	return Instruction{
		ProgramID: SystemProgramAddr,
		Accounts: []AccountMeta{
			{Pubkey: from, IsSigner: true, IsWritable: true},
			{Pubkey: to, IsSigner: false, IsWritable: true},
		},
		Data: encodeSystemInstr(SystemProgramInstrTypeTransfer, &SystemInstrTransfer{Lamports: lamports}),
	}
}

// NewCreateAccountInstruction builds a system create-account funded by
// the funder. Both the funder and the new account must sign.
func NewCreateAccountInstruction(lamports uint64, space uint64, owner solana.PublicKey, funder solana.PublicKey, newAccount solana.PublicKey) Instruction {
	return Instruction{
		ProgramID: SystemProgramAddr,
		Accounts: []AccountMeta{
			{Pubkey: funder, IsSigner: true, IsWritable: true},
			{Pubkey: newAccount, IsSigner: true, IsWritable: true},
		},
		Data: encodeSystemInstr(SystemProgramInstrTypeCreateAccount, &SystemInstrCreateAccount{
			Lamports: lamports,
			Space:    space,
			Owner:    owner,
		}),
	}
}
