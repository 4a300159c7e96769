package banks

import (
	"errors"
	"fmt"
)

// transaction errors
var (
	ErrMissingSigner            = errors.New("ErrMissingSigner")
	ErrSignatureUnavailable     = errors.New("ErrSignatureUnavailable")
	ErrTxNotSigned              = errors.New("ErrTxNotSigned")
	ErrTxAlreadySigned          = errors.New("ErrTxAlreadySigned")
	ErrTxAlreadySubmitted       = errors.New("ErrTxAlreadySubmitted")
	ErrBlockhashNotFound        = errors.New("ErrBlockhashNotFound")
	ErrUnsupportedProgram       = errors.New("ErrUnsupportedProgram")
	ErrProgramAlreadyRegistered = errors.New("ErrProgramAlreadyRegistered")
	ErrNoInstructions           = errors.New("ErrNoInstructions")
)

// instruction errors
var (
	InstrErrNotEnoughAccountKeys     = errors.New("InstrErrNotEnoughAccountKeys")
	InstrErrMissingAccount           = errors.New("InstrErrMissingAccount")
	InstrErrMissingRequiredSignature = errors.New("InstrErrMissingRequiredSignature")
	InstrErrInvalidInstructionData   = errors.New("InstrErrInvalidInstructionData")
	InstrErrReadonlyDataModified     = errors.New("InstrErrReadonlyDataModified")
	InstrErrReadonlyLamportChange    = errors.New("InstrErrReadonlyLamportChange")
)

// system program errors
var (
	SystemProgErrAccountAlreadyInUse = errors.New("SystemProgErrAccountAlreadyInUse")
)

// InstructionErr reports which instruction failed a transaction. The
// whole transaction is rolled back before it is returned.
type InstructionErr struct {
	Index int
	Cause error
}

func (err *InstructionErr) Error() string {
	return fmt.Sprintf("instruction %d failed: %s", err.Index, err.Cause)
}

func (err *InstructionErr) Unwrap() error {
	return err.Cause
}

type TxErrInvalidSignature struct {
	msg string
}

func NewTxErrInvalidSignature(msg string) error {
	return &TxErrInvalidSignature{msg: msg}
}

func (err *TxErrInvalidSignature) Error() string {
	return err.msg
}
