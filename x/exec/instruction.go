package exec

import (
	"fmt"
	"math"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/orm"
	"golang.org/x/crypto/blake2b"
)

// AccountMeta describes an account an instruction touches.
type AccountMeta struct {
	Address    daowallet.Address
	IsSigner   bool
	IsWritable bool
}

// Instruction is an opaque action to be executed on behalf of the wallet.
// Amount is the declared value transferred by the instruction. It is the
// only part of the instruction the engine reads, to account spending.
type Instruction struct {
	Program  daowallet.Address
	Accounts []AccountMeta
	Data     []byte
	Amount   uint64
}

// Validate checks the instruction is well formed.
func (i Instruction) Validate() error {
	if err := i.Program.Validate(); err != nil {
		return errors.Wrap(err, "program")
	}
	for n, a := range i.Accounts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", n)
		}
	}
	return nil
}

// Limits bound the size of an instruction list.
type Limits struct {
	MaxInstructions uint32
	MaxDataSize     uint32
	MaxAccounts     uint32
}

// DefaultLimits are used when no configuration overrides them.
var DefaultLimits = Limits{
	MaxInstructions: 10,
	MaxDataSize:     256,
	MaxAccounts:     10,
}

// Validate checks all instructions and that the list fits into limits.
// An empty list is valid.
func Validate(ins []Instruction, l Limits) error {
	if uint32(len(ins)) > l.MaxInstructions {
		return errors.Wrapf(errors.ErrInput, "%d instructions, at most %d allowed", len(ins), l.MaxInstructions)
	}
	for n, i := range ins {
		if err := i.Validate(); err != nil {
			return errors.Wrapf(err, "instruction %d", n)
		}
		if uint32(len(i.Data)) > l.MaxDataSize {
			return errors.Wrapf(errors.ErrInput, "instruction %d: data of %d bytes, at most %d allowed", n, len(i.Data), l.MaxDataSize)
		}
		if uint32(len(i.Accounts)) > l.MaxAccounts {
			return errors.Wrapf(errors.ErrInput, "instruction %d: %d accounts, at most %d allowed", n, len(i.Accounts), l.MaxAccounts)
		}
	}
	if _, err := TotalAmount(ins); err != nil {
		return err
	}
	return nil
}

// TotalAmount returns the aggregate declared amount of all instructions.
func TotalAmount(ins []Instruction) (uint64, error) {
	var total uint64
	for _, i := range ins {
		if i.Amount > math.MaxUint64-total {
			return 0, errors.Wrap(errors.ErrOverflow, "total amount")
		}
		total += i.Amount
	}
	return total, nil
}

type instructionList struct {
	Instructions []Instruction
}

// Digest returns a blake2b-256 hash of the instruction list. It identifies
// the content in audit records and logs.
func Digest(ins []Instruction) []byte {
	raw := orm.MustMarshal(instructionList{Instructions: ins})
	sum := blake2b.Sum256(raw)
	return sum[:]
}

// Summary returns a short human readable description of the instructions.
func Summary(ins []Instruction) string {
	total, err := TotalAmount(ins)
	if err != nil {
		return fmt.Sprintf("%d instructions, amount overflow, digest %X", len(ins), Digest(ins)[:8])
	}
	return fmt.Sprintf("%d instructions, amount %d, digest %X", len(ins), total, Digest(ins)[:8])
}
