package exec

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/weavetest"
	"github.com/iov-one/daowallet/weavetest/assert"
)

func transfer(amount uint64) Instruction {
	return Instruction{
		Program: weavetest.NewCondition().Address(),
		Accounts: []AccountMeta{
			{Address: weavetest.NewCondition().Address(), IsWritable: true},
		},
		Data:   []byte("transfer"),
		Amount: amount,
	}
}

func TestValidateInstructions(t *testing.T) {
	tooManyAccounts := transfer(1)
	for i := 0; i < 10; i++ {
		tooManyAccounts.Accounts = append(tooManyAccounts.Accounts, AccountMeta{Address: weavetest.NewCondition().Address()})
	}
	bigData := transfer(1)
	bigData.Data = bytes.Repeat([]byte{1}, 257)
	badAccount := transfer(1)
	badAccount.Accounts[0].Address = daowallet.Address("short")

	cases := map[string]struct {
		ins     []Instruction
		wantErr *errors.Error
	}{
		"empty list": {
			ins: nil,
		},
		"valid": {
			ins: []Instruction{transfer(5), transfer(7)},
		},
		"missing program": {
			ins:     []Instruction{{Amount: 1}},
			wantErr: errors.ErrInput,
		},
		"invalid account": {
			ins:     []Instruction{badAccount},
			wantErr: errors.ErrInput,
		},
		"too much data": {
			ins:     []Instruction{bigData},
			wantErr: errors.ErrInput,
		},
		"too many accounts": {
			ins:     []Instruction{tooManyAccounts},
			wantErr: errors.ErrInput,
		},
		"too many instructions": {
			ins: []Instruction{
				transfer(1), transfer(1), transfer(1), transfer(1), transfer(1), transfer(1),
				transfer(1), transfer(1), transfer(1), transfer(1), transfer(1),
			},
			wantErr: errors.ErrInput,
		},
		"amount overflow": {
			ins:     []Instruction{transfer(math.MaxUint64), transfer(1)},
			wantErr: errors.ErrOverflow,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := Validate(tc.ins, DefaultLimits); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestTotalAmountAndDigest(t *testing.T) {
	a, b := transfer(300), transfer(200)

	total, err := TotalAmount([]Instruction{a, b})
	assert.Nil(t, err)
	assert.Equal(t, uint64(500), total)

	d1 := Digest([]Instruction{a, b})
	assert.Equal(t, 32, len(d1))
	assert.Bytes(t, d1, Digest([]Instruction{a, b}))
	if bytes.Equal(d1, Digest([]Instruction{b, a})) {
		t.Fatal("digest must depend on the order")
	}

	s := Summary([]Instruction{a, b})
	if !strings.HasPrefix(s, "2 instructions, amount 500, digest ") {
		t.Fatalf("unexpected summary: %q", s)
	}
}
