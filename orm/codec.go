package orm

import (
	"github.com/iov-one/daowallet/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Model is implemented by any entity that can be stored in a Bucket.
// Models are plain structs serialized with amino, so a pointer must be
// used when loading.
type Model interface {
	Validate() error
}

// Marshal serializes a model into its binary form.
func Marshal(m interface{}) ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", m, err)
	}
	return raw, nil
}

// Unmarshal loads the binary representation into dest, which must be a
// pointer.
func Unmarshal(raw []byte, dest interface{}) error {
	if err := cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", dest, err)
	}
	return nil
}

// MustMarshal is Marshal that panics. Use only in tests and for values
// that are known to serialize.
func MustMarshal(m interface{}) []byte {
	raw, err := Marshal(m)
	if err != nil {
		panic(err)
	}
	return raw
}
