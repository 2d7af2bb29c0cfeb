package gconf

import (
	"reflect"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x"
)

// OwnedConfig must have an Owner field. A configuration update message must
// be signed by an owner in order to be authorized to apply the change.
type OwnedConfig interface {
	Configuration
	GetOwner() daowallet.Address
}

type UpdateConfigurationHandler struct {
	pkg string
	// We require this type to load the data.
	config OwnedConfig
	auth   x.Authenticator
}

var _ daowallet.Handler = (*UpdateConfigurationHandler)(nil)

// NewUpdateConfigurationHandler returns a message handler that process
// configuration patch message.
//
// To pass authentication step, each message must be signed by the current
// configuration owner. A configuration that does not exist cannot be
// patched, it must be created via genesis.
func NewUpdateConfigurationHandler(pkg string, config OwnedConfig, auth x.Authenticator) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:    pkg,
		config: config,
		auth:   auth,
	}
}

func (h UpdateConfigurationHandler) Check(ctx daowallet.Context, store daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, err := h.applyTx(ctx, store, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx daowallet.Context, store daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	if _, err := h.applyTx(ctx, store, tx); err != nil {
		return nil, err
	}
	return &daowallet.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) applyTx(ctx daowallet.Context, store daowallet.KVStore, tx daowallet.Tx) (OwnedConfig, error) {
	// The handler value is shared, so work on a fresh instance.
	config := reflect.New(reflect.TypeOf(h.config).Elem()).Interface().(OwnedConfig)
	if err := Load(store, h.pkg, config); err != nil {
		return nil, errors.Wrap(err, "load current configuration")
	}

	// Configuration owner must sign the transaction in order to
	// authenticate the change.
	owner := config.GetOwner()
	if owner == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	if !h.auth.HasAddress(ctx, owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner did not sign transaction")
	}

	payload, err := patchPayload(tx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get message payload")
	}
	if err := patch(config, payload); err != nil {
		return nil, errors.Wrap(err, "cannot patch config with message payload")
	}

	if err := Save(store, h.pkg, config); err != nil {
		return nil, errors.Wrap(err, "cannot save updated config")
	}
	return config, nil
}

func patch(config OwnedConfig, payload OwnedConfig) error {
	pType := reflect.TypeOf(payload)
	cType := reflect.TypeOf(config)
	if pType != cType {
		return errors.Wrap(errors.ErrMsg, "config in message doesn't match store")
	}

	cval := reflect.ValueOf(config).Elem()
	pval := reflect.ValueOf(payload).Elem()

	for i := 0; i < cval.NumField(); i++ {
		got := pval.Field(i)

		// Zero values do not update the original configuration.
		if isZero(got) {
			continue
		}

		cval.Field(i).Set(got)
	}

	return nil
}

// isZero returns true if given value represents a zero value of a given type.
func isZero(val reflect.Value) bool {
	zero := reflect.Zero(val.Type()).Interface()
	return reflect.DeepEqual(val.Interface(), zero)
}

// patchPayload expects the transaction to have a message with "Patch" field of
// the same type as the configuration. Content of this field is extracted and
// returned.
func patchPayload(tx daowallet.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "nil message")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	pval := reflect.ValueOf(msg)
	if pval.Kind() != reflect.Ptr || pval.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "invalid message container value: %T", msg)
	}
	val := pval.Elem()

	field := val.FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Ptr || field.IsNil() {
		return nil, errors.Wrap(errors.ErrState, `"Patch" field is required`)
	}
	payload, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrap(errors.ErrInput, `"Patch" field is of a wrong type`)
	}
	return payload, nil
}
