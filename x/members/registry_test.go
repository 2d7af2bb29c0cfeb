package members

import (
	"testing"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/weavetest"
	"github.com/iov-one/daowallet/weavetest/assert"
)

func addrs(n int) []daowallet.Address {
	out := make([]daowallet.Address, n)
	for i := range out {
		out[i] = weavetest.NewCondition().Address()
	}
	return out
}

func newRegistry(t testing.TB, signers []daowallet.Address, threshold uint32) *Registry {
	t.Helper()
	var r Registry
	if err := r.ReplaceSigners(signers, threshold); err != nil {
		t.Fatalf("cannot create registry: %+v", err)
	}
	return &r
}

func TestReplaceSigners(t *testing.T) {
	s := addrs(4)

	cases := map[string]struct {
		signers   []daowallet.Address
		threshold uint32
		wantErr   *errors.Error
	}{
		"valid": {
			signers: s[:3], threshold: 2,
		},
		"threshold equal to signer count": {
			signers: s[:2], threshold: 2,
		},
		"threshold above signer count": {
			signers: s[:2], threshold: 3,
			wantErr: errors.ErrInvalidThreshold,
		},
		"zero threshold": {
			signers: s[:2], threshold: 0,
			wantErr: errors.ErrInvalidThreshold,
		},
		"no signers": {
			signers: nil, threshold: 1,
			wantErr: errors.ErrInvalidThreshold,
		},
		"duplicated signer": {
			signers: []daowallet.Address{s[0], s[0]}, threshold: 1,
			wantErr: errors.ErrDuplicate,
		},
		"invalid address": {
			signers: []daowallet.Address{s[0], daowallet.Address("short")}, threshold: 1,
			wantErr: errors.ErrInput,
		},
		"too many signers": {
			signers: addrs(MaxSigners + 1), threshold: 1,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var r Registry
			err := r.ReplaceSigners(tc.signers, tc.threshold)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				assert.Equal(t, 0, len(r.Members))
				assert.Equal(t, 0, len(r.Signers))
				return
			}
			assert.Nil(t, r.Validate())
			assert.Equal(t, uint32(len(tc.signers)), r.SignerCount())
			for _, a := range tc.signers {
				m, ok := r.Member(a)
				assert.Equal(t, true, ok)
				assert.Equal(t, RoleMember, m.Role)
			}
		})
	}
}

func TestReplaceSignersResync(t *testing.T) {
	s := addrs(4)
	r := newRegistry(t, s[:3], 2)
	assert.Nil(t, r.AssignRole(s[0], RoleAdmin))
	assert.Nil(t, r.SetDelegate(s[1], s[2]))
	assert.Nil(t, r.SetDelegate(s[0], s[1]))

	// Drop s[2], add s[3].
	assert.Nil(t, r.ReplaceSigners([]daowallet.Address{s[0], s[1], s[3]}, 2))
	assert.Nil(t, r.Validate())

	assert.Equal(t, false, r.IsActiveSigner(s[2]))
	m, ok := r.Member(s[2])
	assert.Equal(t, true, ok)
	assert.Equal(t, false, m.Active)
	assert.Equal(t, 4, len(r.Members))

	// Delegation to the removed signer is gone, the other one stays.
	m, _ = r.Member(s[1])
	assert.Nil(t, m.Delegate)
	m, _ = r.Member(s[0])
	assert.Bytes(t, s[1], m.Delegate)

	// Re-adding keeps the previous role.
	assert.Nil(t, r.ReplaceSigners([]daowallet.Address{s[0], s[2]}, 1))
	assert.Nil(t, r.Validate())
	m, _ = r.Member(s[0])
	assert.Equal(t, RoleAdmin, m.Role)
	assert.Equal(t, true, r.IsActiveSigner(s[2]))
	assert.Equal(t, false, r.IsActiveSigner(s[1]))

	// A failed update leaves the registry untouched.
	assert.IsErr(t, errors.ErrInvalidThreshold, r.ReplaceSigners(s, 5))
	assert.Equal(t, uint32(2), r.SignerCount())
}

func TestSetDelegate(t *testing.T) {
	s := addrs(3)
	outsider := weavetest.NewCondition().Address()

	cases := map[string]struct {
		prepare   func(*Registry)
		delegator daowallet.Address
		delegate  daowallet.Address
		wantErr   *errors.Error
	}{
		"delegate to another signer": {
			delegator: s[0], delegate: s[1],
		},
		"delegate to an external identity": {
			delegator: s[0], delegate: outsider,
		},
		"revoke": {
			prepare:   func(r *Registry) { _ = r.SetDelegate(s[0], outsider) },
			delegator: s[0], delegate: nil,
		},
		"idempotent": {
			prepare:   func(r *Registry) { _ = r.SetDelegate(s[0], outsider) },
			delegator: s[0], delegate: outsider,
		},
		"delegator must be a signer": {
			delegator: outsider, delegate: s[0],
			wantErr: errors.ErrUnauthorized,
		},
		"deactivated delegator": {
			prepare:   func(r *Registry) { _ = r.ReplaceSigners(s[1:], 1) },
			delegator: s[0], delegate: s[1],
			wantErr: errors.ErrUnauthorized,
		},
		"cannot delegate to self": {
			delegator: s[0], delegate: s[0],
			wantErr: errors.ErrInput,
		},
		"cannot delegate to a deactivated signer": {
			prepare:   func(r *Registry) { _ = r.ReplaceSigners(s[:2], 1) },
			delegator: s[0], delegate: s[2],
			wantErr: errors.ErrInput,
		},
		"invalid delegate address": {
			delegator: s[0], delegate: daowallet.Address("short"),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			r := newRegistry(t, s, 2)
			if tc.prepare != nil {
				tc.prepare(r)
			}
			err := r.SetDelegate(tc.delegator, tc.delegate)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			m, _ := r.Member(tc.delegator)
			assert.Bytes(t, tc.delegate, m.Delegate)
			assert.Nil(t, r.Validate())
		})
	}
}

func TestResolveVoter(t *testing.T) {
	s := addrs(5)
	delegate := weavetest.NewCondition().Address()
	shared := weavetest.NewCondition().Address()
	outsider := weavetest.NewCondition().Address()

	r := newRegistry(t, s[:4], 2)
	assert.Nil(t, r.SetDelegate(s[0], delegate))
	assert.Nil(t, r.SetDelegate(s[1], shared))
	assert.Nil(t, r.SetDelegate(s[2], shared))

	cases := map[string]struct {
		caller     daowallet.Address
		onBehalfOf daowallet.Address
		want       daowallet.Address
		wantErr    *errors.Error
	}{
		"signer votes for itself": {
			caller: s[3], want: s[3],
		},
		"signer explicitly for itself": {
			caller: s[3], onBehalfOf: s[3], want: s[3],
		},
		"signer with a delegate cannot vote directly": {
			caller: s[0], wantErr: errors.ErrUnauthorized,
		},
		"signer with a delegate cannot vote explicitly for itself": {
			caller: s[0], onBehalfOf: s[0], wantErr: errors.ErrUnauthorized,
		},
		"delegate of a single signer": {
			caller: delegate, want: s[0],
		},
		"delegate with explicit signer": {
			caller: delegate, onBehalfOf: s[0], want: s[0],
		},
		"delegate of several signers must pick": {
			caller: shared, wantErr: errors.ErrInput,
		},
		"delegate of several signers picking one": {
			caller: shared, onBehalfOf: s[2], want: s[2],
		},
		"delegate cannot vote for a signer it does not represent": {
			caller: delegate, onBehalfOf: s[1], wantErr: errors.ErrUnauthorized,
		},
		"signer cannot vote for another signer": {
			caller: s[3], onBehalfOf: s[1], wantErr: errors.ErrUnauthorized,
		},
		"outsider": {
			caller: outsider, wantErr: errors.ErrUnauthorized,
		},
		"not a signer": {
			caller: s[4], wantErr: errors.ErrUnauthorized,
		},
		"no caller": {
			caller: nil, wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := r.ResolveVoter(tc.caller, tc.onBehalfOf)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Bytes(t, tc.want, got)
		})
	}
}

func TestAssignRole(t *testing.T) {
	s := addrs(3)
	r := newRegistry(t, s[:2], 1)

	assert.Nil(t, r.AssignRole(s[1], RoleTreasurer))
	m, _ := r.Member(s[1])
	assert.Equal(t, RoleTreasurer, m.Role)

	assert.IsErr(t, errors.ErrMemberNotFound, r.AssignRole(s[2], RoleAdmin))
	assert.IsErr(t, errors.ErrInput, r.AssignRole(s[0], Role(9)))
}

func TestParseRole(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleTreasurer, RoleMember} {
		got, err := ParseRole(role.String())
		assert.Nil(t, err)
		assert.Equal(t, role, got)
	}
	_, err := ParseRole("owner")
	assert.IsErr(t, errors.ErrInput, err)
}
