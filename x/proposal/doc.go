/*
Package proposal implements the proposal lifecycle of a wallet.

A proposal starts Pending. It becomes Approved once enough active signers
approved it and Rejected as soon as the required approvals can no longer be
collected. Approved proposals can be executed. Regular proposals may also be
executed while still Pending, when the wallet spending allowance covers
their amount. A proposal touched after its expiration becomes Expired.

	Pending -> Approved -> Executed
	Pending -> Rejected
	Pending -> Executed (spending bypass)
	Pending, Approved -> Expired

Expiration is evaluated lazily. An approve, reject or execute call that finds
the proposal expired fails with ErrProposalExpired, yet the transition to
Expired is persisted. This is the only failing operation that changes state.
*/
package proposal
