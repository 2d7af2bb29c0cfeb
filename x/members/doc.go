/*
Package members implements the member registry embedded in a wallet
configuration.

The registry tracks the ordered set of active signers together with a Member
record for every identity that was ever a signer. Removed signers are
deactivated, never deleted, so that historical votes stay attributable.
A signer may delegate its vote to another identity. The delegate can cast
the vote on the signer's behalf but never inherits the signer's role.
*/
package members
