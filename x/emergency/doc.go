/*
Package emergency implements the emergency override of a wallet.

The wallet authority can execute instructions right away, without a proposal
and without any quorum. Every override is recorded in the audit bucket and
logged.
*/
package emergency
