/*
Package wallet implements the wallet configuration aggregate.

A wallet is created once by its authority and lives under an address derived
from that authority. It embeds the member registry and the spending tracker
and is only mutated by authority gated operations, except vote delegation
which every signer manages for itself. A wallet is never deleted, but it can
be deactivated.
*/
package wallet
