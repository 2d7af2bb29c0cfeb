/*

Package daowallet defines interfaces used throughout the governance engine,
such as: storage, messages, handlers and the context helpers that carry the
block time and the logger.
The extensions under x/ implement the multisig wallet on top of these
building blocks: members and delegation, spending limits, quorum rules,
proposals and the emergency override.

*/

package daowallet
