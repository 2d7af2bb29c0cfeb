/*
Package exec defines the instructions attached to proposals and the
collaborator that carries them out.

The governance engine never interprets instruction payloads. It only decides
whether an Executor is invoked. Journal is the Executor used by the
application: it records every instruction it is handed so that the outcome
of the governance decisions can be audited and queried.
*/
package exec
