/*
Package chain implements an in-memory execution substrate for interop
contracts.

The chain executes atomic groups of calls. A group either applies all its
state changes or none: execution happens on a cache layer above the ledger
store which is persisted only if every call halts. All calls of a group share
one compute budget pool. Each call adds Config.CallBudget to the pool, inner
calls issued by contracts add the same amount and cost Config.InnerCallOverhead.

Every account must keep the minimum balance which grows with the storage the
account owns (see Chain.StorageCostOf). A group leaving any touched account
below its minimum faults.

Groups are signed by the senders of their calls, submitted into the pool and
applied in rounds. AwaitConfirmation advances rounds on demand. Simulate
executes a group against the current state without applying it.
*/
package chain
