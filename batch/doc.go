/*
Package batch registers and resolves identifiers in bulk.

Orchestrator splits input into per-call chunks and per-group chunks, processes
groups concurrently and merges results. Register groups go through
Negotiator which measures group compute cost by simulation and buys missing
budget with an increaseComputeBudget call prepended to the group. Failed
register groups are retried in passes until every identifier is registered or
a pass makes no progress.
*/
package batch
