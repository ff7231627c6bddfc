/*
Package interop describes the surface of the execution substrate visible to
contract code.

A contract never talks to the substrate directly: every entry point receives a
Runtime bound to the current call. The Runtime exposes the call context (caller,
attached payment), a metered storage view scoped to the contract, the storage
cost reservation of the contract account, value transfers and inner calls.

Every Runtime operation charges the shared compute budget of the atomic group
the call belongs to. Any panic raised by contract code or by the Runtime itself
aborts the whole group.
*/
package interop
