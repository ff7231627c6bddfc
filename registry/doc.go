/*
Registry contract answers whether an address belongs to a registered
application and which application identifier owns it.

An address is derived from the identifier by a one-way hash (see DeriveAddress),
so the contract stores identifiers only and recomputes addresses on lookup.
Identifiers are grouped into buckets by the first 4 bytes of their address.
Buckets may hold several identifiers when prefixes collide, a lookup scans the
bucket and compares full addresses.

Every byte the contract stores raises the minimum balance the contract account
must keep. Registrations are paid from credit accounts: a user deposits funds
to the contract with depositCredit and each registration debits the storage
cost growth it caused, measured as the difference of the contract storage cost
before and after the mutation. Credit account storage itself is paid from the
first deposit and refunded on withdrawCredit.

# Methods

Writes: register, registerBatch, depositCredit, withdrawCredit.
Reads: exists, get, mustGet, getBatch, mustGetBatch, getWithAuth,
getWithAuthBatch, creditOf, totalCount, bucket, version.
Owner only: deleteBuckets, withdraw, update, destroy.
Utility: increaseComputeBudget issues inner calls to buy compute budget for the
rest of the group.

# Contract notifications

Registry contract does not produce notifications to process.
*/
package registry
