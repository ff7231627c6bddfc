package common

import "strconv"

const (
	major = 0
	minor = 3
	patch = 0

	// Version is the current version of the registry contract code.
	Version = major*1_000_000 + minor*1_000 + patch

	// ErrVersionMismatch is thrown by CheckVersion in case of error.
	ErrVersionMismatch = "previous version mismatch"

	// ErrAlreadyUpdated is thrown by CheckVersion if current version equals to
	// version contract is being updated to.
	ErrAlreadyUpdated = "contract is already of the latest version"
)

// VersionKey is a storage key of the code version the contract storage
// corresponds to.
var VersionKey = []byte("version")

// CheckVersion checks that the contract of version from can be updated to
// version to. Downgrades are not allowed.
func CheckVersion(from, to int64) {
	if to == from {
		panic(ErrAlreadyUpdated + ": " + strconv.FormatInt(from, 10))
	}
	if to < from {
		panic(ErrVersionMismatch + ": expected >" + strconv.FormatInt(from, 10))
	}
}
