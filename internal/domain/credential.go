package domain

// CredentialState is the process-wide state of the client credentials.
// A load attempt moves Uninitialized to Pending; the first successful load
// moves Pending to Verified, which is final.
type CredentialState int

const (
	CredentialsUninitialized CredentialState = iota
	CredentialsPending
	CredentialsVerified
)

// String returns a human-readable representation of the state.
func (s CredentialState) String() string {
	switch s {
	case CredentialsUninitialized:
		return "Uninitialized"
	case CredentialsPending:
		return "Pending"
	case CredentialsVerified:
		return "Verified"
	default:
		return "Unknown"
	}
}
