package merkletreebuilder

import "fmt"

// MismatchedRootsError is returned when, after ingesting a leaf, the prover and
// the incremental tree don't agree on the root or on the amount of leaves. It means the local trees have
// drifted, so any proof built from now on could be rejected on chain.
type MismatchedRootsError struct {
	// ProverRoot is the root of the prover tree
	ProverRoot string
	// IncrementalRoot is the root of the incremental tree
	IncrementalRoot string
	// Count is the amount of leaves ingested by the prover when the mismatch was detected
	Count uint64
	// IncrementalCount is the amount of leaves ingested by the incremental tree
	IncrementalCount uint64
}

func (e *MismatchedRootsError) Error() string {
	if e.Count != e.IncrementalCount {
		return fmt.Sprintf(
			"prover count %d does not match incremental count %d: prover: %s, incremental: %s",
			e.Count, e.IncrementalCount, e.ProverRoot, e.IncrementalRoot,
		)
	}
	return fmt.Sprintf(
		"prover root does not match incremental root at count %d: prover: %s, incremental: %s",
		e.Count, e.ProverRoot, e.IncrementalRoot,
	)
}

// ProverError wraps the errors returned by the prover tree: tree.ErrTreeFull
// and tree.ErrInvalidProofRequest
type ProverError struct {
	Err error
}

func (e *ProverError) Error() string {
	return fmt.Sprintf("prover error: %s", e.Err)
}

func (e *ProverError) Unwrap() error {
	return e.Err
}

// UpstreamError wraps errors coming from the collaborators that feed or consume
// the builder (chain clients, leaf storage). Retrying is up to the caller.
type UpstreamError struct {
	// Source identifies the collaborator, e.g. "messagesync" or "rootstore"
	Source string
	Err    error
}

// NewUpstreamError wraps err as coming from source
func NewUpstreamError(source string, err error) *UpstreamError {
	return &UpstreamError{Source: source, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
