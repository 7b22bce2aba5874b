package attestation

import "time"

// StreamWindowAttestation documents the integrity of one window of a data
// stream: a Merkle root over the window's records, optionally chained to
// the previous window.
type StreamWindowAttestation struct {
	Statement
	Predicate StreamWindowPredicate `json:"predicate"`
}

// StreamWindowPredicate is the stream-window predicate body.
type StreamWindowPredicate struct {
	Stream    StreamDescriptor    `json:"stream"`
	Window    WindowDescriptor    `json:"window"`
	Integrity IntegrityDescriptor `json:"integrity"`
	Collector *Collector          `json:"collector,omitempty"`
	Metadata  *WindowMetadata     `json:"metadata,omitempty"`
}

// StreamDescriptor identifies the stream being attested.
type StreamDescriptor struct {
	ID         string   `json:"id"`
	Source     string   `json:"source,omitempty"`
	Topic      string   `json:"topic,omitempty"`
	Partitions []string `json:"partitions,omitempty"`
}

// WindowDescriptor holds the windowing parameters.
type WindowDescriptor struct {
	Type      WindowType `json:"type"`
	Duration  string     `json:"duration"`
	Slide     string     `json:"slide,omitempty"`
	Watermark *time.Time `json:"watermark,omitempty"`
}

// IntegrityDescriptor carries the window's cryptographic integrity data.
type IntegrityDescriptor struct {
	MerkleTree MerkleTreeDescriptor `json:"merkleTree"`
	Chain      *ChainDescriptor     `json:"chain,omitempty"`
}

// MerkleTreeDescriptor summarizes the tree built over the window's records.
type MerkleTreeDescriptor struct {
	Algorithm  string `json:"algorithm"`
	LeafCount  uint64 `json:"leafCount"`
	TreeHeight uint32 `json:"treeHeight,omitempty"`
	Root       string `json:"root"`
}

// ChainDescriptor links this window to its predecessor for tamper-evident
// sequencing.
type ChainDescriptor struct {
	PreviousWindowID   string `json:"previousWindowId,omitempty"`
	PreviousMerkleRoot string `json:"previousMerkleRoot,omitempty"`
	ChainLength        uint64 `json:"chainLength,omitempty"`
	GenesisWindowID    string `json:"genesisWindowId,omitempty"`
}

// WindowMetadata carries window statistics.
type WindowMetadata struct {
	RecordsProcessed uint64     `json:"recordsProcessed,omitempty"`
	RecordsLate      uint64     `json:"recordsLate,omitempty"`
	ClosedAt         *time.Time `json:"closedAt,omitempty"`
}

// StreamWindowParams holds the required fields of a stream-window
// attestation.
type StreamWindowParams struct {
	Subjects  []Subject
	Stream    StreamDescriptor
	Window    WindowDescriptor
	Integrity IntegrityDescriptor
}

// StreamWindowOptions holds the optional fields.
type StreamWindowOptions struct {
	Collector *Collector
	Metadata  *WindowMetadata
}

// NewStreamWindowAttestation builds a stream-window attestation after
// validating all required fields. opts may be nil.
func NewStreamWindowAttestation(params StreamWindowParams, opts *StreamWindowOptions) (*StreamWindowAttestation, error) {
	if len(params.Subjects) == 0 {
		return nil, &MissingFieldError{Field: "subject"}
	}
	if params.Stream.ID == "" {
		return nil, &MissingFieldError{Field: "stream.id"}
	}
	if params.Window.Duration == "" {
		return nil, &MissingFieldError{Field: "window.duration"}
	}
	if params.Integrity.MerkleTree.Root == "" {
		return nil, &MissingFieldError{Field: "integrity.merkleTree.root"}
	}
	if params.Integrity.MerkleTree.Algorithm == "" {
		params.Integrity.MerkleTree.Algorithm = HashAlgorithmSHA256
	}

	a := &StreamWindowAttestation{
		Statement: Statement{
			StatementType: StatementType,
			Subject:       params.Subjects,
			PredicateType: StreamWindowPredicateType,
		},
		Predicate: StreamWindowPredicate{
			Stream:    params.Stream,
			Window:    params.Window,
			Integrity: params.Integrity,
		},
	}

	if opts != nil {
		a.Predicate.Collector = opts.Collector
		a.Predicate.Metadata = opts.Metadata
	}
	return a, nil
}

// Validate checks the attestation's structural invariants.
func (a *StreamWindowAttestation) Validate() error {
	if err := validateStatement(a.Statement, StreamWindowPredicateType); err != nil {
		return err
	}
	if a.Predicate.Stream.ID == "" {
		return &MissingFieldError{Field: "stream.id"}
	}
	if a.Predicate.Integrity.MerkleTree.Root == "" {
		return &MissingFieldError{Field: "integrity.merkleTree.root"}
	}
	return nil
}
