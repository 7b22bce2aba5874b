package attestation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DBOMIDPrefix is the required URN prefix of a DBOM identifier.
const DBOMIDPrefix = "urn:dbom:"

// DBOMVersion is the manifest format version this module writes.
const DBOMVersion = "1.0.0"

// DBOM is a data bill of materials: a manifest documenting a dataset's
// sources and the transformations that produced it.
type DBOM struct {
	DBOMVersion     string           `json:"dbomVersion"`
	DBOMID          string           `json:"dbomId"`
	Dataset         DatasetInfo      `json:"dataset"`
	Sources         []DBOMSource     `json:"sources"`
	Transformations []Transformation `json:"transformations,omitempty"`
	Metadata        *DBOMMetadata    `json:"metadata,omitempty"`
}

// DatasetInfo describes the final dataset.
type DatasetInfo struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	Created     time.Time `json:"created"`
	Digest      Digest    `json:"digest"`
	Level       Level     `json:"level"`
}

// DBOMSource is one contributing source dataset.
type DBOMSource struct {
	Name            string `json:"name"`
	AttestationType string `json:"attestationType"`
	Level           Level  `json:"level"`
	AttestationRef  string `json:"attestationRef,omitempty"`
	Geography       string `json:"geography,omitempty"`
	License         string `json:"license,omitempty"`
}

// Transformation is one processing step in the lineage.
type Transformation struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	AttestationRef string `json:"attestationRef,omitempty"`
}

// DBOMMetadata carries document metadata.
type DBOMMetadata struct {
	Author    string     `json:"author,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Comment   string     `json:"comment,omitempty"`
}

// DBOMParams holds the required fields of a DBOM. ID is optional: when
// empty, a urn:dbom:<uuid> identifier is generated.
type DBOMParams struct {
	ID      string
	Dataset DatasetInfo
	Sources []DBOMSource
}

// DBOMOptions holds the optional fields.
type DBOMOptions struct {
	Transformations []Transformation
	Metadata        *DBOMMetadata
}

// NewDBOM builds a DBOM after validating all required fields. opts may be
// nil.
func NewDBOM(params DBOMParams, opts *DBOMOptions) (*DBOM, error) {
	if params.Dataset.Name == "" {
		return nil, &MissingFieldError{Field: "dataset.name"}
	}
	if len(params.Sources) == 0 {
		return nil, &MissingFieldError{Field: "sources"}
	}

	id := params.ID
	if id == "" {
		id = DBOMIDPrefix + uuid.NewString()
	} else if !strings.HasPrefix(id, DBOMIDPrefix) {
		return nil, &InvalidAttestationError{
			Reason: "DBOM ID must start with '" + DBOMIDPrefix + "'",
		}
	}

	d := &DBOM{
		DBOMVersion: DBOMVersion,
		DBOMID:      id,
		Dataset:     params.Dataset,
		Sources:     params.Sources,
	}
	d.Dataset.Created = timeUTC(params.Dataset.Created)

	if opts != nil {
		d.Transformations = opts.Transformations
		d.Metadata = opts.Metadata
	}
	return d, nil
}

// Validate checks the manifest's structural invariants.
func (d *DBOM) Validate() error {
	if len(d.Sources) == 0 {
		return &MissingFieldError{Field: "sources"}
	}
	if !strings.HasPrefix(d.DBOMID, DBOMIDPrefix) {
		return &InvalidAttestationError{
			Reason: "DBOM ID must start with '" + DBOMIDPrefix + "'",
		}
	}
	return nil
}
