package attestation

import (
	"encoding/json"
	"fmt"
)

// Type classifies a raw attestation document by its top-level shape.
type Type string

const (
	TypeOrigin       Type = "origin"
	TypeTransform    Type = "transform"
	TypeStreamWindow Type = "stream-window"
	TypeDBOM         Type = "dbom"
	TypeSigned       Type = "signed"
)

// DetectType inspects the top-level keys of a JSON document and classifies
// it without fully parsing the payload. The checks run in a fixed priority
// order: signed envelope, then known predicate types, then DBOM. An
// unrecognized shape yields an InvalidAttestationError.
func DetectType(data []byte) (Type, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return "", &InvalidAttestationError{
			Reason: fmt.Sprintf("not a JSON object: %v", err),
		}
	}

	if _, hasType := top["payloadType"]; hasType {
		if _, hasSigs := top["signatures"]; hasSigs {
			return TypeSigned, nil
		}
	}

	if raw, ok := top["predicateType"]; ok {
		var predicateType string
		if err := json.Unmarshal(raw, &predicateType); err == nil {
			switch predicateType {
			case OriginPredicateType:
				return TypeOrigin, nil
			case TransformPredicateType:
				return TypeTransform, nil
			case StreamWindowPredicateType:
				return TypeStreamWindow, nil
			}
		}
	}

	if _, hasVersion := top["dbomVersion"]; hasVersion {
		if _, hasID := top["dbomId"]; hasID {
			return TypeDBOM, nil
		}
	}

	return "", &InvalidAttestationError{Reason: "unknown attestation type"}
}
