package attestation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/provenly/attest/pkg/dsse"
	"github.com/provenly/attest/pkg/keys"
)

func validOriginAttestation(t *testing.T) *OriginAttestation {
	t.Helper()
	a, err := NewOriginAttestation(OriginParams{
		Subjects:  testSubjects(),
		Origin:    testOrigin(),
		Collector: Collector{ID: "collector-7"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestVerifyDigest(t *testing.T) {
	data := []byte("payload bytes")
	d := NewDigest(data)

	if err := VerifyDigest(d, data); err != nil {
		t.Errorf("matching digest failed: %v", err)
	}

	err := VerifyDigest(d, []byte("other bytes"))
	var mismatch *HashMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected HashMismatchError, got %v", err)
	}
	if mismatch.Expected != d.SHA256 {
		t.Errorf("expected field = %q, want %q", mismatch.Expected, d.SHA256)
	}
}

func TestVerifyDigestHex(t *testing.T) {
	d := NewDigest([]byte("x"))
	if !VerifyDigestHex(d, strings.ToUpper(d.SHA256)) {
		t.Error("comparison should be case insensitive")
	}
	if VerifyDigestHex(d, strings.Repeat("0", 64)) {
		t.Error("different digest compared equal")
	}
}

func TestVerifyOriginStructure(t *testing.T) {
	result := VerifyOriginStructure(validOriginAttestation(t))
	if !result.Valid {
		t.Fatalf("valid attestation rejected: %v", result.Messages)
	}
	if result.Level != LevelL1 {
		t.Errorf("level = %s, want L1", result.Level)
	}
}

func TestVerifyOriginStructureRejectsShortDigest(t *testing.T) {
	a := validOriginAttestation(t)
	a.Subject[0].Digest.SHA256 = "abc123"

	result := VerifyOriginStructure(a)
	if result.Valid {
		t.Fatal("short digest accepted")
	}
	if len(result.Messages) == 0 || !strings.Contains(result.Messages[0], "hash length") {
		t.Errorf("messages = %v", result.Messages)
	}
}

func TestVerifyTransformStructureChecksInputDigests(t *testing.T) {
	a, err := NewTransformAttestation(TransformParams{
		Subjects:  testSubjects(),
		Inputs:    []InputReference{{Name: "in", Digest: Digest{SHA256: "deadbeef"}}},
		Transform: TransformDefinition{Name: "copy"},
		Executor:  Executor{ID: "exec"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	result := VerifyTransformStructure(a)
	if result.Valid {
		t.Error("bad input digest accepted")
	}

	a.Predicate.Inputs[0].Digest = NewDigest([]byte("in"))
	result = VerifyTransformStructure(a)
	if !result.Valid || result.Level != LevelL1 {
		t.Errorf("valid transform rejected: %v", result.Messages)
	}
}

func TestVerifyStreamWindowStructure(t *testing.T) {
	newWindow := func(t *testing.T) *StreamWindowAttestation {
		a, err := NewStreamWindowAttestation(StreamWindowParams{
			Subjects: testSubjects(),
			Stream:   StreamDescriptor{ID: "orders"},
			Window:   WindowDescriptor{Type: WindowTumbling, Duration: "PT5M"},
			Integrity: IntegrityDescriptor{
				MerkleTree: MerkleTreeDescriptor{
					LeafCount: 42,
					Root:      strings.Repeat("cd", 32),
				},
			},
		}, nil)
		if err != nil {
			t.Fatal(err)
		}
		return a
	}

	t.Run("valid", func(t *testing.T) {
		result := VerifyStreamWindowStructure(newWindow(t))
		if !result.Valid || result.Level != LevelL1 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("short root", func(t *testing.T) {
		a := newWindow(t)
		a.Predicate.Integrity.MerkleTree.Root = "abcd"
		if VerifyStreamWindowStructure(a).Valid {
			t.Error("short root accepted")
		}
	})

	t.Run("zero leaves", func(t *testing.T) {
		a := newWindow(t)
		a.Predicate.Integrity.MerkleTree.LeafCount = 0
		if VerifyStreamWindowStructure(a).Valid {
			t.Error("empty tree accepted")
		}
	})

	t.Run("chain missing previous window id", func(t *testing.T) {
		a := newWindow(t)
		a.Predicate.Integrity.Chain = &ChainDescriptor{
			PreviousMerkleRoot: strings.Repeat("ef", 32),
		}
		if VerifyStreamWindowStructure(a).Valid {
			t.Error("chained window without previous ID accepted")
		}
	})

	t.Run("complete chain", func(t *testing.T) {
		a := newWindow(t)
		a.Predicate.Integrity.Chain = &ChainDescriptor{
			PreviousWindowID:   "orders-w41",
			PreviousMerkleRoot: strings.Repeat("ef", 32),
			ChainLength:        42,
		}
		if !VerifyStreamWindowStructure(a).Valid {
			t.Error("complete chain rejected")
		}
	})
}

func TestVerifyDBOMStructure(t *testing.T) {
	d, err := NewDBOM(DBOMParams{
		Dataset: DatasetInfo{
			Name:    "clean-orders",
			Version: "1.0.0",
			Created: time.Now(),
			Digest:  NewDigest([]byte("dataset")),
			Level:   LevelL1,
		},
		Sources: []DBOMSource{{Name: "raw", AttestationType: "origin", Level: LevelL1}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result := VerifyDBOMStructure(d); !result.Valid {
		t.Errorf("valid DBOM rejected: %v", result.Messages)
	}

	d.Dataset.Digest.SHA256 = "short"
	if VerifyDBOMStructure(d).Valid {
		t.Error("bad dataset digest accepted")
	}
}

func TestVerifySigned(t *testing.T) {
	signer, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}

	env, err := dsse.Sign(validOriginAttestation(t), dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	result := VerifySigned[OriginAttestation](env, signer.Verifier())
	if !result.Valid {
		t.Fatalf("signed attestation rejected: %v", result.Messages)
	}
	if result.Level != LevelL2 {
		t.Errorf("level = %s, want L2", result.Level)
	}

	found := false
	for _, msg := range result.Messages {
		if strings.Contains(msg, signer.KeyID()) {
			found = true
		}
	}
	if !found {
		t.Errorf("messages do not name the key: %v", result.Messages)
	}
}

func TestVerifySignedWrongKey(t *testing.T) {
	signer, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	other, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}

	env, err := dsse.Sign(validOriginAttestation(t), dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	if VerifySigned[OriginAttestation](env, other.Verifier()).Valid {
		t.Error("envelope verified with unrelated key")
	}
}

func TestVerifyJSONDispatch(t *testing.T) {
	originJSON, err := json.Marshal(validOriginAttestation(t))
	if err != nil {
		t.Fatal(err)
	}

	result := VerifyJSON(originJSON)
	if !result.Valid || result.Level != LevelL1 {
		t.Errorf("origin dispatch: %+v", result)
	}

	if VerifyJSON([]byte(`{"foo":1}`)).Valid {
		t.Error("unknown document accepted")
	}
}

func TestVerifyJSONSignedNeedsKey(t *testing.T) {
	signer, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	env, err := dsse.Sign(validOriginAttestation(t), dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}
	envJSON, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}

	result := VerifyJSON(envJSON)
	if result.Valid {
		t.Fatal("signed envelope verified without a key")
	}
	if len(result.Messages) == 0 || !strings.Contains(result.Messages[0], "verifier key") {
		t.Errorf("messages = %v", result.Messages)
	}
}
