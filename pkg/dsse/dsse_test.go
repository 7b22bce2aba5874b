package dsse_test

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/provenly/attest/pkg/dsse"
	"github.com/provenly/attest/pkg/keys"
)

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSignAndVerify(t *testing.T) {
	signer, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}

	env, err := dsse.Sign(testPayload{Name: "window-1", Count: 7}, dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	if env.PayloadType != dsse.PayloadTypeInToto {
		t.Errorf("payload type = %q", env.PayloadType)
	}
	if len(env.Signatures) != 1 {
		t.Fatalf("signature count = %d, want 1", len(env.Signatures))
	}
	if env.Signatures[0].KeyID != signer.KeyID() {
		t.Error("signature key id must match the signer")
	}

	ok, err := env.Verify(signer.Verifier())
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("envelope should verify with the signing key")
	}
}

func TestVerifyDifferentKey(t *testing.T) {
	signer, _ := keys.Generate()
	other, _ := keys.Generate()

	env, err := dsse.Sign(testPayload{Name: "x"}, dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := env.Verify(other.Verifier())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("envelope must not verify under an unrelated key")
	}
}

func TestVerifyDetailedDistinguishesCases(t *testing.T) {
	signer, _ := keys.Generate()
	other, _ := keys.Generate()

	env, err := dsse.Sign(testPayload{Name: "x"}, dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	status, err := env.VerifyDetailed(other.Verifier())
	if err != nil {
		t.Fatal(err)
	}
	if status != dsse.StatusNoMatchingKey {
		t.Errorf("status = %v, want no matching key", status)
	}

	// Replace the signature body while keeping the key id: now the key
	// matches but the signature is wrong.
	tampered := *env
	tampered.Payload = base64.StdEncoding.EncodeToString([]byte(`{"name":"y"}`))
	status, err = tampered.VerifyDetailed(signer.Verifier())
	if err != nil {
		t.Fatal(err)
	}
	if status != dsse.StatusInvalidSignature {
		t.Errorf("status = %v, want invalid signature", status)
	}
}

func TestTamperedPayloadFailsVerify(t *testing.T) {
	signer, _ := keys.Generate()

	env, err := dsse.Sign(testPayload{Name: "a"}, dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	env.Payload = base64.StdEncoding.EncodeToString([]byte(`{"name":"b"}`))
	ok, err := env.Verify(signer.Verifier())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("tampered payload must not verify")
	}
}

func TestTamperedPayloadTypeFailsVerify(t *testing.T) {
	signer, _ := keys.Generate()

	env, err := dsse.Sign(testPayload{Name: "a"}, dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	// The PAE binds the payload type, so changing it alone must break the
	// signature even though the payload is untouched.
	env.PayloadType = "application/vnd.other+json"
	ok, err := env.Verify(signer.Verifier())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("changed payload type must not verify")
	}
}

func TestAnyMatchingFailureFailsAll(t *testing.T) {
	signer, _ := keys.Generate()

	env, err := dsse.Sign(testPayload{Name: "a"}, dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	// Append a second entry with the same key id but a garbage signature.
	env.Signatures = append(env.Signatures, dsse.Signature{
		KeyID: signer.KeyID(),
		Sig:   base64.StdEncoding.EncodeToString(make([]byte, 64)),
	})

	ok, err := env.Verify(signer.Verifier())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("one bad matching signature must fail the whole call")
	}
}

func TestMalformedSignatureEncoding(t *testing.T) {
	signer, _ := keys.Generate()

	env, err := dsse.Sign(testPayload{Name: "a"}, dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	env.Signatures[0].Sig = "!!!not base64!!!"
	_, err = env.Verify(signer.Verifier())
	if !errors.Is(err, keys.ErrMalformedSignature) {
		t.Errorf("expected ErrMalformedSignature, got %v", err)
	}
}

func TestDecodePayloadRoundTrip(t *testing.T) {
	signer, _ := keys.Generate()
	payload := testPayload{Name: "round", Count: 42}

	env, err := dsse.Sign(payload, dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := dsse.DecodePayload[testPayload](env)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != payload {
		t.Errorf("decoded = %+v, want %+v", decoded, payload)
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	env := &dsse.Envelope{
		PayloadType: dsse.PayloadTypeInToto,
		Payload:     "%%%",
	}
	_, err := dsse.DecodePayload[testPayload](env)
	if !errors.Is(err, dsse.ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for bad base64, got %v", err)
	}

	env.Payload = base64.StdEncoding.EncodeToString([]byte("not json"))
	_, err = dsse.DecodePayload[testPayload](env)
	if !errors.Is(err, dsse.ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for bad JSON, got %v", err)
	}
}

func TestPAEFormat(t *testing.T) {
	pae := dsse.PAE("application/vnd.in-toto+json", "cGF5bG9hZA==")
	assert.Equal(t, "DSSEv1 application/vnd.in-toto+json cGF5bG9hZA==", string(pae))
}

func TestEnvelopeJSONShape(t *testing.T) {
	signer, _ := keys.Generate()

	env, err := dsse.Sign(testPayload{Name: "shape"}, dsse.PayloadTypeInToto, signer)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(env)
	assert.NoError(t, err)

	var raw map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "payloadType")
	assert.Contains(t, raw, "payload")
	assert.Contains(t, raw, "signatures")

	var sigs []map[string]string
	assert.NoError(t, json.Unmarshal(raw["signatures"], &sigs))
	assert.Len(t, sigs, 1)
	assert.Contains(t, sigs[0], "keyid")
	assert.Contains(t, sigs[0], "sig")
}
