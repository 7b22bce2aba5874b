package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/provenly/attest"
	"github.com/provenly/attest/internal/store"
	"github.com/provenly/attest/pkg/attestation"
	"github.com/provenly/attest/pkg/dsse"
	"github.com/provenly/attest/pkg/hash"
	"github.com/provenly/attest/pkg/keys"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "keygen":
		cmdKeygen(os.Args[2:])
	case "sign":
		cmdSign(os.Args[2:])
	case "verify":
		cmdVerify(os.Args[2:])
	case "inspect":
		cmdInspect(os.Args[2:])
	case "put":
		cmdPut(os.Args[2:])
	case "get":
		cmdGet(os.Args[2:])
	case "list":
		cmdList(os.Args[2:])
	case "version":
		fmt.Println(attest.Version)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: attest <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  keygen  -key <file> [-pub <file>]")
	fmt.Println("  sign    -key <file> -in <attestation.json> [-out <envelope.json>]")
	fmt.Println("  verify  -in <file.json> [-pub <file>]")
	fmt.Println("  inspect -in <file.json>")
	fmt.Println("  put     -store <dir> -in <envelope.json>")
	fmt.Println("  get     -store <dir> -digest <hex> [-out <file>]")
	fmt.Println("  list    -store <dir>")
	fmt.Println("  version")
	fmt.Println("Global flag: -config <attest.yaml> supplies default key and store paths.")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// newFlagSet wires the shared -config flag into a subcommand flag set.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	return fs, configPath
}

func loadConfig(path string) attest.Config {
	cfg, err := attest.LoadConfig(path)
	if err != nil {
		fatalf("Error loading config: %v", err)
	}
	return cfg
}

func cmdKeygen(args []string) {
	fs, configPath := newFlagSet("keygen")
	keyPath := fs.String("key", "", "private key output file")
	pubPath := fs.String("pub", "", "public key output file (optional)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *keyPath == "" {
		*keyPath = cfg.KeyPath
	}
	if *keyPath == "" {
		fatalf("keygen: -key is required")
	}

	signer, err := keys.Generate()
	if err != nil {
		fatalf("Error generating key: %v", err)
	}

	if err := os.WriteFile(*keyPath, []byte(signer.PEM()), 0o600); err != nil {
		fatalf("Error writing private key: %v", err)
	}
	if *pubPath != "" {
		if err := os.WriteFile(*pubPath, []byte(signer.Verifier().PEM()), 0o644); err != nil {
			fatalf("Error writing public key: %v", err)
		}
	}
	fmt.Printf("Generated key pair. Key ID: %s\n", signer.KeyID())
}

func loadSigner(keyPath string, cfg attest.Config) *keys.Signer {
	if keyPath == "" {
		keyPath = cfg.KeyPath
	}
	if keyPath == "" {
		fatalf("no signing key: pass -key or set keyPath in the config")
	}

	pem, err := os.ReadFile(keyPath)
	if err != nil {
		fatalf("Error reading key file: %v", err)
	}
	signer, err := keys.FromPEM(string(pem))
	if err != nil {
		fatalf("Error parsing key file: %v", err)
	}
	return signer
}

func cmdSign(args []string) {
	fs, configPath := newFlagSet("sign")
	keyPath := fs.String("key", "", "private key file")
	inPath := fs.String("in", "", "attestation JSON file")
	outPath := fs.String("out", "", "envelope output file (default stdout)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *inPath == "" {
		fatalf("sign: -in is required")
	}

	payload, err := os.ReadFile(*inPath)
	if err != nil {
		fatalf("Error reading attestation: %v", err)
	}
	if result := attest.Verify(payload); !result.Valid {
		fatalf("Refusing to sign an invalid attestation: %v", result.Messages)
	}

	signer := loadSigner(*keyPath, cfg)
	env, err := attest.Sign(json.RawMessage(payload), signer)
	if err != nil {
		fatalf("Error signing: %v", err)
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		fatalf("Error encoding envelope: %v", err)
	}
	writeOutput(*outPath, append(out, '\n'))
	fmt.Fprintf(os.Stderr, "Signed with key %s\n", signer.KeyID())
}

func cmdVerify(args []string) {
	fs, configPath := newFlagSet("verify")
	inPath := fs.String("in", "", "attestation or envelope JSON file")
	pubPath := fs.String("pub", "", "public key file (needed for envelopes)")
	fs.Parse(args)

	loadConfig(*configPath)
	if *inPath == "" {
		fatalf("verify: -in is required")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		fatalf("Error reading input: %v", err)
	}

	detected, err := attestation.DetectType(data)
	if err != nil {
		fatalf("Error detecting type: %v", err)
	}

	var result attestation.VerificationResult
	if detected == attestation.TypeSigned {
		if *pubPath == "" {
			fatalf("verify: signed envelope needs -pub")
		}
		pem, err := os.ReadFile(*pubPath)
		if err != nil {
			fatalf("Error reading public key: %v", err)
		}
		verifier, err := keys.VerifierFromPEM(string(pem))
		if err != nil {
			fatalf("Error parsing public key: %v", err)
		}

		var env dsse.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			fatalf("Error parsing envelope: %v", err)
		}
		result = attest.VerifyEnvelope(&env, verifier)
	} else {
		result = attest.Verify(data)
	}

	printResult(result)
	if !result.Valid {
		os.Exit(1)
	}
}

func printResult(result attestation.VerificationResult) {
	if result.Valid {
		fmt.Printf("VALID (%s)\n", result.Level)
	} else {
		fmt.Println("INVALID")
	}
	for _, msg := range result.Messages {
		fmt.Printf("  %s\n", msg)
	}
	for _, warn := range result.Warnings {
		fmt.Printf("  warning: %s\n", warn)
	}
}

func cmdInspect(args []string) {
	fs, _ := newFlagSet("inspect")
	inPath := fs.String("in", "", "attestation or envelope JSON file")
	fs.Parse(args)

	if *inPath == "" {
		fatalf("inspect: -in is required")
	}
	data, err := os.ReadFile(*inPath)
	if err != nil {
		fatalf("Error reading input: %v", err)
	}

	detected, err := attestation.DetectType(data)
	if err != nil {
		fatalf("Error detecting type: %v", err)
	}
	fmt.Printf("Type: %s\n", detected)

	if detected == attestation.TypeSigned {
		var env dsse.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			fatalf("Error parsing envelope: %v", err)
		}
		fmt.Printf("Payload type: %s\n", env.PayloadType)
		for _, sig := range env.Signatures {
			fmt.Printf("Signature key ID: %s\n", sig.KeyID)
		}
	}
}

func openStore(storePath string, cfg attest.Config) *store.Store {
	if storePath == "" {
		storePath = cfg.StorePath
	}
	if storePath == "" {
		fatalf("no store: pass -store or set storePath in the config")
	}
	if err := os.MkdirAll(storePath, 0o755); err != nil {
		fatalf("Error creating store directory: %v", err)
	}

	s, err := store.Open(store.Config{Path: storePath, Logger: cfg.Logger()})
	if err != nil {
		fatalf("Error opening store: %v", err)
	}
	return s
}

func cmdPut(args []string) {
	fs, configPath := newFlagSet("put")
	storePath := fs.String("store", "", "envelope store directory")
	inPath := fs.String("in", "", "envelope JSON file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *inPath == "" {
		fatalf("put: -in is required")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		fatalf("Error reading envelope: %v", err)
	}
	var env dsse.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		fatalf("Error parsing envelope: %v", err)
	}

	s := openStore(*storePath, cfg)
	defer s.Close()

	key, err := s.Put(&env)
	if err != nil {
		fatalf("Error storing envelope: %v", err)
	}
	fmt.Printf("Stored envelope. Payload digest: %s\n", key.Hex())
}

func cmdGet(args []string) {
	fs, configPath := newFlagSet("get")
	storePath := fs.String("store", "", "envelope store directory")
	digest := fs.String("digest", "", "payload digest (hex)")
	outPath := fs.String("out", "", "output file (default stdout)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *digest == "" {
		fatalf("get: -digest is required")
	}
	key, err := hash.FromHex(*digest)
	if err != nil {
		fatalf("Invalid digest: %v", err)
	}

	s := openStore(*storePath, cfg)
	defer s.Close()

	env, err := s.Get(key)
	if err != nil {
		fatalf("Error retrieving envelope: %v", err)
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		fatalf("Error encoding envelope: %v", err)
	}
	writeOutput(*outPath, append(out, '\n'))
}

func cmdList(args []string) {
	fs, configPath := newFlagSet("list")
	storePath := fs.String("store", "", "envelope store directory")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	s := openStore(*storePath, cfg)
	defer s.Close()

	digests, err := s.List()
	if err != nil {
		fatalf("Error listing envelopes: %v", err)
	}
	for _, d := range digests {
		fmt.Println(d.Hex())
	}
}

func writeOutput(path string, data []byte) {
	if path == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fatalf("Error writing output file: %v", err)
	}
}
