// Command hecctl is a thin CLI over the HEC library: it exercises
// key generation, encryption, homomorphic addition and decryption in one
// process, and can persist a generated secret key's raw CRT encoding into a
// keystore.Store as a demonstration of that package's at-rest format.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/config"
	"github.com/privacyfl/hec/fhe"
	"github.com/privacyfl/hec/keystore"
	"github.com/privacyfl/hec/rlwe"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "demo":
		err = runDemo(os.Args[2:])
	case "keygen":
		err = runKeygen(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "hecctl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: hecctl <demo|keygen> [flags]")
}

func resolveParameters(cfgPath string, security int) (rlwe.Parameters, error) {
	if cfgPath != "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return rlwe.Parameters{}, err
		}
		return cfg.Parameters()
	}
	return rlwe.NewParametersFromSecurityLevel(rlwe.SecurityLevel(security))
}

func parseValues(raw string) ([]uint64, error) {
	if raw == "" {
		return nil, fmt.Errorf("no -values given")
	}
	parts := strings.Split(raw, ",")
	out := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing value %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

// runDemo generates a key set, encrypts two slot vectors, adds them
// homomorphically, decrypts the result and prints it, exercising the
// library's core ciphertext path end to end.
func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to a YAML/JSON config file")
	security := fs.Int("security", 128, "security level if -config is not given (128, 192, 256)")
	valuesA := fs.String("a", "1,2,3", "comma-separated plaintext integers for operand A")
	valuesB := fs.String("b", "4,5,6", "comma-separated plaintext integers for operand B")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params, err := resolveParameters(*cfgPath, *security)
	if err != nil {
		return err
	}
	slotsA, err := parseValues(*valuesA)
	if err != nil {
		return err
	}
	slotsB, err := parseValues(*valuesB)
	if err != nil {
		return err
	}
	if len(slotsA) > params.N || len(slotsB) > params.N {
		return fmt.Errorf("at most %d values per operand", params.N)
	}
	// Encode takes exactly N slots, so pad both operands with zeros.
	count := len(slotsA)
	slotsA = append(slotsA, make([]uint64, params.N-len(slotsA))...)
	slotsB = append(slotsB, make([]uint64, params.N-len(slotsB))...)

	scheme := fhe.NewScheme(params)
	keySet, err := scheme.KeyGen(arith.DefaultPRNG)
	if err != nil {
		return err
	}

	ctA, err := scheme.Encrypt(slotsA, keySet.Public, arith.DefaultPRNG)
	if err != nil {
		return err
	}
	ctB, err := scheme.Encrypt(slotsB, keySet.Public, arith.DefaultPRNG)
	if err != nil {
		return err
	}

	ctSum, err := scheme.Add(ctA, ctB)
	if err != nil {
		return err
	}

	result, err := scheme.Decrypt(ctSum, keySet.Secret)
	if err != nil {
		return err
	}

	fmt.Printf("N=%d T=%d security=%d\n", params.N, params.T, params.Security)
	fmt.Println("result:", result[:count])
	return nil
}

// runKeygen generates a key set and persists the secret key's raw CRT
// encoding into a keystore.Store, demonstrating the at-rest sealing format;
// the stored bytes are opaque key material, not a format this command can
// reload into a usable SecretKey on its own.
func runKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to a YAML/JSON config file")
	security := fs.Int("security", 128, "security level if -config is not given")
	store := fs.String("store", "./hec-keys", "key store directory")
	masterKey := fs.String("masterkey", "", "32-byte store master key")
	id := fs.String("id", "default", "key id to save under")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *masterKey == "" {
		return fmt.Errorf("-masterkey is required")
	}

	params, err := resolveParameters(*cfgPath, *security)
	if err != nil {
		return err
	}

	scheme := fhe.NewScheme(params)
	keySet, err := scheme.KeyGen(arith.DefaultPRNG)
	if err != nil {
		return err
	}

	skBytes, err := rlwe.MarshalCRT(keySet.Secret.Value)
	if err != nil {
		return err
	}

	masterKeyBytes := make([]byte, 32)
	copy(masterKeyBytes, []byte(*masterKey))

	s, err := keystore.Open(*store, masterKeyBytes, 64)
	if err != nil {
		return err
	}
	meta := keystore.Metadata{
		Scheme:            "BGV",
		SecurityLevel:     int(params.Security),
		Type:              "secret",
		PolyModulusDegree: params.N,
		PlainModulus:      params.T,
		CoeffModulus:      params.QBasis.Primes,
	}
	if err := s.Save(*id, skBytes, meta); err != nil {
		return err
	}

	fmt.Printf("generated and sealed key %q (N=%d, T=%d, security=%d) in %s\n", *id, params.N, params.T, params.Security, *store)
	return nil
}
