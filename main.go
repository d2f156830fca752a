// eip7702-client - probe an Ethereum endpoint for EIP-7702 support and
// delegate an EOA to a contract with a type-0x04 SetCode transaction.
//
// Usage:
//
//	eip7702-client [options]
//
// Options:
//
//	-probe         Probe the endpoint for SetCode support (default command)
//	-delegate      Sign and submit a SetCode transaction delegating to -target
//	-build         Build and print a raw SetCode transaction without sending
//	-verify        Check that the account's code delegates to -target
//	-rpc           RPC endpoint URL (default: http://localhost:8545)
//	-chain-id      Chain ID for offline building (default: 1, or from env/preset)
//	-key           Private key hex for signing
//	-mnemonic      BIP-39 mnemonic for deriving the signing key
//	-target        Delegation target contract address
//	-nonce         Account nonce for offline building
//	-gas           Gas limit for the SetCode transaction (default: 100000)
//	-timeout       Probe timeout (default: 10s)
//	-retries       Probe attempts on transport failure (default: 3)
//	-preset        Chain preset (local, mainnet, sepolia, holesky)
//	-env           Path to .env file (default: .env in current directory)
//	-list-presets  List available chain presets
//
// Environment variables:
//
//	CHAIN_ID        Chain ID (overridden by -chain-id)
//	RPC_URL         RPC endpoint URL (overridden by -rpc)
//	PRIVATE_KEY     Signing key (no 0x prefix)
//	TARGET_ADDRESS  Delegation target contract address
//	CHAIN_PRESET    Chain preset name (e.g. sepolia)
//	PROBE_TIMEOUT   Probe timeout as a Go duration (e.g. 5s)
package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/pbkdf2"

	"github.com/stable-net/eip7702-client/config"
	"github.com/stable-net/eip7702-client/setcode"
)

func main() {
	// .env must be loaded before flag defaults are read from the
	// environment, so the -env flag is pre-parsed by hand.
	envLoaded := false
	for i, arg := range os.Args[1:] {
		if arg == "-env" && i+1 < len(os.Args)-1 {
			_ = config.Load(os.Args[i+2])
			envLoaded = true
			break
		} else if strings.HasPrefix(arg, "-env=") {
			_ = config.Load(strings.TrimPrefix(arg, "-env="))
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		_ = config.Load("")
	}

	_ = flag.String("env", "", "Path to .env file (default: .env in current directory)")
	preset := flag.String("preset", "", "Chain preset (local, mainnet, sepolia, holesky)")
	listPresets := flag.Bool("list-presets", false, "List available chain presets")

	probe := flag.Bool("probe", false, "Probe the endpoint for SetCode support")
	delegate := flag.Bool("delegate", false, "Sign and submit a SetCode delegation transaction")
	build := flag.Bool("build", false, "Build and print a raw SetCode transaction without sending")
	verify := flag.Bool("verify", false, "Check that the account's code delegates to -target")

	rpcURL := flag.String("rpc", config.GetRPCURL(), "RPC endpoint URL")
	chainID := flag.Int64("chain-id", config.GetChainID().Int64(), "Chain ID for offline building")
	keyHex := flag.String("key", config.GetPrivateKey(), "Private key hex for signing")
	mnemonic := flag.String("mnemonic", "", "BIP-39 mnemonic for deriving the signing key")
	targetHex := flag.String("target", config.GetTarget(), "Delegation target contract address")
	nonce := flag.Uint64("nonce", 0, "Account nonce for offline building")
	gasLimit := flag.Uint64("gas", 100000, "Gas limit for the SetCode transaction")
	timeout := flag.Duration("timeout", config.GetProbeTimeout(), "Probe timeout")
	retries := flag.Uint("retries", 3, "Probe attempts on transport failure")

	flag.Parse()

	if *listPresets {
		config.PrintPresets()
		return
	}

	if *preset != "" {
		presetConfig, err := config.ApplyPreset(*preset)
		if err != nil {
			fatal(err)
		}
		if !isFlagSet("chain-id") {
			*chainID = presetConfig.ChainID.Int64()
		}
		if !isFlagSet("rpc") {
			*rpcURL = presetConfig.RPCURL
		}
	}

	if *mnemonic != "" {
		derived, err := deriveKeyFromMnemonic(*mnemonic, 0)
		if err != nil {
			fatal(fmt.Errorf("failed to derive key from mnemonic: %w", err))
		}
		*keyHex = derived
	}

	ctx := context.Background()

	switch {
	case *delegate:
		runDelegate(ctx, *rpcURL, *keyHex, *targetHex, *gasLimit)
	case *build:
		runBuild(*chainID, *keyHex, *targetHex, *nonce, *gasLimit)
	case *verify:
		runVerify(ctx, *rpcURL, *keyHex, *targetHex)
	case *probe:
		runProbe(ctx, *rpcURL, *timeout, *retries)
	default:
		// probing is the default command
		runProbe(ctx, *rpcURL, *timeout, *retries)
	}
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// runProbe classifies the endpoint's SetCode support. Transport failures are
// retried; a confirmed negative is never retried.
func runProbe(ctx context.Context, rpcURL string, timeout time.Duration, attempts uint) {
	prober := setcode.NewProber(rpcURL, timeout)

	var result setcode.ProbeResult
	_ = retry.Do(
		func() error {
			result = prober.Probe(ctx)
			var transport *setcode.TransportError
			if result.Status == setcode.ProbeIndeterminate && errors.As(result.Err, &transport) {
				return transport
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)

	fmt.Print(setcode.FormatProbeResult(rpcURL, result))

	switch result.Status {
	case setcode.ProbeSupported:
		os.Exit(0)
	case setcode.ProbeUnsupported:
		os.Exit(1)
	default:
		os.Exit(2)
	}
}

func requireSigner(keyHex string) setcode.DigestSigner {
	if keyHex == "" {
		fatal(fmt.Errorf("a signing key is required (-key, -mnemonic or PRIVATE_KEY)"))
	}
	signer, err := setcode.NewKeySigner(keyHex)
	if err != nil {
		fatal(err)
	}
	return signer
}

func requireTarget(targetHex string) common.Address {
	if targetHex == "" {
		fatal(fmt.Errorf("a delegation target is required (-target or TARGET_ADDRESS)"))
	}
	if !common.IsHexAddress(targetHex) {
		fatal(fmt.Errorf("invalid target address: %s", targetHex))
	}
	return common.HexToAddress(targetHex)
}

func runDelegate(ctx context.Context, rpcURL, keyHex, targetHex string, gasLimit uint64) {
	signer := requireSigner(keyHex)
	target := requireTarget(targetHex)

	fmt.Printf("Account:  %s\n", signer.Address().Hex())
	fmt.Printf("Endpoint: %s\n", rpcURL)

	delegator, err := setcode.NewDelegator(ctx, rpcURL, signer)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Chain ID: %s\n", delegator.ChainID().String())

	result, err := delegator.Delegate(ctx, target, gasLimit)
	if err != nil {
		fatal(err)
	}
	fmt.Print(setcode.FormatSubmitResult(result))
}

// runBuild assembles and signs a SetCode transaction entirely offline and
// prints the raw envelope. The authorization nonce follows the
// self-broadcast rule (account nonce + 1).
func runBuild(chainID int64, keyHex, targetHex string, nonce, gasLimit uint64) {
	signer := requireSigner(keyHex)
	target := requireTarget(targetHex)

	id := uint256.NewInt(uint64(chainID))
	auth, err := setcode.SignAuthorization(signer, id, target, nonce+1)
	if err != nil {
		fatal(err)
	}

	to := signer.Address()
	tx := &setcode.SetCodeTx{
		ChainID:   *id,
		Nonce:     nonce,
		GasTipCap: *uint256.NewInt(1000000000),
		GasFeeCap: *uint256.NewInt(2000000000),
		Gas:       gasLimit,
		To:        &to,
		AuthList:  []setcode.Authorization{auth},
	}

	raw, err := setcode.BuildRawTransaction(tx, signer)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Account:  %s\n", signer.Address().Hex())
	fmt.Printf("Target:   %s\n", target.Hex())
	fmt.Print(setcode.FormatGasBreakdown(setcode.ComputeGasBreakdown(tx, nil)))
	fmt.Printf("\nRaw TX: %s\n", hexutil.Encode(raw))
}

func runVerify(ctx context.Context, rpcURL, keyHex, targetHex string) {
	signer := requireSigner(keyHex)
	target := requireTarget(targetHex)

	delegator, err := setcode.NewDelegator(ctx, rpcURL, signer)
	if err != nil {
		fatal(err)
	}

	if err := delegator.VerifyDelegation(ctx, target); err != nil {
		fatal(err)
	}
	fmt.Printf("Account %s delegates to %s\n", signer.Address().Hex(), target.Hex())
}

// deriveKeyFromMnemonic derives a private key from a BIP-39 mnemonic along
// the standard Ethereum path m/44'/60'/0'/0/accountIndex.
func deriveKeyFromMnemonic(mnemonic string, accountIndex uint32) (string, error) {
	words := strings.Fields(strings.ToLower(mnemonic))
	normalized := strings.Join(words, " ")

	// BIP-39 seed: PBKDF2-HMAC-SHA512 with an empty passphrase
	seed := pbkdf2.Key([]byte(normalized), []byte("mnemonic"), 2048, 64, sha512.New)

	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	key, chainCode := sum[:32], sum[32:]

	path := []uint32{
		0x8000002C, // 44' purpose
		0x8000003C, // 60' Ethereum
		0x80000000, // 0' account
		0x00000000, // external chain
		accountIndex,
	}

	var err error
	for _, index := range path {
		key, chainCode, err = deriveChildKey(key, chainCode, index)
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(key), nil
}

// deriveChildKey derives one BIP-32 child from the parent key and chain code.
func deriveChildKey(parentKey, chainCode []byte, index uint32) ([]byte, []byte, error) {
	data := make([]byte, 37)
	if index >= 0x80000000 {
		// hardened: 0x00 || parentKey || index
		copy(data[1:33], parentKey)
	} else {
		// normal: compressed parent pubkey || index
		copy(data[:33], compressedPubkey(parentKey))
	}
	binary.BigEndian.PutUint32(data[33:], index)

	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)

	il := new(big.Int).SetBytes(sum[:32])
	if il.Cmp(crypto.S256().Params().N) >= 0 {
		return nil, nil, fmt.Errorf("derived key out of range at index %d", index)
	}

	childKey := new(big.Int).Add(il, new(big.Int).SetBytes(parentKey))
	childKey.Mod(childKey, crypto.S256().Params().N)
	if childKey.Sign() == 0 {
		return nil, nil, fmt.Errorf("derived zero key at index %d", index)
	}

	keyBytes := make([]byte, 32)
	childKey.FillBytes(keyBytes)
	return keyBytes, sum[32:], nil
}

// compressedPubkey computes the compressed secp256k1 public key of priv.
func compressedPubkey(priv []byte) []byte {
	x, y := crypto.S256().ScalarBaseMult(priv)
	return crypto.CompressPubkey(&ecdsa.PublicKey{Curve: crypto.S256(), X: x, Y: y})
}
