// Package config resolves configuration for the EIP-7702 client from .env
// files, environment variables and chain presets. Resolved values are passed
// explicitly into the library; nothing in here is consulted after startup.
package config

import (
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds resolved configuration values.
type Config struct {
	ChainID      *big.Int
	RPCURL       string
	PrivateKey   string
	Target       string
	ProbeTimeout time.Duration
}

// ChainPreset is a predefined chain configuration.
type ChainPreset struct {
	Name    string
	ChainID *big.Int
	RPCURL  string
}

// ChainPresets contains predefined configurations for common networks.
var ChainPresets = map[string]ChainPreset{
	"local": {
		Name:    "local",
		ChainID: big.NewInt(31337),
		RPCURL:  "http://localhost:8545",
	},
	"mainnet": {
		Name:    "mainnet",
		ChainID: big.NewInt(1),
		RPCURL:  "https://eth.llamarpc.com",
	},
	"sepolia": {
		Name:    "sepolia",
		ChainID: big.NewInt(11155111),
		RPCURL:  "https://rpc.sepolia.org",
	},
	"holesky": {
		Name:    "holesky",
		ChainID: big.NewInt(17000),
		RPCURL:  "https://rpc.holesky.ethpandaops.io",
	},
}

// Load reads a .env file into the process environment. A missing default
// .env is not an error.
func Load(envPath string) error {
	if envPath != "" {
		return godotenv.Load(envPath)
	}
	_ = godotenv.Load()
	return nil
}

// GetChainID returns the chain id from CHAIN_ID, the CHAIN_PRESET, or
// mainnet as the default.
func GetChainID() *big.Int {
	if val := os.Getenv("CHAIN_ID"); val != "" {
		if id, ok := new(big.Int).SetString(val, 10); ok {
			return id
		}
	}
	if preset := os.Getenv("CHAIN_PRESET"); preset != "" {
		if p, ok := GetChainPreset(preset); ok {
			return p.ChainID
		}
	}
	return big.NewInt(1)
}

// GetRPCURL returns the endpoint URL from RPC_URL, the CHAIN_PRESET, or a
// local node as the default.
func GetRPCURL() string {
	if val := os.Getenv("RPC_URL"); val != "" {
		return val
	}
	if preset := os.Getenv("CHAIN_PRESET"); preset != "" {
		if p, ok := GetChainPreset(preset); ok {
			return p.RPCURL
		}
	}
	return "http://localhost:8545"
}

// GetPrivateKey returns PRIVATE_KEY without any 0x prefix, empty if unset.
func GetPrivateKey() string {
	return strings.TrimPrefix(os.Getenv("PRIVATE_KEY"), "0x")
}

// GetTarget returns the delegation target from TARGET_ADDRESS, empty if
// unset.
func GetTarget() string {
	return os.Getenv("TARGET_ADDRESS")
}

// GetProbeTimeout returns the probe timeout from PROBE_TIMEOUT (a Go
// duration string, e.g. "5s"), or 10s as the default.
func GetProbeTimeout() time.Duration {
	if val := os.Getenv("PROBE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return 10 * time.Second
}

// GetChainPreset returns a preset by name (case-insensitive).
func GetChainPreset(name string) (ChainPreset, bool) {
	preset, ok := ChainPresets[strings.ToLower(name)]
	return preset, ok
}

// ApplyPreset returns configuration from a named preset.
func ApplyPreset(name string) (*Config, error) {
	preset, ok := GetChainPreset(name)
	if !ok {
		return nil, fmt.Errorf("unknown chain preset: %s (available: %s)", name, strings.Join(ListPresets(), ", "))
	}
	return &Config{
		ChainID: preset.ChainID,
		RPCURL:  preset.RPCURL,
	}, nil
}

// ListPresets returns all preset names sorted alphabetically.
func ListPresets() []string {
	names := make([]string, 0, len(ChainPresets))
	for name := range ChainPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PrintPresets prints all available presets to stdout.
func PrintPresets() {
	fmt.Println("Available chain presets:")
	for _, name := range ListPresets() {
		p := ChainPresets[name]
		fmt.Printf("  %-10s chainId: %-10s rpc: %s\n", name, p.ChainID.String(), p.RPCURL)
	}
}
