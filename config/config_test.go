package config

import (
	"testing"
	"time"
)

func TestGetChainID(t *testing.T) {
	t.Run("explicit_env", func(t *testing.T) {
		t.Setenv("CHAIN_ID", "11155111")
		if got := GetChainID().Int64(); got != 11155111 {
			t.Errorf("GetChainID() = %d, want 11155111", got)
		}
	})

	t.Run("from_preset", func(t *testing.T) {
		t.Setenv("CHAIN_ID", "")
		t.Setenv("CHAIN_PRESET", "holesky")
		if got := GetChainID().Int64(); got != 17000 {
			t.Errorf("GetChainID() = %d, want 17000", got)
		}
	})

	t.Run("default_mainnet", func(t *testing.T) {
		t.Setenv("CHAIN_ID", "")
		t.Setenv("CHAIN_PRESET", "")
		if got := GetChainID().Int64(); got != 1 {
			t.Errorf("GetChainID() = %d, want 1", got)
		}
	})

	t.Run("garbage_ignored", func(t *testing.T) {
		t.Setenv("CHAIN_ID", "not-a-number")
		t.Setenv("CHAIN_PRESET", "")
		if got := GetChainID().Int64(); got != 1 {
			t.Errorf("GetChainID() = %d, want default 1", got)
		}
	})
}

func TestGetPrivateKeyStripsPrefix(t *testing.T) {
	t.Setenv("PRIVATE_KEY", "0xabc123")
	if got := GetPrivateKey(); got != "abc123" {
		t.Errorf("GetPrivateKey() = %q, want abc123", got)
	}
}

func TestGetProbeTimeout(t *testing.T) {
	t.Run("parsed", func(t *testing.T) {
		t.Setenv("PROBE_TIMEOUT", "5s")
		if got := GetProbeTimeout(); got != 5*time.Second {
			t.Errorf("GetProbeTimeout() = %s, want 5s", got)
		}
	})

	t.Run("invalid_falls_back", func(t *testing.T) {
		t.Setenv("PROBE_TIMEOUT", "soon")
		if got := GetProbeTimeout(); got != 10*time.Second {
			t.Errorf("GetProbeTimeout() = %s, want 10s default", got)
		}
	})
}

func TestApplyPreset(t *testing.T) {
	cfg, err := ApplyPreset("Sepolia")
	if err != nil {
		t.Fatalf("ApplyPreset() error = %v", err)
	}
	if cfg.ChainID.Int64() != 11155111 {
		t.Errorf("ChainID = %d, want 11155111", cfg.ChainID.Int64())
	}
	if cfg.RPCURL == "" {
		t.Error("RPCURL is empty")
	}

	if _, err := ApplyPreset("unknown-chain"); err == nil {
		t.Error("ApplyPreset() accepted an unknown preset")
	}
}

func TestListPresetsSorted(t *testing.T) {
	names := ListPresets()
	if len(names) != len(ChainPresets) {
		t.Fatalf("ListPresets() length = %d, want %d", len(names), len(ChainPresets))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("ListPresets() not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
