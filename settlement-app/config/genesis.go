package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

// Genesis describes the settlement deployment: chain identity, protocol
// parameters, system account addresses, initial allow-lists, funded
// accounts, and the genesis batch anchor.
type Genesis struct {
	ChainID         uint64           `yaml:"chain_id"`
	Owner           string           `yaml:"owner"`
	StateRoot       string           `yaml:"state_root"`
	DataHash        string           `yaml:"data_hash"`
	MaxNumTxInChunk uint64           `yaml:"max_num_tx_in_chunk"`
	Params          GenesisParams    `yaml:"params"`
	System          SystemAccounts   `yaml:"system"`
	Sequencers      []string         `yaml:"sequencers"`
	Provers         []string         `yaml:"provers"`
	Accounts        []GenesisAccount `yaml:"accounts"`
}

// GenesisParams is the initial system configuration.
type GenesisParams struct {
	MaxGasLimit               uint64 `yaml:"max_gas_limit"`
	BaseFeeOverhead           string `yaml:"base_fee_overhead"`
	BaseFeeScalar             string `yaml:"base_fee_scalar"`
	MaxDelayEnterEnforcedMode uint64 `yaml:"max_delay_enter_enforced_mode"`
	MaxDelayMessageQueue      uint64 `yaml:"max_delay_message_queue"`
}

// SystemAccounts names the protocol's fixed capability addresses.
type SystemAccounts struct {
	Messenger string `yaml:"messenger"`
	Gateway   string `yaml:"gateway"`
	Rollup    string `yaml:"rollup"`
	FeeVault  string `yaml:"fee_vault"`
}

// GenesisAccount is an account funded at startup.
type GenesisAccount struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

// LoadGenesis reads and validates a genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file %s: %w", path, err)
	}

	var g Genesis
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("failed to parse genesis file %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("genesis validation failed: %w", err)
	}
	return &g, nil
}

// Validate checks the genesis for completeness.
func (g *Genesis) Validate() error {
	if g.ChainID == 0 {
		return fmt.Errorf("chain_id is required")
	}
	if g.MaxNumTxInChunk == 0 {
		return fmt.Errorf("max_num_tx_in_chunk is required")
	}
	for name, addr := range map[string]string{
		"owner":            g.Owner,
		"system.messenger": g.System.Messenger,
		"system.gateway":   g.System.Gateway,
		"system.rollup":    g.System.Rollup,
		"system.fee_vault": g.System.FeeVault,
	} {
		if !common.IsHexAddress(strings.TrimSpace(addr)) {
			return fmt.Errorf("%s must be a hex address, got %q", name, addr)
		}
	}
	if g.StateRoot == "" || common.HexToHash(g.StateRoot) == (common.Hash{}) {
		return fmt.Errorf("state_root must be a nonzero hash")
	}
	for i, addr := range append(append([]string{}, g.Sequencers...), g.Provers...) {
		if !common.IsHexAddress(strings.TrimSpace(addr)) {
			return fmt.Errorf("allow-list entry %d is not a hex address: %q", i, addr)
		}
	}
	for i, acct := range g.Accounts {
		if !common.IsHexAddress(strings.TrimSpace(acct.Address)) {
			return fmt.Errorf("accounts[%d].address is not a hex address: %q", i, acct.Address)
		}
		if _, err := parseUint256(acct.Balance); err != nil {
			return fmt.Errorf("accounts[%d].balance: %w", i, err)
		}
	}
	if _, err := parseUint256(g.Params.BaseFeeOverhead); err != nil {
		return fmt.Errorf("params.base_fee_overhead: %w", err)
	}
	if _, err := parseUint256(g.Params.BaseFeeScalar); err != nil {
		return fmt.Errorf("params.base_fee_scalar: %w", err)
	}
	return nil
}

// OwnerAddress returns the parsed owner account.
func (g *Genesis) OwnerAddress() common.Address { return common.HexToAddress(g.Owner) }

// BaseFeeOverhead returns the parsed fee overhead.
func (g *Genesis) BaseFeeOverhead() *uint256.Int {
	v, _ := parseUint256(g.Params.BaseFeeOverhead)
	return v
}

// BaseFeeScalar returns the parsed fee scalar.
func (g *Genesis) BaseFeeScalar() *uint256.Int {
	v, _ := parseUint256(g.Params.BaseFeeScalar)
	return v
}

func parseUint256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty decimal value")
	}
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		return nil, fmt.Errorf("invalid decimal value %q: %w", s, err)
	}
	return v, nil
}
