// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

// Address wraps quai.Address with yaml decoding.
type Address struct {
	quai.Address
}

func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		a.Address = quai.Address{}
		return nil
	}
	parsed, err := quai.ParseAddress(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid address %q", raw)
	}
	a.Address = parsed
	return nil
}

// Amount is a big integer that unmarshals from a yaml decimal string.
type Amount struct {
	*big.Int
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		a.Int = new(big.Int)
		return nil
	}
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok || value.Sign() < 0 {
		return errors.Errorf("invalid amount %q", raw)
	}
	a.Int = value
	return nil
}

// Num returns the amount, never nil.
func (a *Amount) Num() *big.Int {
	if a == nil || a.Int == nil {
		return new(big.Int)
	}
	return a.Int
}

// NativePoolConfig parameterizes the duration-boosted QUAI pool.
type NativePoolConfig struct {
	Address      Address `yaml:"address"`
	EmissionRate *Amount `yaml:"emissionRate"` // per second
	PoolLimit    *Amount `yaml:"poolLimit"`    // 0 = unlimited
	ExitWindow   uint64  `yaml:"exitWindow"`   // seconds, 0 = default
	RewardDelay  uint64  `yaml:"rewardDelay"`  // seconds, 0 = default
	RewardFund   *Amount `yaml:"rewardFund"`   // seeded at genesis
}

// LPPoolConfig parameterizes the LP-token pool.
type LPPoolConfig struct {
	Address        Address `yaml:"address"`
	LPToken        Address `yaml:"lpToken"`
	RewardPerBlock *Amount `yaml:"rewardPerBlock"`
	LockDuration   uint64  `yaml:"lockDuration"` // blocks, 0 = default
	GracePeriod    uint64  `yaml:"gracePeriod"`  // blocks, 0 = default
	RewardFund     *Amount `yaml:"rewardFund"`   // seeded at genesis
}

// Allocation seeds one account at genesis.
type Allocation struct {
	Address Address `yaml:"address"`
	Balance *Amount `yaml:"balance"`
	LPUnits *Amount `yaml:"lpUnits"`
}

// Config is the daemon's yaml configuration.
type Config struct {
	GenesisTime uint64           `yaml:"genesisTime"`
	Owner       Address          `yaml:"owner"`
	NativePool  NativePoolConfig `yaml:"nativePool"`
	LPPool      LPPoolConfig     `yaml:"lpPool"`
	Allocations []Allocation     `yaml:"allocations"`
}

// LoadConfig reads and validates the yaml config at path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Owner.IsZero() {
		return errors.New("config: owner is required")
	}
	if c.GenesisTime == 0 {
		return errors.New("config: genesisTime is required")
	}
	if c.NativePool.Address.IsZero() {
		return errors.New("config: nativePool.address is required")
	}
	if c.LPPool.Address.IsZero() {
		return errors.New("config: lpPool.address is required")
	}
	if c.LPPool.LPToken.IsZero() {
		return errors.New("config: lpPool.lpToken is required")
	}
	if c.NativePool.Address == c.LPPool.Address {
		return errors.New("config: pool addresses must differ")
	}
	return nil
}
