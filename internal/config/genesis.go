package config

import (
	"errors"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"

	"dao-governance/internal/governance"
	"dao-governance/internal/identity"
)

type genesisFile struct {
	Owner          string   `yaml:"owner"`
	Members        []string `yaml:"members"`
	InitialBalance string   `yaml:"initialBalance"`
}

// LoadGenesis reads the initial DAO state from a YAML file: the owner
// address, optional pre-authorized members and an optional starting
// treasury balance.
func LoadGenesis(path string) (governance.Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return governance.Genesis{}, errors.New("failed to read the genesis file: " + err.Error())
	}
	return ParseGenesis(raw)
}

func ParseGenesis(raw []byte) (governance.Genesis, error) {
	var file genesisFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return governance.Genesis{}, errors.New("failed to parse the genesis file: " + err.Error())
	}

	owner, err := identity.ParseAddress(file.Owner)
	if err != nil {
		return governance.Genesis{}, errors.New("genesis owner: " + err.Error())
	}

	genesis := governance.Genesis{Owner: owner}
	for _, raw := range file.Members {
		member, err := identity.ParseAddress(raw)
		if err != nil {
			return governance.Genesis{}, errors.New("genesis member: " + err.Error())
		}
		genesis.Members = append(genesis.Members, member)
	}

	if file.InitialBalance != "" {
		balance, ok := new(big.Int).SetString(file.InitialBalance, 10)
		if !ok {
			return governance.Genesis{}, errors.New("genesis initialBalance is not a decimal integer: " + file.InitialBalance)
		}
		genesis.InitialBalance = balance
	}

	return genesis, nil
}
