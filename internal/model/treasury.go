package model

import (
	"math/big"
	"time"
)

// TreasurySnapshot is an immutable (timestamp, balance) pair appended on
// every balance change.
type TreasurySnapshot struct {
	At      time.Time
	Balance *big.Int
}

// TreasuryInfo is a point-in-time view of the treasury state. Amounts are
// in the smallest indivisible unit of the asset; display conversion is the
// caller's concern.
type TreasuryInfo struct {
	Balance *big.Int
	Inflow  *big.Int
	Outflow *big.Int
}

func (i TreasuryInfo) Clone() TreasuryInfo {
	return TreasuryInfo{
		Balance: new(big.Int).Set(i.Balance),
		Inflow:  new(big.Int).Set(i.Inflow),
		Outflow: new(big.Int).Set(i.Outflow),
	}
}
