package config

import "time"

// Gas limits. Lock and withdraw are fixed by the lockup contract's needs; the
// deploy limits match the migration scripts the contracts were shipped with.
const (
	GasLimitLockup       = uint64(250_000)   // transferAndCall into the lockup contract
	GasLimitWithdraw     = uint64(200_000)   // withdrawTokens
	GasLimitContractCall = uint64(200_000)   // generic state-change fallback when estimation fails
	GasLimitTokenDeploy  = uint64(3_712_388) // MDToken / MDTokenLockup creation
	GasLimitBankDeploy   = uint64(2_712_388) // MDTokenBank creation
	GasLimitDevelopment  = uint64(4_712_388) // development network default
	GasLimitInfura       = uint64(712_388)   // Infura networks default
)

// Timeout constants used across cmd and the lockup client.
const (
	RPCSelectTimeout = 10 * time.Second // BestEVM benchmark / RPC selection
	TxConfirmTimeout = 3 * time.Minute  // lock / withdraw confirmation wait
	TxDeployTimeout  = 5 * time.Minute  // per-contract deployment confirmation wait
	ReceiptPoll      = 2 * time.Second  // receipt polling interval
)
