package contract

// BuiltinLockup is the ID of the MDT lockup interface.
const BuiltinLockup = "mdtlockup"

// mdtlockup is the lockup contract surface the client uses. getLockupRecord
// and canWithdrawTokens read msg.sender, so calls must carry a from address.
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          BuiltinLockup,
		Name:        "MDTokenLockup",
		Description: "MDT lockup program: lock records, bonus periods and withdrawals.",
		ABI:         lockupABI,
	})
}

var lockupABI = []ABIEntry{
	{
		Type: "constructor",
		Inputs: []ABIParam{
			{Name: "_token", Type: "address"},
			{Name: "_endTime", Type: "uint256"},
		},
		StateMutability: "nonpayable",
	},
	// ── Read ─────────────────────────────────────────────────────────────────
	{
		Name: "token", Type: "function",
		Outputs: []ABIParam{{Name: "", Type: "address"}}, StateMutability: "view",
	},
	{
		Name: "endTime", Type: "function",
		Outputs: []ABIParam{{Name: "", Type: "uint256"}}, StateMutability: "view",
	},
	{
		Name: "hasEnded", Type: "function",
		Outputs: []ABIParam{{Name: "", Type: "bool"}}, StateMutability: "view",
	},
	{
		Name: "getLockupRecord", Type: "function",
		Inputs: []ABIParam{{Name: "isPrivateSale", Type: "bool"}},
		Outputs: []ABIParam{
			{Name: "value", Type: "uint256"},
			{Name: "lockupPeriod", Type: "uint8"},
			{Name: "endTime", Type: "uint256"},
			{Name: "withdrawn", Type: "bool"},
			{Name: "withdrawnTime", Type: "uint256"},
		},
		StateMutability: "view",
	},
	{
		Name: "earlyLateBirdParticipantsHistory", Type: "function",
		Inputs:          []ABIParam{{Name: "", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "canWithdrawTokens", Type: "function",
		Inputs:          []ABIParam{{Name: "isPrivateSale", Type: "bool"}},
		Outputs:         []ABIParam{{Name: "", Type: "bool"}},
		StateMutability: "view",
	},
	// ── Write ────────────────────────────────────────────────────────────────
	{
		Name: "withdrawTokens", Type: "function",
		Inputs:          []ABIParam{{Name: "isPrivateSale", Type: "bool"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "tokenFallback", Type: "function",
		Inputs: []ABIParam{
			{Name: "_from", Type: "address"},
			{Name: "_value", Type: "uint256"},
			{Name: "_data", Type: "bytes"},
		},
		Outputs:         []ABIParam{{Name: "", Type: "bool"}},
		StateMutability: "nonpayable",
	},
}
