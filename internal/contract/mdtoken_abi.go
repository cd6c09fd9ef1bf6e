package contract

// BuiltinMDToken is the ID of the MDT token interface.
const BuiltinMDToken = "mdtoken"

// mdtoken is the MDT token: ERC-20 plus ERC-677 transferAndCall, which the
// lockup contract receives through tokenFallback.
//
//	balanceOf(address)                     → 0x70a08231
//	transfer(address,uint256)              → 0xa9059cbb
//	transferAndCall(address,uint256,bytes) → 0x4000aea0
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          BuiltinMDToken,
		Name:        "MDToken (ERC-20 + ERC-677)",
		Description: "MDT token. transferAndCall carries the lockup period code.",
		ABI:         mdtokenABI,
	})
}

var mdtokenABI = []ABIEntry{
	{
		Type: "constructor",
		Inputs: []ABIParam{
			{Name: "tokenSale", Type: "address"},
			{Name: "mdtTeamAddress", Type: "address"},
			{Name: "userGrowthAddress", Type: "address"},
			{Name: "investorsAddress", Type: "address"},
			{Name: "mdtFoundationAddress", Type: "address"},
			{Name: "presaleAmount", Type: "uint256"},
			{Name: "earlybirdAmount", Type: "uint256"},
		},
		StateMutability: "nonpayable",
	},
	// ── Read ─────────────────────────────────────────────────────────────────
	{
		Name: "name", Type: "function",
		Outputs: []ABIParam{{Name: "", Type: "string"}}, StateMutability: "view",
	},
	{
		Name: "symbol", Type: "function",
		Outputs: []ABIParam{{Name: "", Type: "string"}}, StateMutability: "view",
	},
	{
		Name: "decimals", Type: "function",
		Outputs: []ABIParam{{Name: "", Type: "uint8"}}, StateMutability: "view",
	},
	{
		Name: "totalSupply", Type: "function",
		Outputs: []ABIParam{{Name: "", Type: "uint256"}}, StateMutability: "view",
	},
	{
		Name: "balanceOf", Type: "function",
		Inputs:          []ABIParam{{Name: "_owner", Type: "address"}},
		Outputs:         []ABIParam{{Name: "balance", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "allowance", Type: "function",
		Inputs:          []ABIParam{{Name: "_owner", Type: "address"}, {Name: "_spender", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	// ── Write ────────────────────────────────────────────────────────────────
	{
		Name: "transfer", Type: "function",
		Inputs:          []ABIParam{{Name: "_to", Type: "address"}, {Name: "_value", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "", Type: "bool"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "approve", Type: "function",
		Inputs:          []ABIParam{{Name: "_spender", Type: "address"}, {Name: "_value", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "", Type: "bool"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "transferFrom", Type: "function",
		Inputs: []ABIParam{
			{Name: "_from", Type: "address"},
			{Name: "_to", Type: "address"},
			{Name: "_value", Type: "uint256"},
		},
		Outputs:         []ABIParam{{Name: "", Type: "bool"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "transferAndCall", Type: "function",
		Inputs: []ABIParam{
			{Name: "_to", Type: "address"},
			{Name: "_value", Type: "uint256"},
			{Name: "_data", Type: "bytes"},
		},
		Outputs:         []ABIParam{{Name: "success", Type: "bool"}},
		StateMutability: "nonpayable",
	},
	// ── Events ───────────────────────────────────────────────────────────────
	{
		Name: "Transfer", Type: "event",
		Inputs: []ABIParam{
			{Name: "from", Type: "address", Indexed: true},
			{Name: "to", Type: "address", Indexed: true},
			{Name: "value", Type: "uint256"},
		},
	},
	{
		Name: "Approval", Type: "event",
		Inputs: []ABIParam{
			{Name: "owner", Type: "address", Indexed: true},
			{Name: "spender", Type: "address", Indexed: true},
			{Name: "value", Type: "uint256"},
		},
	},
}
