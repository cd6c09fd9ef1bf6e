package config

// Config holds all mdtlockup configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network" mapstructure:"default_network"`
	DefaultWallet  string              `json:"default_wallet"  mapstructure:"default_wallet"`
	RPCAlgorithm   string              `json:"rpc_algorithm"   mapstructure:"rpc_algorithm"`   // "fastest" | "round-robin" | "failover"
	WatchInterval  int                 `json:"watch_interval"  mapstructure:"watch_interval"`  // seconds, status --live
	LockupClosed   bool                `json:"lockup_closed"   mapstructure:"lockup_closed"`   // hide the lock form even before hasEnded
	LogLevel       string              `json:"log_level"       mapstructure:"log_level"`
	CustomRPCs     map[string][]string `json:"custom_rpcs"     mapstructure:"custom_rpcs"`

	// Secrets: read from the environment or .env only.
	InfuraToken      string `json:"-" mapstructure:"infura_token"`
	DeployerMnemonic string `json:"-" mapstructure:"deployer_mnemonic"`

	// internal: config dir path used for Save()
	configDir string
}
