package config

const (
	defaultOutputDir             = "~/.local/share/tokenark/backups"
	defaultLogDir                = "~/.local/share/tokenark/logs"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultMaxRetries            = 3
	defaultRetryBaseSeconds      = 1
	defaultRetryMaxSeconds       = 10
	defaultAttemptTimeoutSeconds = 30
	defaultEVMBaseURL            = "https://eth-mainnet.g.alchemy.com/nft/v2"
	defaultTezosBaseURL          = "https://api.tzkt.io"
	defaultNamingBaseURL         = "https://api.ensideas.com/ens/resolve"
)

// defaultGateways is the ordered IPFS gateway candidate list. Order matters:
// the downloader tries them front to back.
var defaultGateways = []string{
	"https://ipfs.io/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
	"https://gateway.pinata.cloud/ipfs/",
	"https://dweb.link/ipfs/",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Download: Download{
			Gateways:              append([]string{}, defaultGateways...),
			MaxRetries:            defaultMaxRetries,
			RetryBaseSeconds:      defaultRetryBaseSeconds,
			RetryMaxSeconds:       defaultRetryMaxSeconds,
			AttemptTimeoutSeconds: defaultAttemptTimeoutSeconds,
		},
		EVM: EVM{
			BaseURL: defaultEVMBaseURL,
		},
		Tezos: Tezos{
			BaseURL: defaultTezosBaseURL,
		},
		Naming: Naming{
			Enabled: true,
			BaseURL: defaultNamingBaseURL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Chains: []Chain{
			{ID: 1, Name: "ethereum", Family: "evm"},
			{ID: 137, Name: "polygon", Family: "evm"},
			{ID: 8453, Name: "base", Family: "evm"},
			{ID: 1729, Name: "tezos", Family: "tezos"},
		},
	}
}
