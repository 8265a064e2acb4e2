package discovery

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SolanaWSURL       string        `envconfig:"SOLANA_WS_URL" default:"wss://api.mainnet-beta.solana.com"`
	PumpFunProgramID  string        `envconfig:"PUMP_FUN_PROGRAM_ID" default:"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"`
	ReconnectBaseWait time.Duration `envconfig:"DISCOVERY_RECONNECT_BASE_WAIT" default:"1s"`
	ReconnectMaxWait  time.Duration `envconfig:"DISCOVERY_RECONNECT_MAX_WAIT" default:"30s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
