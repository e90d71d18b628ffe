package main

import (
	"fmt"
	"os"

	corecmd "github.com/hostline/hostbot/core/cmd"
	"github.com/hostline/hostbot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config/config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.Bootstrap(appCfg)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "hostbot:", err)
		os.Exit(1)
	}
}
