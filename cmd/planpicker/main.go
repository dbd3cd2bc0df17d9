package main

import (
	"fmt"
	"log"

	"github.com/m3rciful/planpicker/app/bootstrap"
	appconfig "github.com/m3rciful/planpicker/app/config"
	"github.com/m3rciful/planpicker/core/buildinfo"
	corecmd "github.com/m3rciful/planpicker/core/cmd"
)

func main() {
	log.Printf("planpicker %s (%s)", buildinfo.Version, buildinfo.Commit)
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config/config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return appconfig.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*appconfig.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return bootstrap.New(appCfg, bootstrap.Options{})
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
