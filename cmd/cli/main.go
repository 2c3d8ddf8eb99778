package main

import (
	"log"
	"os"

	"github.com/kevinbuckley/tripwit/internal/buildinfo"
	"github.com/kevinbuckley/tripwit/internal/client/cli"
	"github.com/kevinbuckley/tripwit/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(); err != nil {
		log.Fatalf("%v", err)
	}

}
