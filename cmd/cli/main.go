package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/uptimekeeper/internal/cli"
	"github.com/dmitrijs2005/uptimekeeper/internal/flagx"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/config"
	"github.com/spf13/afero"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg, afero.NewOsFs(), os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, flagx.Positional(os.Args[1:])); err != nil {
		log.Fatalf("%v", err)
	}

}
