package main

import (
	"context"
	"errors"
	"log"
	"os"
	_ "time/tzdata" // audit log date filters accept any IANA zone

	"github.com/dalemusser/portfolio/internal/app/bootstrap"
	"github.com/spf13/pflag"
)

func main() {
	if err := bootstrap.Run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}
