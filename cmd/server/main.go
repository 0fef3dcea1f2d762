package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

const releaseVersion = "0.1.0"

func main() {
	if err := newCmd(&options{}).Execute(); err != nil {
		log.Error().Err(err).Msg("服务器退出")
		os.Exit(1)
	}
}
