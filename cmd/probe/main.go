// Command probe opens one realtime connection, sends a control message,
// logs every reply and closes after a fixed delay.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("probe")
		os.Exit(1)
	}
	os.Exit(0)
}
