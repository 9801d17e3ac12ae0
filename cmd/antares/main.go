package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/mciura/antares/pkg/engine"
	"github.com/mciura/antares/pkg/gtp"
	"github.com/mciura/antares/pkg/search"
	"github.com/mciura/antares/pkg/spectator"
)

var (
	flgLgCoordinates   bool
	flgSecondsPerMove  float64
	flgSpectateAddress string
)

func main() {
	flag.BoolVar(&flgLgCoordinates, "lg", false, "use lg coordinates instead of rhombus")
	flag.Float64Var(&flgSecondsPerMove, "seconds_per_move", 1.0, "search budget per genmove")
	flag.StringVar(&flgSpectateAddress, "spectate", "", "address to serve the spectator HTTP/WebSocket surface on, empty disables it")
	flag.Parse()

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zlog.Info().
		Str("runtime", runtime.Version()).
		Int("num_cpu", runtime.NumCPU()).
		Msg("antares starting")

	diagLog := search.NewLogger(os.Stderr)

	opts := engine.DefaultOptions()
	opts.UseLgCoordinates = flgLgCoordinates
	opts.SecondsPerMove = flgSecondsPerMove

	eng := engine.New(opts, diagLog)

	if flgSpectateAddress != "" {
		hub := spectator.NewHub(eng)
		diagLog.SetSink(hub.Publish)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)
		go func() {
			zlog.Info().Str("address", flgSpectateAddress).Msg("spectator surface listening")
			if err := http.ListenAndServe(flgSpectateAddress, hub.Router()); err != nil {
				zlog.Error().Err(err).Msg("spectator surface stopped")
			}
		}()
	}

	protocol := gtp.New(eng, zlog)
	protocol.Run(os.Stdin, os.Stdout)
}
