package main

import (
	"context"
	"flag"
	"image/png"
	"os"
	"time"

	"github.com/picfetch/picfetch/cache"
	"github.com/picfetch/picfetch/cache/memory"
	"github.com/picfetch/picfetch/cache/sqlite"
	"github.com/picfetch/picfetch/decode"
	"github.com/picfetch/picfetch/loader"
	"github.com/picfetch/picfetch/resource"
	"github.com/picfetch/picfetch/session"
	"github.com/picfetch/picfetch/transport"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	configFilenameFlag string
	urlFlag            string
	outputFlag         string
	scaleFlag          float64
	providerFlag       string
	sqlitePathFlag     string
	timeoutFlag        time.Duration
	noLocalFlag        bool
	verbosityTraceFlag bool
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.StringVar(&urlFlag, "url", "", "Image reference to load (http(s) url, file url, or data uri)")
	flag.StringVar(&outputFlag, "output", "image.png", "Path to write the decoded image to")
	flag.Float64Var(&scaleFlag, "scale", 1, "Decode scale hint")
	flag.StringVar(&providerFlag, "provider", "", "Caching provider to use (default sqlite)")
	flag.StringVar(&sqlitePathFlag, "sqlite-path", "", "Path to the sqlite cache database (default ./picfetch.db)")
	flag.DurationVar(&timeoutFlag, "timeout", time.Minute, "Time to wait for the load to finish")
	flag.BoolVar(&noLocalFlag, "no-local", false, "Disallow loading file urls and data uris")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
}

func main() {
	flag.Parse()

	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}
	log.Logger = log.Level(logLevel).Output(zerolog.ConsoleWriter{Out: os.Stdout})

	if configFilenameFlag != "" {
		config, err := getConfig(configFilenameFlag)
		if err != nil {
			panic(err)
		}

		// flags override configured values
		if providerFlag == "" {
			providerFlag = config.Provider
		}
		if sqlitePathFlag == "" {
			sqlitePathFlag = config.SqlitePath
		}
		if config.Output != "" && outputFlag == "image.png" {
			outputFlag = config.Output
		}
		if config.Scale != 0 && scaleFlag == 1 {
			scaleFlag = config.Scale
		}
	}

	if providerFlag == "" {
		providerFlag = "sqlite"
	}
	if sqlitePathFlag == "" {
		sqlitePathFlag = "./picfetch.db"
	}

	if urlFlag == "" {
		log.Fatal().Msg("Please specify an image reference")
	}

	// use configured provider, fail if none matches
	var provider cache.Provider
	switch providerFlag {
	case "sqlite":
		sqliteProvider, err := sqlite.New(sqlitePathFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open sqlite cache")
		}
		provider = sqliteProvider
	case "memory":
		provider = memory.New()
	default:
		log.Fatal().Msgf("Unsupported cache provider: %s", providerFlag)
	}
	defer provider.Shutdown()

	decoder := decode.Std{}

	remote := &loader.Remote{
		Transport: transport.New(provider),
		Cache:     provider,
		Decoder:   decoder,
		Scale:     scaleFlag,
		Log:       log.Logger,
	}

	// signals the terminal phase of the load
	done := make(chan session.Phase, 1)

	s := session.New(session.Options{
		Reference: resource.New(urlFlag),
		Cache:     provider,
		Decoder:   decoder,
		Scale:     scaleFlag,
		Transition: &session.Transition{
			Name:     "fade",
			Duration: 200 * time.Millisecond,
		},
		OnPhase: func(phase session.Phase, transition *session.Transition) {
			log.Debug().
				Str("state", phase.State.String()).
				Bool("animated", transition != nil).
				Msg("Phase committed")

			if phase.State != session.Empty {
				select {
				case done <- phase:
				default:
				}
			}
		},
		SupportsLocalLoading: !noLocalFlag,
		Local:                loader.NewLocal(decoder, scaleFlag),
		Remote:               remote,
		Log:                  log.Logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	s.Start(ctx)

	// the initial phase may already be terminal (local reference or a
	// warm cache)
	if phase := s.Phase(); phase.State != session.Empty {
		select {
		case done <- phase:
		default:
		}
	}

	select {
	case phase := <-done:
		if phase.State == session.Failure {
			log.Fatal().Err(phase.Err).Msg("Load failed")
		}

		if err := writeArtifact(phase.Artifact, outputFlag); err != nil {
			log.Fatal().Err(err).Msg("Could not write image")
		}

		log.Info().
			Str("path", outputFlag).
			Str("format", phase.Artifact.Format).
			Int("width", phase.Artifact.Width).
			Int("height", phase.Artifact.Height).
			Msg("Image written")
	case <-ctx.Done():
		log.Fatal().Err(ctx.Err()).Msg("Load did not finish")
	}
}

func writeArtifact(artifact *decode.Artifact, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, artifact.Image)
}
