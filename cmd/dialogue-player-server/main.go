package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/mgoltzsche/dialogue-player/internal/audio"
	"github.com/mgoltzsche/dialogue-player/internal/cli"
	"github.com/mgoltzsche/dialogue-player/internal/player"
	"github.com/mgoltzsche/dialogue-player/internal/server"
	"github.com/mgoltzsche/dialogue-player/internal/soundgen"
	"github.com/mgoltzsche/dialogue-player/internal/tlsutils"
	"github.com/mgoltzsche/dialogue-player/internal/tts"
	"github.com/mgoltzsche/dialogue-player/pkg/config"
)

type serverOptions struct {
	listenAddr string
	tlsEnabled bool
	tlsCert    string
	tlsKey     string
	fakeTTS    bool
	silent     bool
}

type speechService interface {
	tts.Synthesizer
	server.VoiceCatalog
}

func main() {
	cli.SetupLogging(os.Stderr, "text")

	configFile := "/etc/dialogue-player/config.yaml"
	cfg, err := config.FromFile(configFile)
	if err != nil {
		cfg = config.Defaults()
	}

	configFlag := &config.FileFlag{Path: configFile, Target: &cfg}
	opts := serverOptions{listenAddr: ":8443"}

	flag.Var(configFlag, "config", "Path to the configuration file")
	flag.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "URL pointing to the TTS server")
	flag.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key used to authenticate with the TTS server")
	flag.Var(&cfg.RequestTimeout, "request-timeout", "timeout of a TTS request")
	flag.StringVar(&cfg.OutputDevice, "output-device", cfg.OutputDevice, "name or ID of the audio output device")
	flag.StringVar(&cfg.Language, "language", cfg.Language, "language of the dialogues")
	flag.StringVar(&cfg.VoiceA, "voice-a", cfg.VoiceA, "default TTS voice of speaker A")
	flag.StringVar(&cfg.VoiceB, "voice-b", cfg.VoiceB, "default TTS voice of speaker B")
	flag.Var(&cfg.ProgressInterval, "progress-interval", "interval in which the playback progress is reported")
	flag.StringVar(&opts.listenAddr, "listen", opts.listenAddr, "Address the server should listen on")
	flag.BoolVar(&opts.tlsEnabled, "tls", opts.tlsEnabled, "Serve securely via HTTPS/TLS")
	flag.StringVar(&opts.tlsKey, "tls-key", opts.tlsKey, "Path to the TLS key file")
	flag.StringVar(&opts.tlsCert, "tls-cert", opts.tlsCert, "Path to the TLS certificate file")
	flag.BoolVar(&opts.fakeTTS, "fake-tts", opts.fakeTTS, "synthesize tones instead of calling the TTS server and serve them on the TTS API paths")
	flag.BoolVar(&opts.silent, "silent", opts.silent, "play audio without an output device")

	err = cli.ParseFlagsWithEnvVars(flag.CommandLine, "DIALOGUE_PLAYER_", os.Args[1:])
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	if !opts.silent {
		err = portaudio.Initialize()
		if err != nil {
			slog.Error(fmt.Sprintf("initialize portaudio: %s", err))
			os.Exit(1)
		}
		defer portaudio.Terminate()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runServer(ctx, cfg, opts)
	if err != nil {
		slog.Error(err.Error())
		stop()
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg config.Configuration, opts serverOptions) error {
	mux := http.NewServeMux()
	srv := &http.Server{
		Addr:        opts.listenAddr,
		BaseContext: func(net.Listener) context.Context { return ctx },
		Handler:     mux,
	}

	var speech speechService = &tts.Client{
		URL:        cfg.ServerURL,
		SpeechPath: cfg.SpeechPath,
		VoicesPath: cfg.VoicesPath,
		APIKey:     cfg.APIKey,
		Client:     &http.Client{Timeout: time.Duration(cfg.RequestTimeout)},
	}

	if opts.fakeTTS {
		gen := &soundgen.Generator{MinDuration: 500 * time.Millisecond, MaxDuration: 10 * time.Second}
		gen.AddRoutes(mux, cfg.SpeechPath, cfg.VoicesPath)
		speech = gen

		slog.Info(fmt.Sprintf("serving fake TTS API at %s", cfg.SpeechPath))
	}

	var output tts.Output = &audio.Output{Device: cfg.OutputDevice}
	if opts.silent {
		output = &audio.NullOutput{}
	}

	players := server.NewPlayers(player.Config{
		Language:         cfg.Language,
		VoiceA:           cfg.VoiceA,
		VoiceB:           cfg.VoiceB,
		ProgressInterval: time.Duration(cfg.ProgressInterval),
	}, func() player.Speech {
		return &tts.Fetcher{Service: speech, Output: output}
	})
	defer players.Close()

	if len(cfg.Dialogues) > 0 {
		id, c := players.Create(cfg.VoiceA, cfg.VoiceB)
		c.SetDialogues(cfg.Dialogues)
		slog.Info(fmt.Sprintf("created player %s with %d configured dialogues", id, len(cfg.Dialogues)))
	}

	server.AddRoutes(mux, players, speech)

	go func() {
		<-ctx.Done()
		slog.Info("terminating")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	var err error

	if opts.tlsEnabled {
		if opts.tlsCert == "" && opts.tlsKey == "" {
			slog.Info("generating self-signed TLS certificate")

			var cleanup func()

			opts.tlsCert, opts.tlsKey, cleanup, err = tlsutils.GenerateSelfSignedTLSCertificate()
			if err != nil {
				return fmt.Errorf("generating tls certificate: %w", err)
			}

			defer cleanup()
		}

		slog.Info(fmt.Sprintf("listening on %s", srv.Addr))

		err = srv.ListenAndServeTLS(opts.tlsCert, opts.tlsKey)
	} else {
		slog.Info(fmt.Sprintf("listening on %s", srv.Addr))

		err = srv.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}
