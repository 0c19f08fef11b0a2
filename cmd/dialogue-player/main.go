package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gordonklaus/portaudio"
	"github.com/mgoltzsche/dialogue-player/internal/audio"
	"github.com/mgoltzsche/dialogue-player/internal/cli"
	"github.com/mgoltzsche/dialogue-player/internal/console"
	"github.com/mgoltzsche/dialogue-player/internal/model"
	"github.com/mgoltzsche/dialogue-player/internal/player"
	"github.com/mgoltzsche/dialogue-player/internal/soundgen"
	"github.com/mgoltzsche/dialogue-player/internal/tts"
	"github.com/mgoltzsche/dialogue-player/pkg/config"
)

func main() {
	cli.SetupLogging(os.Stderr, "text")

	configFile := "/etc/dialogue-player/config.yaml"
	cfg, err := config.FromFile(configFile)
	if err != nil {
		cfg = config.Defaults()
	}

	configFlag := &config.FileFlag{Path: configFile, Target: &cfg}
	dialogueFile := ""
	listVoices := false
	listDevices := false
	fakeTTS := false
	autoplay := false

	flag.Var(configFlag, "config", "Path to the configuration file")
	flag.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "URL pointing to the TTS server")
	flag.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key used to authenticate with the TTS server")
	flag.Var(&cfg.RequestTimeout, "request-timeout", "timeout of a TTS request")
	flag.StringVar(&cfg.OutputDevice, "output-device", cfg.OutputDevice, "name or ID of the audio output device")
	flag.StringVar(&cfg.Language, "language", cfg.Language, "language of the dialogues")
	flag.StringVar(&cfg.VoiceA, "voice-a", cfg.VoiceA, "TTS voice of speaker A")
	flag.StringVar(&cfg.VoiceB, "voice-b", cfg.VoiceB, "TTS voice of speaker B")
	flag.Var(&cfg.ProgressInterval, "progress-interval", "interval in which the playback progress is reported")
	flag.StringVar(&dialogueFile, "dialogues", dialogueFile, "path to a YAML or JSON file containing the dialogues")
	flag.BoolVar(&listVoices, "list-voices", listVoices, "list the voices provided by the TTS server and exit")
	flag.BoolVar(&listDevices, "list-devices", listDevices, "list the audio output devices and exit")
	flag.BoolVar(&fakeTTS, "fake-tts", fakeTTS, "synthesize tones instead of calling the TTS server")
	flag.BoolVar(&autoplay, "autoplay", autoplay, "start playing immediately")

	err = cli.ParseFlagsWithEnvVars(flag.CommandLine, "DIALOGUE_PLAYER_", os.Args[1:])
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	if dialogueFile != "" {
		cfg.Dialogues, err = model.LoadDialogues(dialogueFile)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}

	err = portaudio.Initialize()
	if err != nil {
		slog.Error(fmt.Sprintf("initialize portaudio: %s", err))
		os.Exit(1)
	}
	defer portaudio.Terminate()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case listDevices:
		err = audio.PrintOutputDevices(os.Stdout)
	case listVoices:
		err = printVoices(ctx, newSpeechService(cfg, fakeTTS))
	default:
		err = runPlayer(ctx, cfg, newSpeechService(cfg, fakeTTS), autoplay)
	}

	if err != nil {
		slog.Error(err.Error())
		portaudio.Terminate()
		os.Exit(1)
	}
}

type speechService interface {
	Synthesize(ctx context.Context, text string, voice model.VoiceID, language string) ([]byte, error)
	Voices(ctx context.Context) ([]model.Voice, error)
}

func newSpeechService(cfg config.Configuration, fake bool) speechService {
	if fake {
		slog.Info("synthesizing tones instead of speech")

		return &soundgen.Generator{MinDuration: 500 * time.Millisecond, MaxDuration: 10 * time.Second}
	}

	return &tts.Client{
		URL:        cfg.ServerURL,
		SpeechPath: cfg.SpeechPath,
		VoicesPath: cfg.VoicesPath,
		APIKey:     cfg.APIKey,
		Client:     &http.Client{Timeout: time.Duration(cfg.RequestTimeout)},
	}
}

func printVoices(ctx context.Context, client speechService) error {
	voices, err := client.Voices(ctx)
	if err != nil {
		return err
	}

	for _, v := range voices {
		fmt.Printf("%-12s %-20s %s\n", v.ID, v.Name, v.Gender)
	}

	return nil
}

func runPlayer(ctx context.Context, cfg config.Configuration, client speechService, autoplay bool) error {
	if len(cfg.Dialogues) == 0 {
		return errors.New("no dialogues provided, see -dialogues")
	}

	fetcher := &tts.Fetcher{
		Service: client,
		Output:  &audio.Output{Device: cfg.OutputDevice},
	}
	c := player.NewController(fetcher, player.Config{
		Language:         cfg.Language,
		VoiceA:           cfg.VoiceA,
		VoiceB:           cfg.VoiceB,
		ProgressInterval: time.Duration(cfg.ProgressInterval),
	})
	defer c.Close()

	c.SetDialogues(cfg.Dialogues)

	subscription := c.Subscribe(ctx)
	defer subscription.Stop()

	slog.Info(fmt.Sprintf("loaded %d dialogues, press ? for help", len(cfg.Dialogues)))

	if autoplay {
		err := c.Play()
		if err != nil {
			return err
		}
	}

	ui := tea.NewProgram(console.New(c, subscription.ResultChan()), tea.WithContext(ctx))

	_, err := ui.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run console: %w", err)
	}

	slog.Info("terminating")

	return nil
}
