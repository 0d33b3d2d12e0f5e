package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/translation"
	"github.com/koscakluka/linguaflow/core/voices"
	"github.com/koscakluka/linguaflow/core/voices/espeak"
	"github.com/koscakluka/linguaflow/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "linguaflow",
	Short: "Speak, translate and hear the translation",
	Long: `linguaflow listens to speech, translates the transcript and speaks the
translation with a cloud voice or the platform voice.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive translator",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logFile, _ := cmd.Flags().GetString("log-file")
		logOutput, closeLog, err := openLog(logFile)
		if err != nil {
			return err
		}
		defer closeLog()
		config.SetupLogging(cfg.Logging, logOutput)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		var program atomic.Pointer[tea.Program]
		svc, err := buildServices(ctx, cfg, wiringOptions{
			recognition: true,
			onEvent: func(event events.Event) {
				if p := program.Load(); p != nil {
					p.Send(eventMsg{event: event})
				}
			},
		})
		if err != nil {
			return err
		}
		defer svc.Close()
		svc.serveBridge(ctx)

		m := newModel(ctx, svc.orchestrator, cfg)
		if svc.bridge != nil {
			m.bridgeURL = "http://" + svc.bridgeAddr + "/"
		}
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		m.send = p.Send
		program.Store(p)

		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal ui failed: %w", err)
		}
		return nil
	},
}

var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "Speak text once and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		config.SetupLogging(cfg.Logging, os.Stderr)
		language, _ := cmd.Flags().GetString("lang")
		if language == "" {
			language = cfg.Languages.Target
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		var failure error
		svc, err := buildServices(ctx, cfg, wiringOptions{
			onEvent: func(event events.Event) {
				if failed, ok := event.(events.SpeechFailed); ok {
					failure = failed.Err
				}
			},
		})
		if err != nil {
			return err
		}
		defer svc.Close()

		svc.orchestrator.Speak(ctx, strings.Join(args, " "), language)
		svc.orchestrator.AwaitSpeech()
		if failure != nil {
			return fmt.Errorf("speech failed: %w", failure)
		}
		return nil
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		config.SetupLogging(cfg.Logging, os.Stderr)
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		if from == "" {
			from = cfg.Languages.Source
		}
		if to == "" {
			to = cfg.Languages.Target
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		result, err := newTranslator(cfg.Translation).Translate(ctx, strings.Join(args, " "), from, to)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Text)
		if result.Degraded {
			fmt.Fprintf(cmd.ErrOrStderr(), "(%s fallback)\n", result.Source)
		}

		if speak, _ := cmd.Flags().GetBool("speak"); speak && result.Source != translation.SourcePlaceholder {
			svc, err := buildServices(ctx, cfg, wiringOptions{})
			if err != nil {
				return err
			}
			defer svc.Close()
			svc.orchestrator.Speak(ctx, result.Text, to)
			svc.orchestrator.AwaitSpeech()
		}
		return nil
	},
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List platform voices and the one picked for a language",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("lang")
		synthesizer := espeak.New()
		if !synthesizer.Available() {
			return errors.New("no platform voice engine found, install espeak-ng")
		}

		catalog := voices.NewCatalog(synthesizer)
		if err := catalog.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list voices: %w", err)
		}
		return printVoices(cmd.OutOrStdout(), catalog, language)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := config.Schema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./linguaflow.yaml)")

	runCmd.Flags().String("log-file", "", "write logs to this file instead of discarding them")
	speakCmd.Flags().String("lang", "", "language tag of the text (default languages.target)")
	translateCmd.Flags().String("from", "", "source language tag (default languages.source)")
	translateCmd.Flags().String("to", "", "target language tag (default languages.target)")
	translateCmd.Flags().Bool("speak", false, "speak the translation")
	voicesCmd.Flags().String("lang", "", "mark the voice picked for this language tag")

	configCmd.AddCommand(configSchemaCmd)
	rootCmd.AddCommand(runCmd, speakCmd, translateCmd, voicesCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openLog returns where the terminal UI logs go. Without a file logs are
// discarded, they would corrupt the screen.
func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func printVoices(w io.Writer, catalog *voices.Catalog, language string) error {
	picked, hasPick := voices.Voice{}, false
	if language != "" {
		picked, hasPick = catalog.Select(language)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tLANGUAGE\tNAME\tPREMIUM")
	for _, voice := range catalog.Voices() {
		marker := ""
		if hasPick && voice.ID == picked.ID {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", marker, voice.ID, voice.Language, voice.Name, voices.IsPremium(voice))
	}
	return tw.Flush()
}
