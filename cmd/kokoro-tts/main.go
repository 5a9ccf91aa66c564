package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wavout/wavout/config"
	"github.com/wavout/wavout/internal/cli"

	// Register the backend via init().
	_ "github.com/wavout/wavout/internal/speech/backends/kokoro"
)

func main() {
	var flags cli.Flags

	cmd := &cobra.Command{
		Use:           "kokoro-tts",
		Short:         "Generate speech with the Kokoro ONNX runner",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  kokoro-tts --text "Hello world" --output hello.wav
  kokoro-tts --text "Custom voice" --output voice.wav --voice af_alloy
  kokoro-tts --text "Fast speech" --output fast.wav --speed 1.5
  kokoro-tts --text "Bonjour" --output french.wav --lang fr-fr --voice ff_siwis`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return cli.Run(cmd, cfg, "kokoro", &flags)
		},
	}

	cli.BindCommon(cmd, &flags)
	cmd.Flags().StringVar(&flags.Language, "lang", "", "language code")
	cmd.Flags().StringVar(&flags.Model, "model", "", "path to the kokoro ONNX model")
	cmd.Flags().StringVar(&flags.Voices, "voices", "", "path to the voices bin file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
