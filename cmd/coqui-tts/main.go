package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wavout/wavout/config"
	"github.com/wavout/wavout/internal/cli"

	// Register the backend via init().
	_ "github.com/wavout/wavout/internal/speech/backends/coqui"
)

func main() {
	var flags cli.Flags

	cmd := &cobra.Command{
		Use:           "coqui-tts",
		Short:         "Generate speech with the Coqui TTS runner",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return cli.Run(cmd, cfg, "coqui", &flags)
		},
	}

	cli.BindCommon(cmd, &flags)
	cmd.Flags().Float64Var(&flags.Pitch, "pitch", 0, "pitch adjustment (0.5-2.0)")
	cmd.Flags().StringVar(&flags.Emotion, "emotion", "", "emotion preset")
	cmd.Flags().Float64Var(&flags.EmotionStrength, "emotion-strength", 0, "emotion strength (0.0-1.0)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
