package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	orchestration "github.com/jimli1231/eletron-vrm/core"
	"github.com/jimli1231/eletron-vrm/core/reply"
)

var askCmd = &cobra.Command{
	Use:   "ask <text>",
	Short: "Ask once and stream the spoken reply to stdout",
	Long: `Ask sends a single message. The speech is streamed to stdout as it is
generated; emotion changes and actions are reported on stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		return runAsk(cmd.Context(), config, strings.Join(args, " "))
	},
}

func runAsk(ctx context.Context, config Config, text string) error {
	opts := append(config.sessionOptions(),
		orchestration.WithSpeechDeltaCallback(func(text string) { fmt.Fprint(os.Stdout, text) }),
		orchestration.WithEmotionCallback(func(emotion reply.Emotion) {
			fmt.Fprintf(os.Stderr, "[emotion %s]\n", emotion)
		}),
		orchestration.WithActionCallback(func(tool string, args map[string]any) {
			fmt.Fprintf(os.Stderr, "[action %s %v]\n", tool, args)
		}),
	)
	session := orchestration.NewSession(config.APIKey, opts...)

	err := session.StartCall(ctx, text)
	fmt.Fprintln(os.Stdout)
	return err
}
