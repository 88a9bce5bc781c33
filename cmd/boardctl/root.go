package main

import (
	"boardroom/client"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newRootCmd(config Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "boardctl",
		Short:        "Talk to a boardroom server",
		Long:         `boardctl posts a prompt to a boardroom server and renders the streamed answer.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&config.ServerURL, "server", config.ServerURL, "boardroom server URL")
	root.PersistentFlags().StringVar(&config.Model, "model", config.Model, "model name")
	root.PersistentFlags().StringVar(&config.Tone, "tone", config.Tone, "board speaking style")
	root.PersistentFlags().StringVar(&config.SessionID, "session", config.SessionID, "session id to record the exchange in")
	root.PersistentFlags().BoolVar(&config.Colours, "colours", config.Colours, "colour each agent")

	root.AddCommand(
		eventCmd("board <prompt>", "Hold a board meeting (CEO, CTO, CFO, COO)", client.PathBoard, &config),
		eventCmd("debate <prompt>", "Debate a question from two perspectives, then synthesize", client.PathDebate, &config),
		textCmd("chat <prompt>", "Ask the assistant", client.PathChat, &config),
		textCmd("rag <prompt>", "Ask the guideline assistant", client.PathGuideline, &config),
		sessionsCmd(&config),
	)
	return root
}

func eventCmd(use, short, path string, config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(config)
			defer cancel()
			r := newRenderer(cmd.OutOrStdout(), config.Colours)
			for e, err := range client.New(config.ServerURL, nil).Events(ctx, path, request(config, args)) {
				if err != nil {
					return err
				}
				if err := r.render(e); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func textCmd(use, short, path string, config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(config)
			defer cancel()
			if err := client.New(config.ServerURL, nil).Text(ctx, path, request(config, args), cmd.OutOrStdout()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout())
			return err
		},
	}
}

func sessionsCmd(config *Config) *cobra.Command {
	var clearSession bool
	cmd := &cobra.Command{
		Use:   "sessions <session-id>",
		Short: "List or clear the messages of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(config)
			defer cancel()
			c := client.New(config.ServerURL, nil)
			if clearSession {
				if err := c.Clear(ctx, args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Session %s cleared\n", args[0])
				return err
			}
			messages, err := c.Messages(ctx, args[0])
			if err != nil {
				return err
			}
			writeMessages(cmd.OutOrStdout(), messages)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearSession, "clear", false, "clear the session instead of listing it")
	return cmd
}

func writeMessages(w io.Writer, messages []client.Message) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Speaker", "Content"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, m := range messages {
		speaker := m.Agent
		if m.IsUser {
			speaker = "user"
		}
		table.Append([]string{m.Timestamp.Format("15:04:05"), speaker, preview(m.Content, 80)})
	}
	table.Render()
}

func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

func request(config *Config, args []string) client.Request {
	return client.Request{
		Prompt:    strings.Join(args, " "),
		Model:     config.Model,
		Tone:      config.Tone,
		SessionID: config.SessionID,
	}
}

func commandContext(config *Config) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if config.Timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
