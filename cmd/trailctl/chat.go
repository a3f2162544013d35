package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trailmeet/internal/app/chat"
	"trailmeet/internal/client"
)

func (c *cli) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Read and post in an event chat",
	}
	cmd.AddCommand(c.chatListCmd(), c.chatSendCmd(), c.chatWatchCmd())
	return cmd
}

func printMessages(w io.Writer, messages []chat.Message) {
	for _, m := range messages {
		fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04:05"), m.UserName, m.Message)
	}
}

func (c *cli) chatListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list EVENT_ID",
		Short: "Show the latest messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := c.state.API().ListChat(cmd.Context(), args[0], time.Time{})
			if err != nil {
				return err
			}
			printMessages(cmd.OutOrStdout(), messages)
			return nil
		},
	}
}

func (c *cli) chatSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send EVENT_ID MESSAGE...",
		Short: "Post a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := c.state.API().SendChat(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printMessages(cmd.OutOrStdout(), []chat.Message{msg})
			return nil
		},
	}
}

func (c *cli) chatWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch EVENT_ID",
		Short: "Follow the chat until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()

			poller := client.NewChatPoller(c.state.API(), args[0],
				func(batch []chat.Message) { printMessages(out, batch) },
				client.WithPollInterval(interval),
				client.WithPollErrors(func(err error) {
					fmt.Fprintln(errOut, "poll failed:", err)
				}),
			)
			poller.Start(cmd.Context())
			<-cmd.Context().Done()
			poller.Stop()
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", client.DefaultPollInterval, "poll interval")
	return cmd
}
