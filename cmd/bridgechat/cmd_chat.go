package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentbridge"
	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/hook"
)

func init() {
	chatCmd.Flags().String("session", "", "resume an existing session id")
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive streamed chat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		c, err := newClient(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Ctrl-C during a run cancels the run instead of killing the process.
		go func() {
			<-ctx.Done()
			_ = c.Cancel(context.Background())
		}()

		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			if err := c.LoadSession(ctx, sessionID); err != nil {
				return fmt.Errorf("load session %s: %w", sessionID, err)
			}
			printTranscript(c.Messages())
		}

		var printed int
		c.On(hook.TypeConversationUpdated, func(p hook.Payload) {
			if p.Message == nil || p.Message.Role != core.RoleAgent {
				return
			}
			if len(p.Message.Content) > printed {
				fmt.Print(p.Message.Content[printed:])
				printed = len(p.Message.Content)
			}
		})
		c.On(hook.TypeRunError, func(p hook.Payload) {
			fmt.Fprintf(os.Stderr, "\nrun error: %v\n", p.Err)
		})
		c.On(hook.TypeRunCancelled, func(hook.Payload) {
			fmt.Fprintln(os.Stderr, "\nrun cancelled")
		})

		fmt.Println("bridgechat: type a message, 'exit' to quit")
		reader := bufio.NewReader(os.Stdin)
		for {
			fmt.Print("\n> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}

			printed = 0
			if err := c.Send(context.Background(), line); err != nil {
				fmt.Fprintf(os.Stderr, "send: %v\n", err)
				continue
			}
			for c.Status() == core.StatusPaused {
				if err := confirmPausedTools(c, reader); err != nil {
					fmt.Fprintf(os.Stderr, "continue: %v\n", err)
					break
				}
			}
			fmt.Println()
		}
	},
}

// confirmPausedTools walks the paused tool calls, asks for a decision on each
// and resumes the run.
func confirmPausedTools(c *agentbridge.Client, reader *bufio.Reader) error {
	tools := c.PausedTools()
	for i := range tools {
		fmt.Printf("\nconfirm tool %q? [y/N] ", tools[i].ToolName)
		line, _ := reader.ReadString('\n')
		if strings.EqualFold(strings.TrimSpace(line), "y") {
			tools[i].RequiresConfirmation = false
			tools[i].Content = "confirmed"
		} else {
			tools[i].ToolCallError = true
			tools[i].Content = "rejected by user"
		}
	}
	return c.Continue(context.Background(), tools)
}

func printTranscript(msgs []core.ChatMessage) {
	for _, m := range msgs {
		prefix := "agent"
		if m.Role == core.RoleUser {
			prefix = "you"
		}
		fmt.Printf("[%s] %s\n", prefix, m.Content)
	}
}
