package mealcoach

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	chatHistory bool
	chatClear   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask your coach a question",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			if chatClear {
				if err := s.persisted(s.state.SaveChatHistory(nil)); err != nil {
					return err
				}
				fmt.Fprintln(s.out(), "Chat history cleared")
				return nil
			}
			if chatHistory {
				history, err := s.state.LoadChatHistory()
				if err != nil {
					return err
				}
				for _, m := range history {
					fmt.Fprintf(s.out(), "[%s] %s: %s\n", m.Timestamp.Local().Format("2006-01-02 15:04"), m.Role, m.Content)
				}
				return nil
			}
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return fmt.Errorf("message is required")
			}
			p, err := s.requireProfile()
			if err != nil {
				return err
			}
			coach, err := s.coach()
			if err != nil {
				return err
			}
			reply, err := coach.Chat(cmd.Context(), p, message)
			if reply == "" && err != nil {
				return err
			}
			fmt.Fprintln(s.out(), reply)
			return s.persisted(err)
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatHistory, "history", false, "Show stored conversation")
	chatCmd.Flags().BoolVar(&chatClear, "clear", false, "Clear stored conversation")
}
