package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask GustoBot one question from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "session id to continue a conversation")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	sessionID := chatSessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	question := strings.Join(args, " ")
	resp := a.sup.HandleTurn(ctx, sessionID, "", question)

	fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
	if resp.Cached {
		fmt.Fprintln(cmd.ErrOrStderr(), "(answered from cache)")
	}
	return nil
}
