package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobcoach/coach-api/internal/config"
	"github.com/jobcoach/coach-api/internal/domain"
	"github.com/jobcoach/coach-api/internal/observability"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the coach interactively without the HTTP API",
	Long: "Starts a local REPL against an in-process coaching session. " +
		"The first message is stored as the job description; /interview, /quiz, /training and /q work as over HTTP.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := context.Background()

		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		observability.Init(cfg.JSON, cfg.Debug)

		svc, cleanup, err := newService(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		fmt.Printf("session %s — paste a job description (or a posting URL) to begin; ctrl-d exits\n", sessionID)

		input := promptui.Prompt{Label: "you"}
		for {
			line, err := input.Run()
			if err != nil {
				if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
					return nil
				}
				return err
			}

			reply, err := svc.HandleTurn(ctx, domain.SessionID(sessionID), line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("coach: %s\n\n", reply)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "session id to resume (default: a fresh id)")
}
