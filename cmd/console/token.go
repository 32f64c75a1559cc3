package main

import (
	"fmt"
	"time"

	"github.com/hugohenrick/intentbot/pkg/auth"
	"github.com/hugohenrick/intentbot/pkg/config"
	"github.com/spf13/cobra"
)

var (
	tokenChannel string
	tokenUser    string
	tokenName    string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Emite um token de canal para a API",
	Long:  `Assina um token de canal com BOT_APP_SECRET para uso no cabeçalho Authorization ou no parâmetro access_token.`,
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenChannel, "channel", "webchat", "ID do canal")
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "ID do usuário")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "nome do usuário")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "validade do token (padrão BOT_CHANNEL_TOKEN_TTL)")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ttl := tokenTTL
	if ttl <= 0 {
		ttl = cfg.Bot.ChannelTokenTTL
	}
	svc, err := auth.NewJWTService(cfg.Bot.AppSecret, ttl)
	if err != nil {
		return err
	}

	name := tokenName
	if name == "" {
		name = tokenUser
	}
	token, err := svc.GenerateToken(tokenChannel, tokenUser, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
