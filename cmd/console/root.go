package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intentbot",
	Short: "IntentBot - console do bot de diálogos por intenção",
	Long: `Conversa com o bot de exemplo pelo terminal e emite tokens de canal para a API.
A configuração é lida das mesmas variáveis de ambiente do servidor.`,
	SilenceUsage: true,
}
