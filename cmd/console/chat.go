package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/intentbot/internal/bootstrap"
	"github.com/hugohenrick/intentbot/pkg/config"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/turn"
	"github.com/spf13/cobra"
)

// ChannelConsole identifica as atividades vindas do terminal
const ChannelConsole = "console"

var (
	chatUser         string
	chatConversation string
	chatStore        string
	chatProvider     string
	chatConnection   string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Conversa com o bot pelo terminal",
	Long: `Abre uma conversa com o bot de exemplo. Cada linha é um turno; digite /quit para sair.
Com o provedor dev, responda ao cartão de login com "login".`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatUser, "user", "console-user", "ID do usuário")
	chatCmd.Flags().StringVar(&chatConversation, "conversation", "", "ID da conversa (gerado se vazio)")
	chatCmd.Flags().StringVar(&chatStore, "store", config.StoreSQLite, "armazenamento de estado (postgres, sqlite, memory)")
	chatCmd.Flags().StringVar(&chatProvider, "provider", config.ProviderDev, "provedor de login (dev, oauth2)")
	chatCmd.Flags().StringVar(&chatConnection, "connection", "", "nome da conexão OAuth (padrão OAUTH_CONNECTION_NAME)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Store.Kind = chatStore
	cfg.OAuth.Provider = chatProvider
	if chatConnection != "" {
		cfg.OAuth.ConnectionName = chatConnection
	}
	if cfg.OAuth.ConnectionName == "" {
		cfg.OAuth.ConnectionName = ChannelConsole
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs vão para stderr para não misturar com a conversa
	appLogger := logger.NewLoggerWithLevel(logger.ParseLevel(cfg.LogLevel), os.Stderr, os.Stderr)
	rt, err := bootstrap.Build(cfg, appLogger)
	if err != nil {
		return err
	}
	defer rt.Close()

	conversation := chatConversation
	if conversation == "" {
		conversation = uuid.New().String()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Conversa %s. Digite /quit para sair.\n", conversation)
	return chatLoop(ctx, rt.Bot, cmd.InOrStdin(), cmd.OutOrStdout(), chatSession{
		UserID:         chatUser,
		ConversationID: conversation,
	})
}

type turnHandler interface {
	OnTurn(ctx context.Context, t turn.Turn) error
}

type chatSession struct {
	UserID         string
	ConversationID string
}

func (s chatSession) activity(kind, text string) turn.Activity {
	return turn.Activity{
		ID:             uuid.New().String(),
		Type:           kind,
		Text:           text,
		ChannelID:      ChannelConsole,
		UserID:         s.UserID,
		UserName:       s.UserID,
		ConversationID: s.ConversationID,
		Timestamp:      time.Now().UTC(),
	}
}

// chatLoop abre a conversa e processa uma linha de in por turno até EOF ou /quit
func chatLoop(ctx context.Context, b turnHandler, in io.Reader, out io.Writer, s chatSession) error {
	if err := runTurn(ctx, b, out, s.activity(turn.TypeConversationUpdate, "")); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		if err := runTurn(ctx, b, out, s.activity(turn.TypeMessage, line)); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func runTurn(ctx context.Context, b turnHandler, out io.Writer, activity turn.Activity) error {
	buf := turn.NewBuffer(activity)
	if err := b.OnTurn(ctx, buf); err != nil {
		return err
	}
	for _, msg := range buf.Sent() {
		printMessage(out, msg)
	}
	return nil
}

func printMessage(out io.Writer, msg turn.Message) {
	if msg.Text != "" {
		fmt.Fprintf(out, "bot: %s\n", msg.Text)
	}
	if card := msg.SignInCard; card != nil {
		fmt.Fprintf(out, "bot: [%s] %s\n     %s\n", card.Title, card.Text, card.Link)
	}
}
