package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvloznov/expense-bot/internal/api"
	"github.com/dvloznov/expense-bot/internal/config"
	"github.com/dvloznov/expense-bot/internal/domain"
	"github.com/dvloznov/expense-bot/internal/extraction"
	"github.com/dvloznov/expense-bot/internal/extraction/gemini"
	"github.com/dvloznov/expense-bot/internal/ledger"
	"github.com/dvloznov/expense-bot/internal/logger"
	"github.com/dvloznov/expense-bot/internal/telegram"
)

// Extractor is the part of extraction.Client the CLI needs.
type Extractor interface {
	Extract(ctx context.Context, rawText string) (*domain.Record, error)
}

// Bot is the part of telegram.Client the CLI needs.
type Bot interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SetWebhook(ctx context.Context, webhookURL, secret string) error
	DeleteWebhook(ctx context.Context) error
}

// Sheet is the part of ledger.SheetsWriter the CLI needs.
type Sheet interface {
	EnsureHeader(ctx context.Context) (bool, error)
	Range() string
}

// deps holds the constructors commands build their clients with.
type deps struct {
	loadConfig   func() (*config.Config, error)
	newExtractor func(ctx context.Context, cfg *config.Config) (Extractor, error)
	newBot       func(cfg *config.Config) Bot
	newSheet     func(ctx context.Context, cfg *config.Config) (Sheet, error)
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		newExtractor: func(ctx context.Context, cfg *config.Config) (Extractor, error) {
			provider, err := gemini.NewProvider(ctx, gemini.Config{
				APIKey:  cfg.GeminiAPIKey,
				Model:   cfg.GeminiModel,
				BaseURL: cfg.GeminiBaseURL,
			})
			if err != nil {
				return nil, err
			}
			return extraction.NewClient(provider, cfg.DefaultTimezone,
				extraction.WithMaxRetries(cfg.GeminiMaxRetries),
			), nil
		},
		newBot: func(cfg *config.Config) Bot {
			return telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramAPIBaseURL, nil)
		},
		newSheet: func(ctx context.Context, cfg *config.Config) (Sheet, error) {
			service, err := ledger.NewSheetsService(ctx, ledger.Credentials{
				Email:      cfg.ServiceAccountEmail,
				PrivateKey: cfg.PrivateKey,
			})
			if err != nil {
				return nil, err
			}
			return ledger.NewSheetsWriter(service, cfg.SpreadsheetID, cfg.SheetName), nil
		},
	}
}

func newRootCmd(d deps) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "expense-bot",
		Short:         "Operator tools for the Telegram expense bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "info"
			if verbose {
				level = "debug"
			}
			log := logger.NewWithWriter(cmd.ErrOrStderr()).Level(logger.ParseLevel(level))
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newExtractCmd(d))
	root.AddCommand(newWebhookCmd(d))
	root.AddCommand(newSendCmd(d))
	root.AddCommand(newSheetCmd(d))
	return root
}

func newExtractCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <text>",
		Short: "Run extraction on a message without saving it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("extract: text is empty")
			}

			cfg, err := d.loadConfig()
			if err != nil {
				return err
			}
			extractor, err := d.newExtractor(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			rec, err := extractor.Extract(cmd.Context(), text)
			if err != nil {
				return err
			}
			rec.RawMessage = text

			out := map[string]interface{}{
				"amount":      rec.Amount,
				"purpose":     rec.Purpose,
				"category":    rec.Category,
				"time":        rec.Time,
				"source":      rec.Source,
				"raw_message": rec.RawMessage,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), telegram.SuccessMessage(rec))
			return nil
		},
	}
}

func newWebhookCmd(d deps) *cobra.Command {
	webhook := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the bot's Telegram webhook",
	}

	var baseURL string
	set := &cobra.Command{
		Use:   "set",
		Short: "Point the bot's webhook at this server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				return errors.New("webhook set: --url is required")
			}
			cfg, err := d.loadConfig()
			if err != nil {
				return err
			}

			target := strings.TrimRight(baseURL, "/") + api.WebhookPath
			if err := d.newBot(cfg).SetWebhook(cmd.Context(), target, cfg.TelegramWebhookSecret); err != nil {
				return err
			}
			log := logger.FromContext(cmd.Context())
			log.Info().
				Str("url", target).
				Bool("secret", cfg.TelegramWebhookSecret != "").
				Msg("Webhook registered")
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook set to %s\n", target)
			return nil
		},
	}
	set.Flags().StringVar(&baseURL, "url", "", "Public base URL of the server, e.g. https://bot.example.com")

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the bot's webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.loadConfig()
			if err != nil {
				return err
			}
			if err := d.newBot(cfg).DeleteWebhook(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Webhook deleted")
			return nil
		},
	}

	webhook.AddCommand(set, del)
	return webhook
}

func newSendCmd(d deps) *cobra.Command {
	var (
		chatID int64
		text   string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a plain-text message to a chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if chatID == 0 || strings.TrimSpace(text) == "" {
				return errors.New("send: --chat-id and --text are required")
			}
			cfg, err := d.loadConfig()
			if err != nil {
				return err
			}
			if err := d.newBot(cfg).SendMessage(cmd.Context(), chatID, text); err != nil {
				return err
			}
			log := logger.FromContext(cmd.Context())
			log.Debug().Int64("chat_id", chatID).Msg("Message sent")
			fmt.Fprintf(cmd.OutOrStdout(), "Sent to chat %d\n", chatID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&chatID, "chat-id", 0, "Telegram chat id")
	cmd.Flags().StringVar(&text, "text", "", "Message text")
	return cmd
}

func newSheetCmd(d deps) *cobra.Command {
	sheet := &cobra.Command{
		Use:   "sheet",
		Short: "Manage the ledger spreadsheet",
	}

	sheet.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the column header row if the sheet has none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.loadConfig()
			if err != nil {
				return err
			}
			s, err := d.newSheet(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			written, err := s.EnsureHeader(cmd.Context())
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "Header written to %s\n", s.Range())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Header already present in %s\n", s.Range())
			}
			return nil
		},
	})
	return sheet
}
