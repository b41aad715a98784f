package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"ai_chat_go_backend/cmd/chat/config"
	"ai_chat_go_backend/internal/database"
	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
	"ai_chat_go_backend/internal/responder"
	"ai_chat_go_backend/internal/services"
	"ai_chat_go_backend/internal/store"
	"ai_chat_go_backend/internal/utils/broker"
)

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	st, err := store.NewGormStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	if err := store.EnsureSeeded(st); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}

	var replies services.Responder = responder.NewRules()
	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GenAI client")
		}
		defer client.Close()
		replies = responder.NewGemini(client, cfg.GeminiModel)
		log.Info().Str("model", cfg.GeminiModel).Msg("Using Gemini responder")
	}

	tier := models.ParseTier(cfg.Tier)
	quota := services.NewQuotaService(st, tier)
	conversations := services.NewConversationService(st)
	messages := services.NewMessageService(st, replies)
	events := broker.NewBroker()
	chat := services.NewChatSessionService(messages, quota, replies, events)
	exporter := services.NewExportService(conversations, messages)

	a := &app{
		quota:         quota,
		conversations: conversations,
		messages:      messages,
		chat:          chat,
		exporter:      exporter,
		events:        events,
	}
	a.run()
}

type app struct {
	quota         *services.QuotaService
	conversations *services.ConversationService
	messages      *services.MessageService
	chat          *services.ChatSessionService
	exporter      *services.ExportService
	events        *broker.Broker

	active   string
	activeCh <-chan broker.ReplyEvent
}

func (a *app) run() {
	fmt.Println("AI Chat. Type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest := splitCommand(line)
		if cmd == "quit" || cmd == "exit" {
			break
		}
		if err := a.dispatch(cmd, rest); err != nil {
			fmt.Println("error:", err)
		}
	}
	if a.active != "" {
		a.chat.CancelPending(a.active)
	}
}

func (a *app) dispatch(cmd, rest string) error {
	switch cmd {
	case "help":
		a.printHelp()
		return nil
	case "new":
		return a.cmdNew(rest)
	case "list":
		return a.cmdList()
	case "search":
		return a.cmdSearch(rest)
	case "open":
		return a.cmdOpen(rest)
	case "pin":
		return a.cmdPin(rest)
	case "rename":
		return a.cmdRename(rest)
	case "delete":
		return a.cmdDeleteConversation(rest)
	case "send":
		return a.cmdSend(rest)
	case "messages":
		return a.cmdMessages()
	case "rate":
		return a.cmdRate(rest)
	case "regen":
		return a.cmdRegenerate(rest)
	case "delmsg":
		return a.cmdDeleteMessage(rest)
	case "export":
		return a.cmdExport(rest)
	case "usage":
		return a.cmdUsage()
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

func (a *app) printHelp() {
	fmt.Print(`Conversations:
  new [title]          start a conversation and open it
  list                 list conversations (pinned first)
  search <query>       filter conversations by title
  open <id|title>      make a conversation active
  pin <id|title>       toggle pin
  rename <id> <title>  rename a conversation
  delete <id|title>    delete a conversation and its messages
Messages (active conversation):
  send <text>          send a user message; the reply arrives async
  messages             show the transcript
  rate <id> up|down|none
  regen <id>           regenerate an assistant reply
  delmsg <id>          delete a message
  export txt|md|pdf [path]
Other:
  usage                today's message count and limit
  quit
`)
}

func (a *app) cmdNew(title string) error {
	conv, err := a.conversations.Create(title)
	if err != nil {
		return err
	}
	a.setActive(conv.ID)
	fmt.Println("opened new conversation", shortID(conv.ID))
	return nil
}

func (a *app) cmdList() error {
	conversations, err := a.conversations.List()
	if err != nil {
		return err
	}
	a.printConversations(conversations)
	return nil
}

func (a *app) cmdSearch(query string) error {
	conversations, err := a.conversations.Search(query)
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		fmt.Println("no conversations found")
		return nil
	}
	a.printConversations(conversations)
	return nil
}

func (a *app) printConversations(conversations []models.Conversation) {
	for _, conv := range conversations {
		marker := " "
		if conv.IsPinned {
			marker = "*"
		}
		preview, _ := a.conversations.Preview(conv.ID)
		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s %s  %-30s  %s\n", marker, shortID(conv.ID), title, preview)
	}
}

func (a *app) cmdOpen(arg string) error {
	conv, err := a.resolveConversation(arg)
	if err != nil {
		return err
	}
	a.setActive(conv.ID)
	fmt.Println("opened", conv.Title)
	return a.cmdMessages()
}

func (a *app) cmdPin(arg string) error {
	conv, err := a.resolveConversation(arg)
	if err != nil {
		return err
	}
	return a.conversations.TogglePin(conv.ID)
}

func (a *app) cmdRename(rest string) error {
	arg, title := splitCommand(rest)
	if title == "" {
		return fmt.Errorf("usage: rename <id> <title>")
	}
	conv, err := a.resolveConversation(arg)
	if err != nil {
		return err
	}
	return a.conversations.Rename(conv.ID, title)
}

func (a *app) cmdDeleteConversation(arg string) error {
	conv, err := a.resolveConversation(arg)
	if err != nil {
		return err
	}
	a.chat.CancelPending(conv.ID)
	if err := a.conversations.Delete(conv.ID); err != nil {
		return err
	}
	if a.active == conv.ID {
		a.setActive("")
	}
	fmt.Println("deleted", conv.Title)
	return nil
}

func (a *app) cmdSend(text string) error {
	if a.active == "" {
		return fmt.Errorf("no active conversation, use 'open' or 'new'")
	}
	if text == "" {
		return fmt.Errorf("usage: send <text>")
	}
	_, err := a.chat.Send(a.active, text)
	if errors.Is(err, apperrors.ErrQuotaExceeded) {
		limit := services.LimitFor(a.quota.Tier())
		return fmt.Errorf("you've reached your daily limit of %d messages", limit)
	}
	return err
}

func (a *app) cmdMessages() error {
	if a.active == "" {
		return fmt.Errorf("no active conversation")
	}
	messages, err := a.messages.ListByConversation(a.active)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		rating := ""
		if msg.Rating == models.RatingUp {
			rating = " [+1]"
		} else if msg.Rating == models.RatingDown {
			rating = " [-1]"
		}
		fmt.Printf("%s %-9s %s%s\n", shortID(msg.ID), msg.Sender, msg.Content, rating)
	}
	if a.chat.IsAwaitingReply(a.active) {
		fmt.Println("... assistant is typing")
	}
	return nil
}

func (a *app) cmdRate(rest string) error {
	arg, value := splitCommand(rest)
	msg, err := a.resolveMessage(arg)
	if err != nil {
		return err
	}
	return a.messages.Rate(msg.ID, models.Rating(value))
}

func (a *app) cmdRegenerate(arg string) error {
	msg, err := a.resolveMessage(arg)
	if err != nil {
		return err
	}
	fresh, err := a.messages.Regenerate(context.Background(), msg.ID)
	if err != nil {
		return err
	}
	fmt.Printf("assistant: %s\n", fresh.Content)
	return nil
}

func (a *app) cmdDeleteMessage(arg string) error {
	msg, err := a.resolveMessage(arg)
	if err != nil {
		return err
	}
	return a.messages.Delete(msg.ID)
}

func (a *app) cmdExport(rest string) error {
	if a.active == "" {
		return fmt.Errorf("no active conversation")
	}
	format, path := splitCommand(rest)
	conv, err := a.conversations.Get(a.active)
	if err != nil {
		return err
	}

	var ext string
	switch format {
	case "txt", "":
		format, ext = "txt", "txt"
	case "md":
		ext = "md"
	case "pdf":
		ext = "pdf"
	default:
		return fmt.Errorf("usage: export txt|md|pdf [path]")
	}
	if path == "" {
		path = services.ExportFileName(conv.Title, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "txt":
		err = a.exporter.WriteText(f, a.active)
	case "md":
		err = a.exporter.WriteMarkdown(f, a.active)
	case "pdf":
		err = a.exporter.WritePDF(f, a.active)
	}
	if err != nil {
		return err
	}
	fmt.Println("exported to", path)
	return nil
}

func (a *app) cmdUsage() error {
	used, err := a.quota.Used()
	if err != nil {
		return err
	}
	limit := services.LimitFor(a.quota.Tier())
	if limit == services.Unlimited {
		fmt.Printf("messages today: %d (unlimited, %s tier)\n", used, a.quota.Tier())
	} else {
		fmt.Printf("messages today: %d / %d (%s tier)\n", used, limit, a.quota.Tier())
	}
	return nil
}

// setActive switches the broker subscription so replies for the active
// conversation print as they arrive.
func (a *app) setActive(id string) {
	if a.active != "" && a.activeCh != nil {
		a.events.Unsubscribe(a.active, a.activeCh)
		a.activeCh = nil
	}
	a.active = id
	if id == "" {
		return
	}
	ch := a.events.Subscribe(id)
	a.activeCh = ch
	go func() {
		for event := range ch {
			if event.Err != nil {
				fmt.Printf("\nreply failed: %v\n> ", event.Err)
				continue
			}
			fmt.Printf("\nassistant: %s\n> ", event.Content)
		}
	}()
}

func (a *app) resolveConversation(arg string) (*models.Conversation, error) {
	if arg == "" {
		return nil, fmt.Errorf("missing conversation id")
	}
	conversations, err := a.conversations.List()
	if err != nil {
		return nil, err
	}
	for i := range conversations {
		conv := &conversations[i]
		if conv.ID == arg || strings.HasPrefix(conv.ID, arg) || strings.EqualFold(conv.Title, arg) {
			return conv, nil
		}
	}
	return nil, apperrors.NotFoundf("conversation %s", arg)
}

func (a *app) resolveMessage(arg string) (*models.Message, error) {
	if a.active == "" {
		return nil, fmt.Errorf("no active conversation")
	}
	if arg == "" {
		return nil, fmt.Errorf("missing message id")
	}
	messages, err := a.messages.ListByConversation(a.active)
	if err != nil {
		return nil, err
	}
	for i := range messages {
		msg := &messages[i]
		if msg.ID == arg || strings.HasPrefix(msg.ID, arg) {
			return msg, nil
		}
	}
	return nil, apperrors.NotFoundf("message %s", arg)
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
