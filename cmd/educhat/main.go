package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/educhat-ai/educhat/internal/chat"
	"github.com/educhat-ai/educhat/internal/config"
	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/educhat-ai/educhat/internal/store"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Setup logger. The terminal belongs to the chat; logs go to stderr.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()

	storage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session storage")
	}
	defer storage.Close()

	sessions := store.NewSessionStore(storage)
	if err := sessions.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load sessions")
	}

	gateway := chat.NewClient(cfg.Client.GatewayURL)

	// Progressive rendering: on every update, print the portion of the
	// latest assistant reply that has not been shown yet.
	var printed int
	orch := chat.NewOrchestrator(gateway, sessions, log.Logger,
		chat.WithSaveDebounce(cfg.Client.SaveDebounce),
		chat.WithUpdateFunc(func(s domain.ChatSession) {
			if len(s.Messages) == 0 {
				return
			}
			last := s.Messages[len(s.Messages)-1]
			if last.Role != domain.RoleAssistant {
				return
			}
			if printed > len(last.Content) {
				printed = 0
			}
			fmt.Print(last.Content[printed:])
			printed = len(last.Content)
		}),
	)

	fmt.Println("EduChat - your learning assistant. Type /help for commands.")
	repl(ctx, orch, &printed)

	if err := orch.Flush(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to save session on exit")
	}
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (store.Storage, error) {
	switch cfg.Driver {
	case "sqlite":
		return store.NewSQLiteStorage(ctx, cfg.Path)
	default:
		return store.NewFileStorage(cfg.Path)
	}
}

func repl(ctx context.Context, orch *chat.Orchestrator, printed *int) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var pendingImages []string

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			cmd, arg, _ := strings.Cut(line, " ")
			arg = strings.TrimSpace(arg)
			switch cmd {
			case "/quit", "/exit":
				return
			case "/help":
				printHelp()
			case "/new":
				if err := orch.NewChat(ctx); err != nil {
					fmt.Println("Error:", err)
				} else {
					fmt.Println("Started a new chat.")
				}
			case "/list":
				listSessions(orch)
			case "/open":
				openSession(ctx, orch, arg)
			case "/delete":
				deleteSession(ctx, orch, arg)
			case "/search":
				switch arg {
				case "on":
					orch.SetWebSearch(true)
					fmt.Println("Web search enabled.")
				case "off":
					orch.SetWebSearch(false)
					fmt.Println("Web search disabled.")
				default:
					fmt.Println("Usage: /search on|off")
				}
			case "/image":
				uri, err := readImage(arg)
				if err != nil {
					fmt.Println("Error:", err)
					continue
				}
				pendingImages = append(pendingImages, uri)
				fmt.Printf("Attached %s (%d pending).\n", arg, len(pendingImages))
			default:
				fmt.Println("Unknown command. Type /help for commands.")
			}
			continue
		}

		*printed = 0
		if err := orch.Submit(ctx, line, pendingImages); err != nil {
			fmt.Println("Error:", err)
		}
		pendingImages = nil
		fmt.Println()
	}
}

func printHelp() {
	fmt.Println(`Commands:
  /new            start a new chat
  /list           list saved chats
  /open <n>       open chat number n from /list
  /delete <n>     delete chat number n from /list
  /image <path>   attach an image to the next message
  /search on|off  toggle web search enrichment
  /quit           save and exit`)
}

func listSessions(orch *chat.Orchestrator) {
	sessions := orch.Sessions()
	if len(sessions) == 0 {
		fmt.Println("No saved chats.")
		return
	}
	for i, s := range sessions {
		fmt.Printf("%2d. %s (%d messages, %s)\n",
			i+1, s.Title, s.Metadata.MessageCount, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func sessionByIndex(orch *chat.Orchestrator, arg string) (domain.ChatSession, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Println("Expected a chat number from /list.")
		return domain.ChatSession{}, false
	}
	sessions := orch.Sessions()
	if n < 1 || n > len(sessions) {
		fmt.Println("No such chat.")
		return domain.ChatSession{}, false
	}
	return sessions[n-1], true
}

func openSession(ctx context.Context, orch *chat.Orchestrator, arg string) {
	session, ok := sessionByIndex(orch, arg)
	if !ok {
		return
	}
	if err := orch.SelectChat(ctx, session.ID); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Opened %q.\n", session.Title)
	for _, m := range session.Messages {
		fmt.Printf("\n[%s] %s\n", m.Role, m.Content)
	}
}

func deleteSession(ctx context.Context, orch *chat.Orchestrator, arg string) {
	session, ok := sessionByIndex(orch, arg)
	if !ok {
		return
	}
	if err := orch.DeleteChat(ctx, session.ID); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Deleted %q.\n", session.Title)
}

// readImage loads an image file and encodes it as a data URI, the form
// the gateway expects for vision requests.
func readImage(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("usage: /image <path>")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%s does not look like an image (%s)", path, mimeType)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
