// Package cli implements the interactive chat surface.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SyntheticAutonomicMind/SAM-sub003/config"
	"github.com/SyntheticAutonomicMind/SAM-sub003/conversation"
	"github.com/SyntheticAutonomicMind/SAM-sub003/engine"
	"github.com/SyntheticAutonomicMind/SAM-sub003/llm"
	"github.com/SyntheticAutonomicMind/SAM-sub003/memory"
	"github.com/SyntheticAutonomicMind/SAM-sub003/speech"
	"github.com/SyntheticAutonomicMind/SAM-sub003/storage"
	"github.com/SyntheticAutonomicMind/SAM-sub003/stream"
)

// Options configures a chat session.
type Options struct {
	Provider string
	Session  string
	DBPath   string
	Speak    bool
}

const basePreamble = `You are SAM, a collaborative assistant. Answer directly, ` +
	`use the registered tools when they apply, and keep responses grounded in ` +
	`the conversation so far.`

// Chat runs the interactive loop until EOF or /quit.
func Chat(ctx context.Context, opts Options, logger zerolog.Logger) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return err
	}

	provider, err := llm.New(settings.LLM.Provider, llm.Options{
		APIKey:      apiKey,
		Model:       settings.LLM.Model,
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: float32(settings.LLM.Temperature),
	})
	if err != nil {
		return err
	}

	store := conversation.NewInMemoryStore()

	var persist *storage.SqliteStore
	if opts.DBPath != "" {
		persist, err = storage.OpenSqlite(opts.DBPath)
		if err != nil {
			return err
		}
		defer persist.Close()

		saved, err := persist.LoadSession(ctx, opts.Session)
		if err != nil {
			return err
		}
		for _, msg := range saved {
			if err := store.AddMessage(ctx, msg); err != nil {
				return err
			}
		}
		if len(saved) > 0 {
			fmt.Printf("Resumed session %q with %d messages.\n", opts.Session, len(saved))
		}
	}

	var retriever memory.Retriever = memory.NopRetriever{}
	if settings.Memory.DatabasePath != "" {
		sqliteRetriever, err := memory.OpenSqlite(settings.Memory.DatabasePath)
		if err != nil {
			return err
		}
		defer sqliteRetriever.Close()
		retriever = sqliteRetriever
	}

	builder := conversation.NewBuilder(retriever, logger).
		WithPreamble(basePreamble).
		WithMemoryLimit(settings.Memory.ResultLimit)

	var queue speech.Queue = speech.NopQueue{}
	if (opts.Speak || settings.Speech.Enabled) && settings.Speech.Command != "" {
		commandQueue := speech.NewCommandQueue(settings.Speech.Command, nil, logger)
		defer commandQueue.Close()
		queue = commandQueue
	}

	printer := newStreamPrinter()
	eng := engine.New(store, builder, provider, logger).
		WithScope(opts.Session).
		WithThrottleInterval(settings.Stream.ThrottleInterval).
		WithSpeech(queue).
		WithUpdateHandler(printer.update).
		WithImageHandler(func(img stream.ImageDisplay) {
			fmt.Printf("\n[images: %s]\n", strings.Join(img.ImagePaths, ", "))
		})

	fmt.Printf("Chatting with %s (%s). /quit to exit.\n", provider.Name(), provider.Model())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if prompt := eng.PendingPrompt(); prompt != nil {
			fmt.Printf("\n[input needed] %s\n", prompt.Prompt)
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		printer.reset()
		var result engine.TurnResult
		if eng.PendingPrompt() != nil {
			result, err = eng.RespondToToolPrompt(ctx, line)
		} else {
			result, err = eng.Send(ctx, line)
		}
		fmt.Println()

		switch {
		case errors.Is(err, engine.ErrTurnActive):
			fmt.Println("Still streaming the previous turn.")
			continue
		case result.Notice != "":
			fmt.Println(result.Notice)
		case result.Cancelled:
			fmt.Println("(cancelled)")
		}

		if persist != nil {
			messages, merr := store.Messages(ctx)
			if merr == nil {
				if serr := persist.SaveSession(ctx, opts.Session, messages); serr != nil {
					logger.Warn().Err(serr).Msg("failed to persist session")
				}
			}
		}
	}

	return scanner.Err()
}

// streamPrinter renders coalesced content updates incrementally.
type streamPrinter struct {
	printed map[string]int
}

func newStreamPrinter() *streamPrinter {
	return &streamPrinter{printed: make(map[string]int)}
}

func (p *streamPrinter) reset() {
	p.printed = make(map[string]int)
}

func (p *streamPrinter) update(messageID, content string) {
	n := p.printed[messageID]
	if len(content) > n {
		fmt.Print(content[n:])
		p.printed[messageID] = len(content)
	}
}
