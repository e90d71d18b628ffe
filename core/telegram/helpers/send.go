package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/hostline/hostbot/core/logger"
	"github.com/hostline/hostbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

func send(c tele.Context, text string, opts *tele.SendOptions) error {
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if opts != nil {
			return c.Send(text, opts)
		}
		return c.Send(text)
	})
}

// SendText sends raw text (no parse mode) with optional reply markup.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var opts *tele.SendOptions
	if len(markup) > 0 && markup[0] != nil {
		opts = &tele.SendOptions{ReplyMarkup: markup[0]}
	}
	return send(c, text, opts)
}
