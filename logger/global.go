package logger

import (
	"log/slog"

	"github.com/levely/playereconomy/economy/events"
)

// LogMutation logs a committed balance mutation.
func LogMutation(action events.Action, data events.ActionData) {
	slog.Info("Balance mutated",
		slog.String("type", "mut"),
		slog.String("action", action.String()),
		slog.String("player", data.PlayerID.String()),
		slog.String("economy", data.Economy.Name()),
		slog.String("amount", data.Amount.String()),
		slog.String("balance", data.Balance.String()),
	)
}

// LogSystem logs system events.
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events.
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
