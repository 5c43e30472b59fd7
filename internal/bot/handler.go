package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/jkirui/shellbot-agent/config"
	"github.com/jkirui/shellbot-agent/internal/executor"
	"github.com/jkirui/shellbot-agent/internal/plan"
)

// Gateway asks the language model to turn a user message into raw response
// text. Implemented by llm.Client.
type Gateway interface {
	Chat(ctx context.Context, userMessage string) (string, error)
}

// Sender delivers an outbound chat message. Delivery failures are treated
// as non-fatal everywhere in the pipeline.
type Sender interface {
	Send(chatID int64, text string) error
}

// Message is one inbound chat message.
type Message struct {
	ChatID int64
	From   string
	Text   string
}

// Handler runs the per-message pipeline: authorize, query the model,
// extract commands, execute them, report. Handlers are safe for concurrent
// use; all fields are read-only after construction.
type Handler struct {
	cfg     *config.Config
	gateway Gateway
	exec    *executor.Executor
	sender  Sender
	logger  *zap.Logger
}

// NewHandler wires the pipeline together.
func NewHandler(cfg *config.Config, gateway Gateway, exec *executor.Executor, sender Sender, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		gateway: gateway,
		exec:    exec,
		sender:  sender,
		logger:  logger,
	}
}

// Handle processes one inbound message end to end. Nothing here is fatal to
// the process; every failure terminates this message's pipeline only.
func (h *Handler) Handle(ctx context.Context, msg Message) {
	logger := h.logger.With(zap.Int64("chat_id", msg.ChatID), zap.String("from", msg.From))
	logger.Info("received message")

	if !h.cfg.IsChatAllowed(msg.ChatID) {
		logger.Info("ignoring unauthorized chat")
		return
	}

	if msg.Text == "" {
		logger.Info("ignoring non-text message")
		return
	}

	logger.Info("processing message", zap.String("text", msg.Text))

	h.reply(msg.ChatID, "🔄 Analyzing task...")

	response, err := h.gateway.Chat(ctx, msg.Text)
	if err != nil {
		logger.Error("model call failed", zap.Error(err))
		h.reply(msg.ChatID, "❌ LLM request failed: "+err.Error())
		return
	}

	commands := plan.Extract(response, logger)
	if len(commands) == 0 {
		h.reply(msg.ChatID, "ℹ️ No commands needed for this message.")
		return
	}

	h.reply(msg.ChatID, formatPlan(commands))

	results := h.exec.RunAll(ctx, commands)

	if h.cfg.EchoResult {
		h.reply(msg.ChatID, formatReport(commands, results))
	}
}

// reply sends best-effort; a failed delivery never aborts the pipeline.
func (h *Handler) reply(chatID int64, text string) {
	if err := h.sender.Send(chatID, text); err != nil {
		h.logger.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
