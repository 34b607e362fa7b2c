package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"safeloop_bot/internal/models"
	"safeloop_bot/internal/modules/config"
	storage "safeloop_bot/internal/modules/storage/service"
	"safeloop_bot/pkg/logger"
)

// Telegram — пассивный нотифайер: доставляет отчёты цикла и алерты в чат.
// Ошибка доставки никогда не роняет цикл — логируем и едем дальше.
// Без токена работает в режиме stdout (удобно локально и в тестах).
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	// для команд /status, /lots, /deposit, /withdraw
	store     *storage.Store
	runtimeID string
}

func NewTelegram(cfg *config.Config, store *storage.Store) (*Telegram, error) {
	t := &Telegram{
		chatID:    cfg.Telegram.ChatID,
		store:     store,
		runtimeID: cfg.RuntimeID,
	}
	if cfg.Telegram.Token == "" {
		logger.Info("telegram token is empty, notifier falls back to stdout")
		return t, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("notify.NewTelegram: %w", err)
	}
	t.bot = bot
	return t, nil
}

func (t *Telegram) send(text string) {
	if t.bot == nil {
		fmt.Println(text)
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		logger.Error("telegram send error: %v", err)
	}
}

// SendReport — итог тика в том же формате, что и исторические отчёты.
func (t *Telegram) SendReport(_ context.Context, r models.CycleReport) {
	var b strings.Builder
	b.WriteString("🧠 SafeLoop Report\n")
	fmt.Fprintf(&b, "Action: %s\n", r.Action)
	fmt.Fprintf(&b, "Price: $%.2f\n", r.Price)
	fmt.Fprintf(&b, "USDT: %.2f\n", r.Balances.Quote)
	fmt.Fprintf(&b, "BTC: %.6f\n", r.Balances.Base)
	fmt.Fprintf(&b, "Delta: %.2f%%", r.DeltaPercent())
	if r.Boosted {
		b.WriteString(" (boosted)")
	}
	b.WriteString("\n")
	if r.Momentum != 0 || r.MomentumSignal != 0 {
		fmt.Fprintf(&b, "MACD: %.4f | Signal: %.4f\n", r.Momentum, r.MomentumSignal)
	}
	fmt.Fprintf(&b, "Profit: %.2f | Drawdown: %.2f%%\n", r.Profit, r.Drawdown*100)
	if r.Details != "" {
		fmt.Fprintf(&b, "Details: %s\n", r.Details)
	}
	if len(r.Reasons) > 0 {
		b.WriteString("❌ Swap not executed due to:\n")
		for _, reason := range r.Reasons {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
	}
	fmt.Fprintf(&b, "Time: %s", r.Time.UTC().Format(time.RFC3339))
	t.send(b.String())
}

// SendError — алерт о нештатной ситуации цикла.
func (t *Telegram) SendError(_ context.Context, err error) {
	t.send(fmt.Sprintf("🚨 SafeLoop ERROR!\nError: %v\nTime: %s",
		err, time.Now().UTC().Format(time.RFC3339)))
}

// SendService — произвольное сервисное сообщение (газ, старт, вотчер).
func (t *Telegram) SendService(_ context.Context, format string, args ...any) {
	t.send(fmt.Sprintf(format, args...))
}

// Start — long-poll команд оператора. Блокируется до отмены контекста,
// запускается отдельной горутиной из fx-хука. Без бота просто выходим.
func (t *Telegram) Start(ctx context.Context) {
	if t.bot == nil {
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || update.Message.Chat.ID != t.chatID {
				continue
			}
			t.handleCommand(ctx, update.Message.Text)
		}
	}
}

func (t *Telegram) handleCommand(ctx context.Context, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "/status":
		t.replyStatus(ctx)
	case "/lots":
		t.replyLots(ctx)
	case "/deposit":
		t.recordManual(ctx, models.ManualDeposit, fields[1:])
	case "/withdraw":
		t.recordManual(ctx, models.ManualWithdraw, fields[1:])
	case "/help", "/start":
		t.send("Commands: /status, /lots, /deposit <usd> [note], /withdraw <usd> [note]")
	}
}

func (t *Telegram) replyStatus(ctx context.Context) {
	state, ok, err := t.store.LoadState(ctx, t.runtimeID)
	if err != nil {
		t.send(fmt.Sprintf("status error: %v", err))
		return
	}
	if !ok {
		t.send("state is not initialized yet")
		return
	}

	dump, err := sonic.MarshalIndent(map[string]any{
		"runtime_id":   state.RuntimeID,
		"base_point":   state.BasePoint,
		"usdt":         state.CurrentBalances.Quote,
		"btc":          state.CurrentBalances.Base,
		"start_value":  state.StartValue,
		"total_profit": state.TotalProfit,
		"last_swap":    state.LastSwap,
		"prices_len":   state.Prices.Len(),
	}, "", "  ")
	if err != nil {
		t.send(fmt.Sprintf("status error: %v", err))
		return
	}
	t.send("📊 Status\n" + string(dump))
}

func (t *Telegram) replyLots(ctx context.Context) {
	lots, err := t.store.ActiveLots(ctx, t.runtimeID)
	if err != nil {
		t.send(fmt.Sprintf("lots error: %v", err))
		return
	}
	if len(lots) == 0 {
		t.send("no active lots")
		return
	}

	var b strings.Builder
	b.WriteString("📦 Active lots\n")
	for _, l := range lots {
		fmt.Fprintf(&b, "#%d %.6f BTC @ %.2f (%.2f USD)\n", l.ID, l.AmountBase, l.Price, l.AmountUSD)
	}
	t.send(b.String())
}

func (t *Telegram) recordManual(ctx context.Context, typ models.ManualType, args []string) {
	if len(args) == 0 {
		t.send("usage: /deposit <usd> [note]")
		return
	}
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil || amount <= 0 {
		t.send(fmt.Sprintf("bad amount %q", args[0]))
		return
	}

	adj := models.ManualAdjustment{
		RuntimeID: t.runtimeID,
		Type:      typ,
		AmountUSD: amount,
		Note:      strings.Join(args[1:], " "),
	}
	if err := t.store.InsertManual(ctx, adj); err != nil {
		t.send(fmt.Sprintf("manual record error: %v", err))
		return
	}
	t.send(fmt.Sprintf("✅ %s %.2f USD recorded, baseline will absorb it next cycle", typ, amount))
}
