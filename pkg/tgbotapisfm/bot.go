package tgbotapisfm

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultInitialState is the state of users the cache knows nothing about.
const DefaultInitialState = "start"

// Sender is the part of the Telegram API the bot writes through.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Config struct {
	Token           string
	Expiration      time.Duration // how long a user's state is kept
	CleanupInterval time.Duration
	States          map[string]State
	InitialState    string
	// AllowList, when not empty, is the only set of users the bot serves.
	AllowList  []int64
	IgnoreList []int64
}

type Bot struct {
	BotAPI        *tgbotapi.BotAPI
	sender        Sender
	expiration    time.Duration
	initialState  string
	limiter       *Limiter
	cache         *gocache.Cache
	logger        *zap.Logger
	states        map[string]State
	globalStates  []*State
	updateHandler HandlerFunc
	running       atomic.Bool
	statesMu      sync.RWMutex

	AllowList  []int64
	IgnoreList []int64
}

// NewBot connects to Telegram with cfg.Token. A nil logger disables logging.
func NewBot(cfg Config, logger *zap.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, ErrInvalidToken
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	botAPI, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, NewValidationError(ErrTelegramInit, err)
	}
	b := newBot(cfg, botAPI, logger)
	b.BotAPI = botAPI
	return b, nil
}

// NewBotWithSender builds a bot that sends through s and never polls
// Telegram itself; updates are fed with HandleUpdate.
func NewBotWithSender(cfg Config, s Sender, logger *zap.Logger) (*Bot, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return newBot(cfg, s, logger), nil
}

func validate(cfg Config) error {
	if cfg.Expiration < 0 {
		return NewValidationError(ErrNegativeExpiration, cfg.Expiration)
	}
	if cfg.CleanupInterval < 0 {
		return NewValidationError(ErrNegativeCleanup, cfg.CleanupInterval)
	}
	if cfg.InitialState != "" {
		if _, ok := cfg.States[cfg.InitialState]; !ok {
			return NewValidationError(ErrStateHandlerNotFound, cfg.InitialState)
		}
	}
	return nil
}

func newBot(cfg Config, s Sender, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	initial := cfg.InitialState
	if initial == "" {
		initial = DefaultInitialState
	}
	b := &Bot{
		sender:       s,
		expiration:   cfg.Expiration,
		initialState: initial,
		limiter:      NewLimiter(),
		cache:        gocache.New(cfg.Expiration, cfg.CleanupInterval),
		logger:       logger,
		AllowList:    cfg.AllowList,
		IgnoreList:   cfg.IgnoreList,
	}
	b.ReplaceStates(cfg.States)
	return b
}

// SetUpdateHandler installs a hook called for every update before routing.
// It must be set before Start.
func (b *Bot) SetUpdateHandler(handler HandlerFunc) error {
	if b.running.Load() {
		return NewValidationError(ErrBotStarted, "update handler")
	}
	b.updateHandler = handler
	return nil
}

// Start polls Telegram in a goroutine. The returned channel yields at most
// one error and is closed when polling ends.
func (b *Bot) Start(offset, timeout int) chan error {
	errChan := make(chan error, 1)
	if b.BotAPI == nil {
		errChan <- fmt.Errorf("bot has no telegram connection")
		close(errChan)
		return errChan
	}
	if !b.running.CompareAndSwap(false, true) {
		b.logger.Warn("bot is already running")
		errChan <- ErrBotStarted
		close(errChan)
		return errChan
	}

	b.logger.Info("starting telegram bot", zap.String("username", b.BotAPI.Self.UserName))
	go func() {
		defer close(errChan)
		if err := b.HandleUpdates(offset, timeout); err != nil {
			errChan <- err
		}
	}()
	return errChan
}

func (b *Bot) Stop() {
	if !b.running.CompareAndSwap(true, false) {
		return
	}
	b.BotAPI.StopReceivingUpdates()
	b.logger.Info("telegram bot stopped")
}

// HandleUpdates routes every update from the long-polling channel until it
// is closed by Stop.
func (b *Bot) HandleUpdates(offset, timeout int) error {
	u := tgbotapi.NewUpdate(offset)
	u.Timeout = timeout
	updates := b.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		if err := b.HandleUpdate(update); err != nil {
			b.logger.Error("failed to handle update", zap.Int("update_id", update.UpdateID), zap.Error(err))
		}
	}
	return nil
}

// HandleUpdate routes one update: global states first, then the sender's
// current state.
func (b *Bot) HandleUpdate(update tgbotapi.Update) error {
	if b.updateHandler != nil {
		if err := b.updateHandler(b, update); err != nil {
			return fmt.Errorf("update handler: %w", err)
		}
	}

	from := update.SentFrom()
	if from == nil {
		return nil
	}
	if !b.Allowed(from.ID) {
		b.logger.Warn("update from user outside allow list", zap.Int64("user_id", from.ID), zap.String("username", from.UserName))
		return nil
	}
	if slices.Contains(b.IgnoreList, from.ID) {
		return nil
	}
	if chat := update.FromChat(); chat != nil && slices.Contains(b.IgnoreList, chat.ID) {
		return nil
	}

	found, err := b.HandleGlobalStates(update)
	if err != nil {
		return fmt.Errorf("global state: %w", err)
	}
	if found {
		return nil
	}

	stateName, err := b.GetUserState(from.ID)
	if err != nil {
		stateName = b.initialState
	}
	b.statesMu.RLock()
	state, ok := b.states[stateName]
	b.statesMu.RUnlock()
	if !ok {
		return NewValidationError(ErrStateHandlerNotFound, stateName)
	}

	if _, err := b.SelectHandler(update, &state); err != nil {
		return fmt.Errorf("state %s: %w", stateName, err)
	}
	return nil
}

// Allowed reports whether userID may talk to the bot.
func (b *Bot) Allowed(userID int64) bool {
	return len(b.AllowList) == 0 || slices.Contains(b.AllowList, userID)
}

func (b *Bot) GetUserState(userID int64) (string, error) {
	v, ok := b.cache.Get(strconv.FormatInt(userID, 10))
	if !ok {
		return "", ErrStateNotFound
	}
	name, ok := v.(string)
	if !ok {
		return "", ErrInvalidStateType
	}
	return name, nil
}

func (b *Bot) SetUserState(userID int64, state string) error {
	b.statesMu.RLock()
	_, ok := b.states[state]
	b.statesMu.RUnlock()
	if !ok {
		return NewValidationError(ErrStateHandlerNotFound, state)
	}
	b.cache.Set(strconv.FormatInt(userID, 10), state, b.expiration)
	return nil
}

// ResetUserState returns the user to the initial state.
func (b *Bot) ResetUserState(userID int64) {
	b.cache.Delete(strconv.FormatInt(userID, 10))
}

// EnterState switches the user to state and runs its entrance handler.
func (b *Bot) EnterState(userID int64, state string, update tgbotapi.Update) error {
	if err := b.SetUserState(userID, state); err != nil {
		return err
	}
	b.statesMu.RLock()
	next := b.states[state]
	b.statesMu.RUnlock()
	if next.AtEntranceFunc == nil {
		return nil
	}
	return next.AtEntranceFunc.Handle(b, update)
}

// HandleGlobalStates runs the first matching handler of a global state and
// reports whether one matched.
func (b *Bot) HandleGlobalStates(update tgbotapi.Update) (bool, error) {
	b.statesMu.RLock()
	globals := b.globalStates
	b.statesMu.RUnlock()

	for _, state := range globals {
		found, err := b.SelectHandler(update, state)
		if err != nil {
			b.logger.Error("failed to handle global state", zap.Error(err))
			continue
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

func (b *Bot) SelectHandler(update tgbotapi.Update, state *State) (bool, error) {
	switch {
	case update.Message != nil:
		return b.handleMessage(state, update)
	case update.CallbackQuery != nil:
		return b.handleCallback(state, update)
	}
	return false, nil
}

// messageKeys lists the handler keys a message may match, most specific first.
func messageKeys(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	keys := []string{text}
	if !strings.HasPrefix(text, "/") {
		return keys
	}
	cmd := strings.Fields(text)[0]
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	if cmd != text {
		keys = append(keys, cmd)
	}
	return keys
}

func (b *Bot) handleMessage(state *State, update tgbotapi.Update) (bool, error) {
	msg := update.Message
	for _, key := range messageKeys(msg.Text) {
		h, ok := state.MessageHandlers[key]
		if !ok {
			continue
		}
		if err := h.Handle(b, update); err != nil {
			b.logger.Error("failed to handle command", zap.String("command", key), zap.Error(err))
			return true, nil
		}
		b.logger.Info("command handled",
			zap.String("command", key),
			zap.Int64("chat_id", msg.Chat.ID),
			zap.String("username", msg.From.UserName),
		)
		return true, nil
	}

	if state.CatchAllFunc != nil {
		if err := state.CatchAllFunc.Handle(b, update); err != nil {
			b.logger.Error("failed to handle message", zap.Error(err))
		}
		return false, nil
	}
	b.logger.Debug("command not found", zap.String("text", msg.Text), zap.Int64("chat_id", msg.Chat.ID))
	return false, nil
}

func (b *Bot) handleCallback(state *State, update tgbotapi.Update) (bool, error) {
	cq := update.CallbackQuery
	if h, ok := state.CallbackHandlers[cq.Data]; ok {
		if err := h.Handle(b, update); err != nil {
			return true, err
		}
		b.logger.Info("callback handled", zap.String("callback", cq.Data), zap.Int64("user_id", cq.From.ID))
		return true, nil
	}
	if state.CatchAllFunc != nil {
		if err := state.CatchAllFunc.Handle(b, update); err != nil {
			b.logger.Error("failed to handle callback", zap.Error(err))
		}
	}
	return false, nil
}

// ReplaceStates swaps the whole state table.
func (b *Bot) ReplaceStates(newStates map[string]State) {
	if newStates == nil {
		newStates = make(map[string]State)
	}
	globals := make([]*State, 0)
	for _, s := range newStates {
		if s.Global {
			s := s
			globals = append(globals, &s)
		}
	}

	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	b.states = newStates
	b.globalStates = globals
}

// SendMessage sends c through the rate limiter.
func (b *Bot) SendMessage(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.limiter.Wait()
	return b.sender.Send(c)
}
