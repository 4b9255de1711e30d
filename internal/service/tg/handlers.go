package tg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/model"
	"house_admin/internal/service/membership"
	"house_admin/pkg/tgbotapisfm"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	StateCommands = "commands"
	StateStart    = "start"
	StateIntake   = "intake"

	availableHousesKey = "available_houses"
)

type IntakeCreator interface {
	Create(ctx context.Context, record model.IntakeRecord) (*model.IntakeRecord, error)
}

type Syncer interface {
	SyncMembershipByEmail(ctx context.Context, email string) (membership.Outcome, error)
}

type HouseLister interface {
	AvailableHouses(ctx context.Context) ([]model.HouseWithCount, error)
}

// TGHandler serves the admin bot: intake entry, manual sync and house lookup.
type TGHandler struct {
	logger      *zap.Logger
	Intake      IntakeCreator
	Sync        Syncer
	Houses      HouseLister
	cache       *gocache.Cache
	forceUpdate chan struct{}
	timeout     time.Duration
}

func NewTGHandler(intake IntakeCreator, sync Syncer, houses HouseLister, forceUpdate chan struct{}, logger *zap.Logger) *TGHandler {
	return &TGHandler{
		logger:      logger,
		Intake:      intake,
		Sync:        sync,
		Houses:      houses,
		cache:       gocache.New(time.Minute, 5*time.Minute),
		forceUpdate: forceUpdate,
		timeout:     15 * time.Second,
	}
}

const helpText = `House admin bot.

/houses - houses with free seats
/sync <email> - re-sync membership for an email
/intake - add an intake record, then send lines like:
email: customer@example.com
house: 101
expires: 2026-12-31
name: Jane Doe
phone: +66 81 234 5678
line: jane.line
package: 12 months
price: 1200
channel: line
/cancel - abort the current step`

func (h *TGHandler) StatesMap() map[string]tgbotapisfm.State {
	return map[string]tgbotapisfm.State{
		StateCommands: h.CommandsState(),
		StateStart:    h.StartState(),
		StateIntake:   h.IntakeState(),
	}
}

// CommandsState is global so commands work from any conversation step.
func (h *TGHandler) CommandsState() tgbotapisfm.State {
	return tgbotapisfm.State{
		Global: true,
		MessageHandlers: map[string]tgbotapisfm.Handler{
			"/start":  h.StartHandler(),
			"/help":   h.StartHandler(),
			"/cancel": h.CancelHandler(),
			"/houses": h.HousesHandler(),
			"/sync":   h.SyncHandler(),
			"/intake": h.IntakeHandler(),
		},
	}
}

func (h *TGHandler) StartState() tgbotapisfm.State {
	return tgbotapisfm.State{
		CatchAllFunc: &tgbotapisfm.Handler{
			Handle: func(bot *tgbotapisfm.Bot, update tgbotapi.Update) error {
				return h.send(bot, update, "Unknown command. Send /help for the list.")
			},
		},
	}
}

// IntakeState waits for the key: value block after a bare /intake.
func (h *TGHandler) IntakeState() tgbotapisfm.State {
	return tgbotapisfm.State{
		AtEntranceFunc: &tgbotapisfm.Handler{
			Handle: func(bot *tgbotapisfm.Bot, update tgbotapi.Update) error {
				return h.send(bot, update, "Send the intake fields as key: value lines, or /cancel.")
			},
		},
		CatchAllFunc: &tgbotapisfm.Handler{
			Handle: func(bot *tgbotapisfm.Bot, update tgbotapi.Update) error {
				return h.createIntake(bot, update, update.Message.Text)
			},
		},
	}
}

func (h *TGHandler) StartHandler() tgbotapisfm.Handler {
	return tgbotapisfm.Handler{
		Handle: func(bot *tgbotapisfm.Bot, update tgbotapi.Update) error {
			bot.ResetUserState(update.Message.From.ID)
			return h.send(bot, update, helpText)
		},
	}
}

func (h *TGHandler) CancelHandler() tgbotapisfm.Handler {
	return tgbotapisfm.Handler{
		Handle: func(bot *tgbotapisfm.Bot, update tgbotapi.Update) error {
			bot.ResetUserState(update.Message.From.ID)
			return h.send(bot, update, "Cancelled.")
		},
	}
}

func (h *TGHandler) HousesHandler() tgbotapisfm.Handler {
	return tgbotapisfm.Handler{
		Handle: func(bot *tgbotapisfm.Bot, update tgbotapi.Update) error {
			houses, err := h.availableHouses()
			if err != nil {
				h.logger.Error("failed to list available houses", zap.Error(err))
				return h.send(bot, update, "Could not load houses, try again later.")
			}
			if len(houses) == 0 {
				return h.send(bot, update, "No house has a free seat.")
			}
			var b strings.Builder
			b.WriteString("Houses with free seats:\n")
			for _, house := range houses {
				fmt.Fprintf(&b, "%s: %d/%d taken\n", house.HouseNumber, house.MemberCount, model.HouseCapacity)
			}
			return h.send(bot, update, strings.TrimSpace(b.String()))
		},
	}
}

func (h *TGHandler) SyncHandler() tgbotapisfm.Handler {
	return tgbotapisfm.Handler{
		Handle: func(bot *tgbotapisfm.Bot, update tgbotapi.Update) error {
			fields := strings.Fields(update.Message.Text)
			if len(fields) != 2 {
				return h.send(bot, update, "Usage: /sync <email>")
			}
			email := fields[1]

			ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
			defer cancel()
			outcome, err := h.Sync.SyncMembershipByEmail(ctx, email)
			if err != nil {
				return h.send(bot, update, fmt.Sprintf("Sync for %s failed: %v", email, err))
			}
			if outcome.Changed() {
				h.membersChanged()
			}
			return h.send(bot, update, fmt.Sprintf("Sync for %s: %s", email, describe(outcome)))
		},
	}
}

func (h *TGHandler) IntakeHandler() tgbotapisfm.Handler {
	return tgbotapisfm.Handler{
		Handle: func(bot *tgbotapisfm.Bot, update tgbotapi.Update) error {
			body := strings.TrimSpace(update.Message.Text)
			if _, rest, ok := strings.Cut(body, "\n"); ok && strings.TrimSpace(rest) != "" {
				return h.createIntake(bot, update, body)
			}
			return bot.EnterState(update.Message.From.ID, StateIntake, update)
		},
	}
}

func (h *TGHandler) createIntake(bot *tgbotapisfm.Bot, update tgbotapi.Update, text string) error {
	record, err := ParseIntake(text)
	if err != nil {
		return h.send(bot, update, fmt.Sprintf("Could not read intake: %v\nFix it and send again, or /cancel.", err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	saved, err := h.Intake.Create(ctx, record)

	var syncErr *domain.SyncError
	switch {
	case errors.As(err, &syncErr):
		bot.ResetUserState(update.Message.From.ID)
		h.cache.Delete(availableHousesKey)
		return h.send(bot, update, fmt.Sprintf("Saved intake #%d for %s, but membership sync failed: %v",
			saved.ID, saved.Email, syncErr.Err))
	case errors.Is(err, domain.ErrInvalid):
		return h.send(bot, update, fmt.Sprintf("Could not read intake: %v", err))
	case err != nil:
		h.logger.Error("failed to save intake from bot", zap.Error(err))
		return h.send(bot, update, "Could not save the intake record, try again later.")
	}

	bot.ResetUserState(update.Message.From.ID)
	h.cache.Delete(availableHousesKey)
	h.logger.Info("intake saved from bot", zap.Uint("id", saved.ID), zap.Int64("admin_id", update.Message.From.ID))
	return h.send(bot, update, fmt.Sprintf("Saved intake #%d for %s. Membership: %s.", saved.ID, saved.Email, saved.SyncNote))
}

// availableHouses is cached for a minute; writes from the bot drop the entry.
func (h *TGHandler) availableHouses() ([]model.HouseWithCount, error) {
	if v, ok := h.cache.Get(availableHousesKey); ok {
		if houses, ok := v.([]model.HouseWithCount); ok {
			return houses, nil
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	houses, err := h.Houses.AvailableHouses(ctx)
	if err != nil {
		return nil, err
	}
	h.cache.Set(availableHousesKey, houses, gocache.DefaultExpiration)
	return houses, nil
}

func (h *TGHandler) membersChanged() {
	h.cache.Delete(availableHousesKey)
	select {
	case h.forceUpdate <- struct{}{}:
	default:
	}
}

func (h *TGHandler) send(bot *tgbotapisfm.Bot, update tgbotapi.Update, text string) error {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, text)
	_, err := bot.SendMessage(msg)
	return err
}

func describe(o membership.Outcome) string {
	switch o {
	case membership.OutcomeNoRecord:
		return "no intake record for this email"
	case membership.OutcomeNoHouse:
		return "latest intake has no house group yet"
	case membership.OutcomeSkipped:
		return "membership expired, nothing to do"
	case membership.OutcomeRemoved:
		return "expired member removed"
	case membership.OutcomeCreated:
		return "member added"
	case membership.OutcomeUpdated:
		return "member updated"
	case membership.OutcomeMoved:
		return "member moved to another house"
	}
	return string(o)
}
