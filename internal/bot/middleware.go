package bot

import (
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matchday-bot/internal/config"
)

// MemberCache remembers users seen in an allowed group so they can also
// talk to the bot privately.
type MemberCache struct {
	mu    sync.RWMutex
	users map[int64]bool
}

// NewMemberCache creates an empty cache.
func NewMemberCache() *MemberCache {
	return &MemberCache{users: make(map[int64]bool)}
}

// Allow marks a user as a known group member.
func (m *MemberCache) Allow(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = true
}

// Allowed reports whether the user was seen in an allowed group.
func (m *MemberCache) Allowed(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[userID]
}

// chatAllowed decides whether an update from chat and sender is served.
func chatAllowed(cfg *config.Config, members *MemberCache, chat *tele.Chat, sender *tele.User) bool {
	if chat.Type == tele.ChatPrivate {
		return len(cfg.Whitelist.Chats) == 0 || members.Allowed(sender.ID)
	}
	if !cfg.IsChatAllowed(chat.ID) {
		return false
	}
	members.Allow(sender.ID)
	return true
}

// WhitelistMiddleware drops updates from chats outside the whitelist.
// Private chats are served for users already seen in an allowed group.
func WhitelistMiddleware(cfg *config.Config, members *MemberCache) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()
			if chat == nil || sender == nil {
				return nil
			}

			if !chatAllowed(cfg, members, chat, sender) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Int64("user_id", sender.ID).
					Msg("Ignoring update from non-whitelisted chat")
				return nil
			}
			return next(c)
		}
	}
}

// AdminMiddleware rejects commands from users outside admin.ids.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ Comando riservato agli amministratori")
			}

			return next(c)
		}
	}
}

// LoggingMiddleware creates a middleware that logs all incoming messages.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			logEvent := log.Debug()
			if sender := c.Sender(); sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat := c.Chat(); chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			logEvent.
				Str("text", c.Text()).
				Msg("Received message")

			return next(c)
		}
	}
}

// RecoveryMiddleware creates a middleware that recovers from panics.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Msg("Recovered from panic in handler")
					_ = c.Reply("❌ Errore interno, riprova più tardi")
				}
			}()
			return next(c)
		}
	}
}
