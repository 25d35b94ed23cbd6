// Package notify is the optional operator channel: short Telegram messages
// about call results and conditions that need a human (persist failures,
// repeated webhook errors). It is send-only; the bot never polls.
package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	logx "cadence/pkg/logx"
)

type Config struct {
	Token      string
	ChatID     int64
	RatePerSec int
}

type Service struct {
	bot     *tele.Bot
	chatID  int64
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("notify: telegram token is not set")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("notify: chat_id is required")
	}

	// No Poller: the bot only ever sends.
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("notify: telegram init: %w", err)
	}

	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &Service{
		bot:     b,
		chatID:  cfg.ChatID,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}, nil
}

// Send delivers one message, best-effort. Rate-limited drops and transport
// errors are logged and swallowed: notifications must never affect a tick.
func (s *Service) Send(format string, args ...any) {
	if s == nil {
		return
	}
	if !s.limiter.Allow() {
		s.log.Debug("notification dropped (rate limited)")
		return
	}
	msg := fmt.Sprintf(format, args...)
	if _, err := s.bot.Send(tele.ChatID(s.chatID), msg, &tele.SendOptions{DisableWebPagePreview: true}); err != nil {
		s.log.Warn("notification send failed", logx.Err(err))
	}
}

// CallRecorded announces a successful call and the month's running total.
func (s *Service) CallRecorded(count, ceiling int, at time.Time) {
	s.Send("✅ call %d/%d performed at %s", count, ceiling, at.Format("2006-01-02 15:04 MST"))
}

// PersistFailed flags the undercounting risk after a successful call whose
// record could not be written.
func (s *Service) PersistFailed(count int, err error) {
	s.Send("⚠️ call performed but quota persist FAILED (count=%d): %v\nmonthly counting may drift low", count, err)
}
