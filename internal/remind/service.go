// Package remind runs the scheduled jobs: bill due-date alerts, one-shot
// reminder delivery, and session housekeeping.
package remind

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pirlo1121/I-am-poor/internal/bus"
	"github.com/pirlo1121/I-am-poor/internal/metrics"
	"github.com/pirlo1121/I-am-poor/internal/session"
	"github.com/pirlo1121/I-am-poor/internal/store"
	"github.com/pirlo1121/I-am-poor/internal/tools"
)

const sessionMaxIdle = 2 * time.Hour

// Service owns the cron scheduler. Notifications go out through the bus;
// for private chats the Telegram chat id equals the user id.
type Service struct {
	store    *store.Store
	bus      *bus.Bus
	sessions *session.Store
	loc      *time.Location
	cron     *cron.Cron
	now      func() time.Time
}

// NewService wires the scheduler. Jobs run in loc, the user's timezone.
func NewService(st *store.Store, b *bus.Bus, sessions *session.Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    st,
		bus:      b,
		sessions: sessions,
		loc:      loc,
		cron:     cron.New(cron.WithLocation(loc)),
		now:      time.Now,
	}
}

// Start schedules the jobs and runs until ctx is canceled.
func (s *Service) Start(ctx context.Context) error {
	jobs := []struct {
		spec string
		name string
		fn   func(context.Context)
	}{
		{"0 9 * * *", "bill check", s.checkBillsDue},
		{"* * * * *", "reminder delivery", s.deliverReminders},
		{"*/30 * * * *", "session sweep", s.sweepSessions},
	}
	for _, j := range jobs {
		job := j
		if _, err := s.cron.AddFunc(job.spec, func() { job.fn(ctx) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}

	s.cron.Start()
	slog.Info("scheduler started", slog.String("tz", s.loc.String()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// checkBillsDue notifies every user whose pending bills fall due today or
// tomorrow.
func (s *Service) checkBillsDue(ctx context.Context) {
	now := s.now().In(s.loc)
	month, year := int(now.Month()), now.Year()

	pending, err := s.store.PendingBillsAllUsers(ctx, month, year)
	if err != nil {
		slog.Error("bill check failed", slog.Any("error", err))
		return
	}

	today := now.Day()
	tomorrow := now.AddDate(0, 0, 1).Day()
	for _, bill := range pending {
		var text string
		switch bill.DayOfMonth {
		case today:
			text = fmt.Sprintf("📌 Hoy vence %s (%s). Cuando la pagues, avísame.", bill.Description, tools.Money(bill.Amount))
		case tomorrow:
			text = fmt.Sprintf("📌 Mañana vence %s (%s).", bill.Description, tools.Money(bill.Amount))
		default:
			continue
		}
		s.notify(bill.UserID, text)
		slog.Info("bill alert sent",
			slog.Int64("user_id", bill.UserID),
			slog.Int64("bill_id", bill.ID),
			slog.Int("day", bill.DayOfMonth))
	}
}

// deliverReminders sends every due one-shot reminder and removes it.
func (s *Service) deliverReminders(ctx context.Context) {
	due, err := s.store.DueReminders(ctx, s.now())
	if err != nil {
		slog.Error("reminder poll failed", slog.Any("error", err))
		return
	}
	for _, r := range due {
		s.notify(r.UserID, "⏰ Recordatorio: "+r.Message)
		if err := s.store.DeleteReminder(ctx, r.ID); err != nil {
			slog.Error("reminder cleanup failed", slog.Int64("id", r.ID), slog.Any("error", err))
			continue
		}
		metrics.RemindersSent.Inc()
		slog.Info("reminder delivered", slog.Int64("user_id", r.UserID), slog.Int64("id", r.ID))
	}
}

func (s *Service) sweepSessions(context.Context) {
	s.sessions.SweepInactive(sessionMaxIdle)
}

func (s *Service) notify(userID int64, text string) {
	s.bus.PublishOutbound(bus.Message{
		Source:    bus.SourceScheduler,
		UserID:    userID,
		ChatID:    userID,
		Text:      text,
		Timestamp: s.now(),
	})
}
