package inbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devvault2026/revampai/platform/config"
	"github.com/devvault2026/revampai/platform/logger"

	imap "github.com/BrianLeishman/go-imap"
)

// Matcher attaches an inbound email to a lead by sender address.
type Matcher interface {
	MatchInbound(ctx context.Context, senderEmail, content string) (bool, error)
}

// Watcher polls an IMAP inbox for unseen mail and routes replies to leads.
// Messages from unknown senders are left untouched so a human can triage them.
type Watcher struct {
	cfg      config.InboxConfig
	matcher  Matcher
	log      *logger.Logger
	interval time.Duration
}

func NewWatcher(cfg config.InboxConfig, matcher Matcher, log *logger.Logger) *Watcher {
	return &Watcher{cfg: cfg, matcher: matcher, log: log, interval: 2 * time.Minute}
}

// Run polls until ctx is cancelled. IMAP failures are logged and retried on
// the next tick; a flaky mailbox must not take the rest of the app down.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				w.log.Error("inbox sync failed", "error", err)
			}
		}
	}
}

// Sync performs one poll cycle: fetch unseen mail, match senders to leads,
// mark matched messages seen.
func (w *Watcher) Sync(ctx context.Context) error {
	dialer, err := imap.New(w.cfg.GetIMAPUsername(), w.cfg.GetIMAPPassword(), w.cfg.GetIMAPHost(), w.cfg.GetIMAPPort())
	if err != nil {
		return fmt.Errorf("imap connect: %w", err)
	}
	defer dialer.Close()

	if err := dialer.SelectFolder("INBOX"); err != nil {
		return fmt.Errorf("select inbox: %w", err)
	}

	uids, err := dialer.GetUIDs("UNSEEN")
	if err != nil {
		return fmt.Errorf("list unseen: %w", err)
	}
	if len(uids) == 0 {
		return nil
	}

	emails, err := dialer.GetEmails(uids...)
	if err != nil {
		return fmt.Errorf("fetch emails: %w", err)
	}

	matched := 0
	for uid, email := range emails {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sender := firstAddress(email.From)
		if sender == "" {
			continue
		}

		ok, err := w.matcher.MatchInbound(ctx, sender, emailBody(email))
		if err != nil {
			w.log.Error("inbox match failed", "sender", sender, "error", err)
			continue
		}
		if !ok {
			continue
		}

		matched++
		if err := dialer.MarkSeen(uid); err != nil {
			w.log.Error("inbox mark seen failed", "uid", uid, "error", err)
		}
	}

	if matched > 0 {
		w.log.Info("inbox sync matched replies", "unseen", len(uids), "matched", matched)
	}
	return nil
}

func firstAddress(addrs imap.EmailAddresses) string {
	for addr := range addrs {
		return strings.ToLower(strings.TrimSpace(addr))
	}
	return ""
}

func emailBody(email *imap.Email) string {
	body := strings.TrimSpace(email.Text)
	if body == "" {
		body = strings.TrimSpace(email.HTML)
	}
	if email.Subject == "" {
		return body
	}
	if body == "" {
		return email.Subject
	}
	return email.Subject + "\n\n" + body
}
