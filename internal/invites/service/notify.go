package service

import (
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"sync"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/pkg/mailx"
)

// Notifier sends invitation emails on detached goroutines. Issuance is
// already durable when Dispatch is called, so delivery failures are logged
// and dropped; a sender can always resend. Wait blocks until in-flight sends
// drain, for shutdown and tests.
type Notifier struct {
	Sender mailx.Sender
	Origin string // app origin the redemption link is rendered against
	Logger *slog.Logger

	wg sync.WaitGroup
}

// Dispatch queues one invitation email. Never blocks, never returns an error.
// The raw token appears only inside the rendered link.
func (n *Notifier) Dispatch(inv domain.Invitation, rawToken, organizationName string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		link := fmt.Sprintf("%s/register?token=%s", n.Origin, url.QueryEscape(rawToken))
		subject := fmt.Sprintf("You're invited to join %s", organizationName)
		body := renderInviteEmail(inv, organizationName, link)

		if err := n.Sender.Send(inv.Email, subject, body); err != nil {
			n.Logger.Error("failed to send invitation email",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", err),
			)
			return
		}
		n.Logger.Debug("invitation email sent",
			slog.String("invitation_id", inv.ID),
		)
	}()
}

// Wait blocks until all dispatched sends have completed.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func renderInviteEmail(inv domain.Invitation, organizationName, link string) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Hi %s,</h2>
  <p>You have been invited to join <strong>%s</strong> as a %s.</p>
  <p style="margin: 24px 0;">
    <a href="%s" style="background: #2563eb; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Accept invitation</a>
  </p>
  <p>This invitation expires on %s. If you weren't expecting it, you can ignore this email.</p>
</div>`,
		html.EscapeString(inv.FirstName),
		html.EscapeString(organizationName),
		html.EscapeString(inv.Role),
		link,
		inv.ExpiresAt.Format("2 January 2006 15:04 MST"),
	)
}
