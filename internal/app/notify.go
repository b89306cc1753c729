package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stylehub/stylehub/config"
	"github.com/stylehub/stylehub/internal/domain"
	"github.com/stylehub/stylehub/pkg/common"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SendFunc delivers composed mail messages
type SendFunc func(m ...*gomail.Message) error

// MailNotifier emails the shop admin about new contact messages. Delivery runs
// on a worker pool and failures are only logged.
type MailNotifier struct {
	cfg  config.MailConfig
	send SendFunc
	pool *ants.Pool
}

func NewMailNotifier(cfg config.MailConfig, send SendFunc) (*MailNotifier, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		zap.S().Errorf("mail worker panic: %v", p)
	}))
	if err != nil {
		return nil, err
	}
	return &MailNotifier{cfg: cfg, send: send, pool: pool}, nil
}

func (a *Application) initNotifier() {
	cfg := a.appConfig.Mail
	if !cfg.Enabled {
		zap.L().Info("mail notification disabled")
		return
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	notifier, err := NewMailNotifier(cfg, dialer.DialAndSend)
	if err != nil {
		zap.L().Error("init mail notifier", zap.Error(err))
		return
	}
	if err := a.UseNotifier(notifier); err != nil {
		zap.L().Error("subscribe contact notifications", zap.Error(err))
		notifier.Close()
	}
}

// UseNotifier subscribes n to contact events on the application bus
func (a *Application) UseNotifier(n *MailNotifier) error {
	if err := a.bus.Subscribe(TopicContactCreated, n.OnContactCreated); err != nil {
		return err
	}
	a.notifier = n
	return nil
}

// OnContactCreated queues the admin notification for msg
func (n *MailNotifier) OnContactCreated(msg domain.ContactMessage) {
	m := n.compose(msg)
	err := n.pool.Submit(func() {
		if err := n.send(m); err != nil {
			zap.L().Warn("contact notification failed",
				zap.Int64("message_id", msg.ID),
				zap.Error(err))
			return
		}
		zap.L().Debug("contact notification sent", zap.Int64("message_id", msg.ID))
	})
	if err != nil {
		zap.L().Warn("contact notification not queued", zap.Error(err))
	}
}

func (n *MailNotifier) compose(msg domain.ContactMessage) *gomail.Message {
	phone := msg.Phone
	if common.IsEmptyOrNA(phone) {
		phone = "Not provided"
	}
	var body strings.Builder
	fmt.Fprintf(&body, "Name: %s %s\n", msg.FirstName, msg.LastName)
	fmt.Fprintf(&body, "Email: %s\n", msg.Email)
	fmt.Fprintf(&body, "Phone: %s\n", phone)
	fmt.Fprintf(&body, "Subject: %s\n\n", msg.Subject)
	fmt.Fprintf(&body, "Message:\n%s", msg.Message)

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.AdminAddress)
	m.SetHeader("Reply-To", msg.Email)
	m.SetHeader("Subject", "New Contact Form Submission: "+msg.Subject)
	m.SetBody("text/plain", body.String())
	return m
}

// Close waits for queued deliveries to finish
func (n *MailNotifier) Close() {
	if err := n.pool.ReleaseTimeout(5 * time.Second); err != nil {
		zap.L().Warn("mail workers still busy at shutdown", zap.Error(err))
	}
}
