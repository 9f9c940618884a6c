// Package mailer delivers a generated report as an email attachment over a
// single STARTTLS-upgraded, authenticated SMTP session.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// DefaultSubjectPrefix starts every subject generated when none is given.
const DefaultSubjectPrefix = "Folder Analysis Report - "

// ErrNoRecipient is returned when Send is called without a recipient.
var ErrNoRecipient = errors.New("no recipient")

// Options configures a Dispatcher.
type Options struct {
	// Host is the SMTP server host name.
	Host string
	// Port is the SMTP submission port, usually 587.
	Port int
	// Username is the sender account, also used as the From address.
	Username string
	// Password authenticates Username.
	Password string
	// Timeout bounds dialing and every SMTP command. Zero keeps the library default.
	Timeout time.Duration
	// TLSConfig overrides the STARTTLS configuration, e.g. to trust a private CA.
	// Nil verifies the server against the system roots.
	TLSConfig *tls.Config
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Dispatcher sends one report per call.
type Dispatcher struct {
	fs   afero.Fs
	log  *zap.Logger
	opts Options
}

// New creates a Dispatcher reading attachments from fsys.
func New(fsys afero.Fs, log *zap.Logger, opts Options) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Dispatcher{fs: fsys, log: log, opts: opts}
}

// DefaultSubject returns the subject used when the caller supplies none.
func DefaultSubject(now time.Time) string {
	return DefaultSubjectPrefix + now.Format("2006-01-02")
}

// Send delivers the file at artifactPath to recipient.
// An empty subject is replaced by DefaultSubject. Every failure is logged and
// returned; the artifact itself is never modified.
func (d *Dispatcher) Send(ctx context.Context, recipient, artifactPath, subject string) error {
	d.log.Info("preparing email", zap.String("recipient", recipient), zap.String("attachment", artifactPath))

	msg, err := d.Message(recipient, artifactPath, subject)
	if err != nil {
		d.log.Error("could not build email", zap.Error(err))

		return err
	}

	d.log.Info("connecting to SMTP server",
		zap.String("host", d.opts.Host),
		zap.Int("port", d.opts.Port),
		zap.String("tls", "STARTTLS"),
	)

	client, err := d.client()
	if err != nil {
		d.log.Error("could not configure SMTP client", zap.Error(err))

		return fmt.Errorf("configuring SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		d.log.Error("could not send email", zap.Error(err))

		return fmt.Errorf("sending email to %s: %w", recipient, err)
	}

	d.log.Info("email sent", zap.String("recipient", recipient))

	return nil
}

// Message builds the email without sending it.
func (d *Dispatcher) Message(recipient, artifactPath, subject string) (*mail.Msg, error) {
	if recipient == "" {
		return nil, ErrNoRecipient
	}

	now := d.opts.Now()

	if subject == "" {
		subject = DefaultSubject(now)
	}

	data, err := afero.ReadFile(d.fs, artifactPath)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}

	name := filepath.Base(artifactPath)

	text, err := renderBody(name, now)
	if err != nil {
		return nil, fmt.Errorf("rendering message body: %w", err)
	}

	msg := mail.NewMsg()

	if err := msg.From(d.opts.Username); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", d.opts.Username, err)
	}

	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}

	msg.Subject(subject)
	msg.SetDateWithValue(now)
	msg.SetBodyString(mail.TypeTextPlain, text)

	if err := msg.AttachReader(name, bytes.NewReader(data),
		mail.WithFileContentType(mail.TypeAppOctetStream),
		mail.WithFileEncoding(mail.EncodingB64),
	); err != nil {
		return nil, fmt.Errorf("attaching %q: %w", name, err)
	}

	return msg, nil
}

// client returns an SMTP client that insists on STARTTLS and PLAIN auth.
func (d *Dispatcher) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(d.opts.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(d.opts.Username),
		mail.WithPassword(d.opts.Password),
	}

	if d.opts.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(d.opts.Timeout))
	}

	if d.opts.TLSConfig != nil {
		opts = append(opts, mail.WithTLSConfig(d.opts.TLSConfig))
	}

	return mail.NewClient(d.opts.Host, opts...)
}
