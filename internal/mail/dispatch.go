package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dymm/internal/auth"
	"dymm/internal/jobs"
)

// Dispatcher turns mail jobs into messages.
type Dispatcher struct {
	Sender    Sender
	JWT       *auth.JWT
	PublicURL string
}

func (d *Dispatcher) Register(w *jobs.Worker) {
	w.Handle(jobs.TypeMailConfirm, d.sendConfirm)
	w.Handle(jobs.TypeMailVerifyCode, d.sendCode)
}

// ConfirmURL is the link a confirmation mail carries.
func (d *Dispatcher) ConfirmURL(token string) string {
	return d.PublicURL + "/api/mail/conf/" + token
}

func payloadOf(job *jobs.Job) (jobs.MailPayload, error) {
	var p jobs.MailPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return p, jobs.Permanent(fmt.Errorf("bad payload: %w", err))
	}
	if p.Email == "" {
		return p, jobs.Permanent(errors.New("bad payload: missing email"))
	}
	return p, nil
}

func (d *Dispatcher) sendConfirm(ctx context.Context, job *jobs.Job) error {
	p, err := payloadOf(job)
	if err != nil {
		return err
	}
	token, err := d.JWT.SignMail(p.AvatarID, p.Email)
	if err != nil {
		return err
	}
	m, err := ConfirmMessage(p.Email, d.ConfirmURL(token), int(auth.MailTTL.Hours()))
	if err != nil {
		return jobs.Permanent(err)
	}
	return d.Sender.Send(ctx, m)
}

func (d *Dispatcher) sendCode(ctx context.Context, job *jobs.Job) error {
	p, err := payloadOf(job)
	if err != nil {
		return err
	}
	if p.Code == "" {
		return jobs.Permanent(errors.New("bad payload: missing code"))
	}
	m, err := CodeMessage(p.Email, p.Code, int(CodeTTL.Minutes()))
	if err != nil {
		return jobs.Permanent(err)
	}
	return d.Sender.Send(ctx, m)
}
