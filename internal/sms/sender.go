package sms

import (
	"context"
	"fmt"
	"strings"

	"event-ticketing/internal/logger"
)

// Notifier is what the rest of the application sees: one best-effort send.
type Notifier interface {
	Send(mobile, message string) bool
}

// Sender opens a gateway session per message, sends, and closes the session.
// Every failure path logs and returns false; nothing here ever surfaces an
// error to a caller.
type Sender struct {
	Client   *Client
	Username string
	Password string
	Alias    string
	Logger   *logger.Logger
}

func NewSender(client *Client, username, password, alias string, log *logger.Logger) *Sender {
	return &Sender{
		Client:   client,
		Username: username,
		Password: password,
		Alias:    alias,
		Logger:   log,
	}
}

// Send delivers one message to one recipient. International numbers are
// normalized to local format before dispatch.
func (s *Sender) Send(mobile, message string) bool {
	ctx := context.Background()

	session, err := s.Client.CreateSession(ctx, s.Username, s.Password)
	if err != nil {
		s.Logger.Error("SMS", fmt.Sprintf("Failed to create gateway session: %v", err))
		return false
	}
	defer func() {
		if err := s.Client.CloseSession(ctx, session); err != nil {
			s.Logger.Warn("SMS", fmt.Sprintf("Failed to close gateway session: %v", err))
		}
	}()

	recipients := []string{NormalizeLocal(mobile)}
	ok, err := s.Client.SendMessages(ctx, session, s.Alias, message, recipients)
	if err != nil {
		s.Logger.Error("SMS", fmt.Sprintf("Failed to send to %s: %v", mobile, err))
		return false
	}
	if !ok {
		s.Logger.Warn("SMS", fmt.Sprintf("Gateway rejected message to %s", mobile))
		return false
	}

	s.Logger.LogSMS("SENT", mobile, "message dispatched")
	return true
}

// NormalizeLocal converts an international +94 number to the local
// 07XXXXXXXX form the gateway expects.
func NormalizeLocal(mobile string) string {
	if strings.HasPrefix(mobile, "+94") {
		return "0" + strings.TrimPrefix(mobile, "+94")
	}
	return mobile
}
