package sms_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"event-ticketing/internal/logger"
	"event-ticketing/internal/sms"
)

// soapServer answers the three gateway operations the way the real endpoint
// does, recording what it saw.
type soapServer struct {
	sessions      int
	sent          []string
	closed        []string
	rejectSend    bool
	failSession   bool
	lastRecipient string
}

func (s *soapServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		raw := string(body)

		respond := func(inner string) {
			w.Header().Set("Content-Type", "text/xml; charset=utf-8")
			fmt.Fprintf(w, `<?xml version="1.0"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body>%s</S:Body></S:Envelope>`, inner)
		}

		switch {
		case strings.Contains(raw, "<createSession"):
			if s.failSession {
				respond(`<ns2:createSessionResponse xmlns:ns2="http://mobitel"><return></return></ns2:createSessionResponse>`)
				return
			}
			s.sessions++
			respond(fmt.Sprintf(`<ns2:createSessionResponse xmlns:ns2="http://mobitel"><return>session-%d</return></ns2:createSessionResponse>`, s.sessions))
		case strings.Contains(raw, "<sendMessages"):
			if start := strings.Index(raw, "<recipients>"); start >= 0 {
				end := strings.Index(raw, "</recipients>")
				s.lastRecipient = raw[start+len("<recipients>") : end]
			}
			if s.rejectSend {
				respond(`<ns2:sendMessagesResponse xmlns:ns2="http://mobitel"><return></return></ns2:sendMessagesResponse>`)
				return
			}
			s.sent = append(s.sent, raw)
			respond(`<ns2:sendMessagesResponse xmlns:ns2="http://mobitel"><return>OK</return></ns2:sendMessagesResponse>`)
		case strings.Contains(raw, "<closeSession"):
			s.closed = append(s.closed, raw)
			respond(`<ns2:closeSessionResponse xmlns:ns2="http://mobitel"></ns2:closeSessionResponse>`)
		default:
			http.Error(w, "unknown operation", http.StatusBadRequest)
		}
	}
}

func TestCreateSession(t *testing.T) {
	gateway := &soapServer{}
	srv := httptest.NewServer(gateway.handler())
	defer srv.Close()

	client := sms.NewClient(srv.URL, time.Second)

	session, err := client.CreateSession(context.Background(), "user", "pass")
	assert.NoError(t, err)
	assert.Equal(t, "session-1", session)
}

func TestCreateSessionEmptyReturnIsError(t *testing.T) {
	gateway := &soapServer{failSession: true}
	srv := httptest.NewServer(gateway.handler())
	defer srv.Close()

	client := sms.NewClient(srv.URL, time.Second)

	_, err := client.CreateSession(context.Background(), "user", "pass")
	assert.Error(t, err)
}

func TestSendMessages(t *testing.T) {
	gateway := &soapServer{}
	srv := httptest.NewServer(gateway.handler())
	defer srv.Close()

	client := sms.NewClient(srv.URL, time.Second)

	ok, err := client.SendMessages(context.Background(), "session-1", "TICKETS", "hello", []string{"0711111111"})
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, gateway.sent, 1)
	assert.Contains(t, gateway.sent[0], "<message>hello</message>")
	assert.Contains(t, gateway.sent[0], "<sender>TICKETS</sender>")
	assert.Equal(t, "0711111111", gateway.lastRecipient)
}

func TestSenderFullExchange(t *testing.T) {
	gateway := &soapServer{}
	srv := httptest.NewServer(gateway.handler())
	defer srv.Close()

	sender := sms.NewSender(sms.NewClient(srv.URL, time.Second), "user", "pass", "TICKETS", logger.NewLogger())

	assert.True(t, sender.Send("+94711111111", "your code"))
	assert.Equal(t, 1, gateway.sessions)
	assert.Len(t, gateway.closed, 1)
	// international prefix normalized before dispatch
	assert.Equal(t, "0711111111", gateway.lastRecipient)
}

func TestSenderReturnsFalseOnRejection(t *testing.T) {
	gateway := &soapServer{rejectSend: true}
	srv := httptest.NewServer(gateway.handler())
	defer srv.Close()

	sender := sms.NewSender(sms.NewClient(srv.URL, time.Second), "user", "pass", "TICKETS", logger.NewLogger())

	assert.False(t, sender.Send("0711111111", "your code"))
	// session still closed on the failure path
	assert.Len(t, gateway.closed, 1)
}

func TestSenderReturnsFalseWhenGatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sender := sms.NewSender(sms.NewClient(srv.URL, time.Second), "user", "pass", "TICKETS", logger.NewLogger())

	assert.False(t, sender.Send("0711111111", "your code"))
}

func TestNormalizeLocal(t *testing.T) {
	assert.Equal(t, "0711111111", sms.NormalizeLocal("+94711111111"))
	assert.Equal(t, "0711111111", sms.NormalizeLocal("0711111111"))
}
