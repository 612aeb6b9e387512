// Package sms wraps the Mobitel mSMS enterprise SOAP API. The gateway is
// best-effort: callers get a boolean from Sender.Send and must never block a
// user-facing response on delivery.
package sms

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client speaks the three SOAP operations the gateway exposes: create a
// session, send one batch of messages, close the session.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	NS      string   `xml:"xmlns:soapenv,attr"`
	Body    soapBody
}

// soapBody keeps the operation element's own name: an untagged interface
// field marshals with the concrete value's XMLName.
type soapBody struct {
	XMLName xml.Name `xml:"soapenv:Body"`
	Content interface{}
}

type createSessionRequest struct {
	XMLName xml.Name `xml:"createSession"`
	User    struct {
		ID       string `xml:"id"`
		Username string `xml:"username"`
		Password string `xml:"password"`
		Customer string `xml:"customer"`
	} `xml:"user"`
}

type createSessionResponse struct {
	XMLName xml.Name `xml:"createSessionResponse"`
	Return  string   `xml:"return"`
}

type sendMessagesRequest struct {
	XMLName xml.Name `xml:"sendMessages"`
	Session string   `xml:"session"`
	Message struct {
		Message     string   `xml:"message"`
		MessageID   string   `xml:"messageId"`
		Recipients  []string `xml:"recipients"`
		Sender      string   `xml:"sender"`
		MessageType int      `xml:"messageType"`
	} `xml:"smsMessage"`
}

type sendMessagesResponse struct {
	XMLName xml.Name `xml:"sendMessagesResponse"`
	Return  string   `xml:"return"`
}

type closeSessionRequest struct {
	XMLName xml.Name `xml:"closeSession"`
	Session string   `xml:"session"`
}

// CreateSession authenticates against the gateway and returns a session id.
func (c *Client) CreateSession(ctx context.Context, username, password string) (string, error) {
	req := createSessionRequest{}
	req.User.Username = username
	req.User.Password = password

	var resp createSessionResponse
	if err := c.call(ctx, req, &resp); err != nil {
		return "", fmt.Errorf("createSession: %w", err)
	}
	if resp.Return == "" {
		return "", fmt.Errorf("createSession: empty session in response")
	}
	return resp.Return, nil
}

// SendMessages dispatches one message to the given recipients under the
// configured alias. The gateway's return value is non-empty on acceptance.
func (c *Client) SendMessages(ctx context.Context, session, alias, message string, recipients []string) (bool, error) {
	req := sendMessagesRequest{Session: session}
	req.Message.Message = message
	req.Message.Recipients = recipients
	req.Message.Sender = alias

	var resp sendMessagesResponse
	if err := c.call(ctx, req, &resp); err != nil {
		return false, fmt.Errorf("sendMessages: %w", err)
	}
	return resp.Return != "", nil
}

// CloseSession ends a gateway session. Failures are reported but harmless:
// sessions expire server-side anyway.
func (c *Client) CloseSession(ctx context.Context, session string) error {
	if err := c.call(ctx, closeSessionRequest{Session: session}, nil); err != nil {
		return fmt.Errorf("closeSession: %w", err)
	}
	return nil
}

// call posts a SOAP envelope and decodes the body of the response envelope
// into out, when out is non-nil.
func (c *Client) call(ctx context.Context, body interface{}, out interface{}) error {
	env := envelope{
		NS:   "http://schemas.xmlsoap.org/soap/envelope/",
		Body: soapBody{Content: body},
	}
	payload, err := xml.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := unmarshalBody(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// unmarshalBody digs the operation response out of the SOAP envelope without
// binding to the gateway's namespace prefixes.
func unmarshalBody(raw []byte, out interface{}) error {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return fmt.Errorf("response element not found")
		}
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "Body" {
			break
		}
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return dec.DecodeElement(out, &se)
		}
	}
}
