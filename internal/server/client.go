package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client talks to a running Interpreter service.
type Client struct {
	conn *grpc.ClientConn
	desc *descriptors
}

func Dial(target string) (*Client, error) {
	d, err := loadDescriptors()
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", target, err)
	}
	return &Client{conn: conn, desc: d}, nil
}

func (c *Client) Eval(ctx context.Context, session, source string) (*EvalResult, error) {
	req := newMessage(c.desc.eval.GetInputType())
	setString(req, "session", session)
	setString(req, "source", source)

	reply := newMessage(c.desc.eval.GetOutputType())
	if err := c.conn.Invoke(ctx, methodPath(evalMethod), req, reply); err != nil {
		return nil, err
	}
	return &EvalResult{
		Session:   getString(reply, "session"),
		Values:    getStrings(reply, "values"),
		Output:    getString(reply, "output"),
		Error:     getString(reply, "error"),
		ErrorKind: getString(reply, "error_kind"),
	}, nil
}

// Tokenize returns the rendered forms and the parse error text, if any.
func (c *Client) Tokenize(ctx context.Context, source string) ([]string, string, error) {
	req := newMessage(c.desc.tokenize.GetInputType())
	setString(req, "source", source)

	reply := newMessage(c.desc.tokenize.GetOutputType())
	if err := c.conn.Invoke(ctx, methodPath(tokenizeMethod), req, reply); err != nil {
		return nil, "", err
	}
	return getStrings(reply, "forms"), getString(reply, "error"), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
