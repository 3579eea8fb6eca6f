package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

type chatReq struct {
	Message string `json:"message"`
}

type chatResp struct {
	Answer string `json:"answer"`
}

// Chat sends one message to the assistant. Nothing is remembered between calls.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out chatResp
	if _, err := c.do(ctx, http.MethodPost, "/api/chat", "", chatReq{Message: message}, &out); err != nil {
		return "", err
	}
	if out.Answer == "" {
		return "", fmt.Errorf("%w: chat answer is empty", ErrMalformed)
	}
	return out.Answer, nil
}
