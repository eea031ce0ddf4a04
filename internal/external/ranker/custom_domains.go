package ranker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yarin-claude-code/stocks/internal/contracts"
)

// ListCustomDomains lists the user's custom domains. Without a session it
// returns an empty list and performs no request.
func (c *Client) ListCustomDomains(ctx context.Context) ([]contracts.CustomDomain, error) {
	s := c.session(ctx)
	if s == nil {
		return []contracts.CustomDomain{}, nil
	}

	var domains []contracts.CustomDomain
	if err := c.getJSON(ctx, "list custom domains", "/domains/custom", nil, bearer(s), &domains); err != nil {
		return nil, &RequestError{Message: MsgListFailed, Err: err}
	}
	if domains == nil {
		domains = []contracts.CustomDomain{}
	}
	return domains, nil
}

// CreateCustomDomain validates the input, then creates a domain. Invalid
// input is rejected before any request. Without a session it is a no-op
// returning (nil, nil).
func (c *Client) CreateCustomDomain(ctx context.Context, name string, tickers []string) (*contracts.CustomDomain, error) {
	req := CreateDomainRequest{Name: name, Tickers: tickers}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s := c.session(ctx)
	if s == nil {
		return nil, nil
	}

	resp, err := c.httpClient.PostJSON(ctx, c.url("/domains/custom", nil), bearer(s), req)
	if err != nil {
		return nil, &RequestError{Message: MsgCreateFailed, Err: fmt.Errorf("%w: %w", ErrWrite, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, writeFailure("create custom domain", MsgCreateFailed, newStatusError("create custom domain", resp))
	}

	var created contracts.CustomDomain
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, &RequestError{Message: MsgCreateFailed, Err: fmt.Errorf("%w: decode: %w", ErrWrite, err)}
	}

	c.logger.WithFields(map[string]interface{}{
		"id":      created.ID,
		"tickers": len(created.Tickers),
	}).Info("Custom domain created")

	return &created, nil
}

// UpdateCustomDomain replaces a domain's tickers. The name is immutable.
func (c *Client) UpdateCustomDomain(ctx context.Context, id int, tickers []string) (*contracts.CustomDomain, error) {
	req := UpdateDomainRequest{Tickers: tickers}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s := c.session(ctx)
	if s == nil {
		return nil, nil
	}

	resp, err := c.httpClient.PutJSON(ctx, c.url("/domains/custom/"+strconv.Itoa(id), nil), bearer(s), req)
	if err != nil {
		return nil, &RequestError{Message: MsgUpdateFailed, Err: fmt.Errorf("%w: %w", ErrWrite, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, writeFailure("update custom domain", MsgUpdateFailed, newStatusError("update custom domain", resp))
	}

	var updated contracts.CustomDomain
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, &RequestError{Message: MsgUpdateFailed, Err: fmt.Errorf("%w: decode: %w", ErrWrite, err)}
	}
	return &updated, nil
}

// DeleteCustomDomain deletes a domain. There is no undo.
func (c *Client) DeleteCustomDomain(ctx context.Context, id int) error {
	s := c.session(ctx)
	if s == nil {
		return nil
	}

	resp, err := c.httpClient.Delete(ctx, c.url("/domains/custom/"+strconv.Itoa(id), nil), bearer(s))
	if err != nil {
		return &RequestError{Message: MsgDeleteFailed, Err: fmt.Errorf("%w: %w", ErrWrite, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := newStatusError("delete custom domain", resp)
		return &RequestError{Message: MsgDeleteFailed, Err: fmt.Errorf("%w: %w", ErrWrite, se)}
	}

	c.logger.WithField("id", id).Info("Custom domain deleted")
	return nil
}

// IsNotFound reports whether err is a 404 from the ranking API
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
