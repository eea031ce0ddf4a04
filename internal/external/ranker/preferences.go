package ranker

import (
	"context"
	"fmt"

	"github.com/yarin-claude-code/stocks/internal/contracts"
)

// GetPreferences reads the saved domain list. Without a session it returns
// (nil, nil) and performs no request; nil means "no preferences", which
// differs from an empty saved list.
func (c *Client) GetPreferences(ctx context.Context) ([]string, error) {
	s := c.session(ctx)
	if s == nil {
		return nil, nil
	}

	var prefs contracts.Preferences
	if err := c.getJSON(ctx, "get preferences", "/preferences", nil, bearer(s), &prefs); err != nil {
		return nil, err
	}
	if prefs.Domains == nil {
		prefs.Domains = []string{}
	}
	return prefs.Domains, nil
}

// PutPreferences replaces the saved domain list. Without a session it is a
// no-op.
func (c *Client) PutPreferences(ctx context.Context, domains []string) error {
	s := c.session(ctx)
	if s == nil {
		return nil
	}
	if domains == nil {
		domains = []string{}
	}

	resp, err := c.httpClient.PutJSON(ctx, c.url("/preferences", nil), bearer(s), contracts.Preferences{Domains: domains})
	if err != nil {
		return fmt.Errorf("%w: put preferences: %w", ErrWrite, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %w", ErrWrite, newStatusError("put preferences", resp))
	}
	return nil
}
