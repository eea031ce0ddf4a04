package ranker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarin-claude-code/stocks/internal/external/ranker"
	"github.com/yarin-claude-code/stocks/internal/external/ranker/rankertest"
)

func TestCustomDomainLifecycle(t *testing.T) {
	api := rankertest.NewServer(nil)
	defer api.Close()
	c := newClient(t, api, token)
	ctx := context.Background()

	created, err := c.CreateCustomDomain(ctx, "  My Picks ", ranker.ParseTickers("aapl, msft , googl"))
	require.NoError(t, err)
	assert.Equal(t, "My Picks", created.Name)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL"}, created.Tickers)

	updated, err := c.UpdateCustomDomain(ctx, created.ID, []string{"NVDA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, updated.Tickers)

	list, err := c.ListCustomDomains(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.DeleteCustomDomain(ctx, created.ID))

	list, err = c.ListCustomDomains(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateValidationHappensBeforeRequest(t *testing.T) {
	api := rankertest.NewServer(nil)
	defer api.Close()
	c := newClient(t, api, token)

	tests := []struct {
		name    string
		domain  string
		tickers []string
		want    string
	}{
		{"empty name", "", []string{"AAPL"}, ranker.MsgNameRequired},
		{"blank name", "   ", []string{"AAPL"}, ranker.MsgNameRequired},
		{"no tickers", "Picks", nil, ranker.MsgTickersRequired},
		{"empty parse", "Picks", ranker.ParseTickers(" , \n ,"), ranker.MsgTickersRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateCustomDomain(context.Background(), tt.domain, tt.tickers)

			var ve *ranker.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.want, ve.Message)
		})
	}

	_, err := c.UpdateCustomDomain(context.Background(), 1, []string{})
	assert.Equal(t, ranker.MsgTickersRequired, ranker.UserMessage(err))

	assert.Equal(t, 0, api.TotalCalls())
}

func TestUnprocessableEntityMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"ticker XYZ not found"}`, "ticker XYZ not found"},
		{"structured detail", `{"detail": [ {"loc": ["body","tickers"], "msg": "bad"} ]}`,
			`Invalid tickers: [{"loc":["body","tickers"],"msg":"bad"}]`},
		{"empty detail", `{"detail":""}`, ranker.MsgCreateFailed},
		{"null detail", `{"detail":null}`, ranker.MsgCreateFailed},
		{"not json", `oops`, ranker.MsgCreateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := rankertest.NewServer(nil)
			defer api.Close()
			api.Fail("create_custom", 422, tt.body)

			_, err := newClient(t, api, token).CreateCustomDomain(context.Background(), "Picks", []string{"XYZ"})
			require.Error(t, err)
			assert.Equal(t, tt.want, ranker.UserMessage(err))
		})
	}
}

func TestGenericWriteFailures(t *testing.T) {
	api := rankertest.NewServer(nil)
	defer api.Close()
	api.Fail("create_custom", 500, `{"detail":"boom"}`)
	api.Fail("update_custom", 422, `{}`)
	api.Fail("delete_custom", 404, `{"detail":"Domain not found"}`)
	api.Fail("list_custom", 500, ``)
	c := newClient(t, api, token)
	ctx := context.Background()

	_, err := c.CreateCustomDomain(ctx, "Picks", []string{"AAPL"})
	assert.Equal(t, ranker.MsgCreateFailed, ranker.UserMessage(err))
	assert.ErrorIs(t, err, ranker.ErrWrite)

	_, err = c.UpdateCustomDomain(ctx, 7, []string{"AAPL"})
	assert.Equal(t, ranker.MsgUpdateFailed, ranker.UserMessage(err))

	err = c.DeleteCustomDomain(ctx, 7)
	assert.Equal(t, ranker.MsgDeleteFailed, ranker.UserMessage(err))
	assert.True(t, ranker.IsNotFound(err))

	_, err = c.ListCustomDomains(ctx)
	assert.Equal(t, ranker.MsgListFailed, ranker.UserMessage(err))
	assert.ErrorIs(t, err, ranker.ErrFetch)
}

func TestCustomDomainsAnonymous(t *testing.T) {
	api := rankertest.NewServer(nil)
	defer api.Close()
	c := newClient(t, api, "")
	ctx := context.Background()

	list, err := c.ListCustomDomains(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	created, err := c.CreateCustomDomain(ctx, "Picks", []string{"AAPL"})
	require.NoError(t, err)
	assert.Nil(t, created)

	require.NoError(t, c.DeleteCustomDomain(ctx, 1))
	assert.Equal(t, 0, api.TotalCalls())
}
