package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTickers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"comma separated", "aapl, msft , googl", []string{"AAPL", "MSFT", "GOOGL"}},
		{"newlines", "nvda\namd\r\nintc", []string{"NVDA", "AMD", "INTC"}},
		{"mixed with empties", ",,aapl,\n\n, tsla ,", []string{"AAPL", "TSLA"}},
		{"duplicates keep first", "aapl, AAPL, msft, aapl", []string{"AAPL", "MSFT"}},
		{"empty", "", []string{}},
		{"only separators", " , \n ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTickers(tt.raw))
		})
	}
}

func TestDetailMessage(t *testing.T) {
	msg, ok := detailMessage([]byte(`{"detail": {"invalid": ["XYZ", "QQQQ"]}}`))
	assert.True(t, ok)
	assert.Equal(t, `Invalid tickers: {"invalid":["XYZ","QQQQ"]}`, msg)

	_, ok = detailMessage([]byte(`{"detail": false}`))
	assert.False(t, ok)

	_, ok = detailMessage([]byte(`{"other": "x"}`))
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "bad", UserMessage(&ValidationError{Message: "bad"}))
	assert.Equal(t, MsgDeleteFailed, UserMessage(&RequestError{Message: MsgDeleteFailed, Err: ErrWrite}))
}
