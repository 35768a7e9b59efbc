package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeQueryUpperBoundExclusive(t *testing.T) {
	q := rangeQuery("market.market_history")

	// The handler advances an inclusive calendar `to` by one day, so a
	// record at exactly the following midnight must stay out.
	assert.Contains(t, q, "ts < ?")
	assert.NotContains(t, q, "ts <= ?")
	assert.Contains(t, q, "FROM market.market_history")
	assert.Contains(t, q, "ORDER BY ts ASC")
}
