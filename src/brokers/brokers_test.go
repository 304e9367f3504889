package brokers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		wantKey string
	}{
		{"SBI", "sbi"},
		{"  sbi securities ", "sbi"},
		{"楽天証券", "rakuten"},
		{"Interactive Brokers", "ibkr"},
		{"IB", "ibkr"},
		{"trading212", "trading212"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.wantKey, Lookup(tc.name).Key, "broker %q", tc.name)
	}
}

func TestLookup_Unknown(t *testing.T) {
	info := Lookup("  My Local Bank ")
	assert.Equal(t, OtherKey, info.Key)
	assert.Equal(t, "My Local Bank", info.DisplayName)

	empty := Lookup("")
	assert.Equal(t, OtherKey, empty.Key)
	assert.Equal(t, "Other", empty.DisplayName)
}

func TestAll_SortedCopy(t *testing.T) {
	all := All()
	assert.Len(t, all, len(known))
	assert.True(t, sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Key < all[j].Key }))

	all[0].DisplayName = "mutated"
	assert.NotEqual(t, "mutated", Lookup(all[0].Key).DisplayName)
}
