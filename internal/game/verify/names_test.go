package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"matchday-bot/internal/model"
)

func TestFoldName(t *testing.T) {
	assert.Equal(t, "rafael leao", FoldName("Rafael  Leão"))
	assert.Equal(t, "nicolo barella", FoldName(" NICOLÒ Barella"))
	assert.Equal(t, "", FoldName("   "))
}

func TestFindPlayer(t *testing.T) {
	players := map[string]model.PlayerStats{
		"Lautaro Martínez": {Goals: 1},
		"Marcus Thuram":    {Goals: 2},
		"Khéphren Thuram":  {Assists: 1},
		"Nicolò Barella":   {Cards: 1},
	}

	tests := []struct {
		query string
		key   string
		found bool
	}{
		{"lautaro martinez", "Lautaro Martínez", true},
		{"Martinez", "Lautaro Martínez", true},
		{"barella", "Nicolò Barella", true},
		{"Marcus Thuram", "Marcus Thuram", true},
		{"Thuram", "", false},
		{"Dumfries", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, key, found := FindPlayer(players, tt.query)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.key, key)
		})
	}
}
