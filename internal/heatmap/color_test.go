package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColor(t *testing.T) {
	tests := []struct {
		name string
		cell DayCell
		want ColorToken
	}{
		{
			name: "empty day",
			cell: DayCell{},
			want: Green0,
		},
		{
			name: "completed only",
			cell: newDayCell(testNow, "", 1, todoTotals{total: 2, completed: 2}, false),
			want: Green3,
		},
		{
			name: "pending wins over completed",
			cell: newDayCell(testNow, "", 6, todoTotals{total: 1}, false),
			want: Orange1,
		},
		{
			name: "pending saturates",
			cell: newDayCell(testNow, "", 0, todoTotals{total: 9}, false),
			want: Orange4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveColor(tt.cell))
		})
	}
}

func TestPalettesCoverEveryToken(t *testing.T) {
	for _, p := range []Palette{LightPalette(), DarkPalette()} {
		for _, tok := range append(greenScale[:], orangeScale[:]...) {
			assert.NotEmpty(t, p[tok], tok)
		}
	}
}

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, DarkPalette(), PaletteFor(" Dark "))
	assert.Equal(t, LightPalette(), PaletteFor("light"))
	assert.Equal(t, LightPalette(), PaletteFor("solarized"))
}
