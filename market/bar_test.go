package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validBar() Bar {
	return Bar{
		Symbol:       "IF2306",
		Time:         time.Date(2023, 6, 1, 9, 30, 0, 0, time.UTC),
		Open:         4000,
		High:         4010,
		Low:          3990,
		Close:        4005,
		Volume:       1200,
		OpenInterest: 50000,
		Freq:         "1min",
	}
}

func TestBarValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Bar)
		wantErr bool
	}{
		{"valid", func(b *Bar) {}, false},
		{"high_below_close", func(b *Bar) { b.High = 4001 }, true},
		{"high_below_low", func(b *Bar) { b.High = 3980 }, true},
		{"low_above_open", func(b *Bar) { b.Low = 4002 }, true},
		{"negative_volume", func(b *Bar) { b.Volume = -1 }, true},
		{"negative_open_interest", func(b *Bar) { b.OpenInterest = -5 }, true},
		{"doji_flat_bar", func(b *Bar) { b.Open, b.High, b.Low, b.Close = 4000, 4000, 4000, 4000 }, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := validBar()
			tt.mutate(&b)
			err := b.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBarDerived(t *testing.T) {
	t.Parallel()

	b := validBar()
	assert.InDelta(t, (4010+3990+4005)/3.0, b.TypicalPrice(), 1e-9)
	assert.InDelta(t, (4000+4010+3990+4005)/4.0, b.WeightedPrice(), 1e-9)
	assert.InDelta(t, 20, b.Range(), 1e-9)
	assert.InDelta(t, 5, b.Body(), 1e-9)
	assert.True(t, b.Bullish())
	assert.False(t, b.Bearish())
}
