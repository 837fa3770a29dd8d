package extract

import "testing"

func TestPrice(t *testing.T) {
	rs := newRules(t)

	tests := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{
			name:   "dot thousands separator",
			text:   "билеты за 51.400 руб туда-обратно",
			want:   51400,
			wantOK: true,
		},
		{
			name:   "latin P currency",
			text:   "Гоа из Москвы 60500P прямой",
			want:   60500,
			wantOK: true,
		},
		{
			name:   "space thousands separator",
			text:   "всего за 23 999 руб.",
			want:   23999,
			wantOK: true,
		},
		{
			name:   "ruble sign without space",
			text:   "от 12500₽ в одну сторону",
			want:   12500,
			wantOK: true,
		},
		{
			name:   "short r abbreviation",
			text:   "перелёт 45000 р, отель отдельно",
			want:   45000,
			wantOK: true,
		},
		{
			name:   "minimum of several fares",
			text:   "туда 12000 руб, обратно 9500 руб",
			want:   9500,
			wantOK: true,
		},
		{
			name: "below plausible range ignored",
			text: "сбор 500 руб",
		},
		{
			name: "above plausible range ignored",
			text: "бизнес-класс 650000 руб",
		},
		{
			name: "amount without currency marker ignored",
			text: "вместимость 25000 пассажиров в год",
		},
		{
			name: "no numbers at all",
			text: "цену уточняйте в комментариях",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Price(tt.text, rs)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Price(%q) = %d, %v; want %d, %v", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPriceNeverOutsideRange(t *testing.T) {
	rs := newRules(t)

	texts := []string{
		"акция 999 руб",
		"1000 руб ровно",
		"500000 руб потолок",
		"500001 руб уже дорого",
		"телефон 8 916 123 руб", // garbled, parses as grouped digits
	}
	for _, text := range texts {
		if v, ok := Price(text, rs); ok && (v < MinPrice || v > MaxPrice) {
			t.Errorf("Price(%q) = %d, outside [%d, %d]", text, v, MinPrice, MaxPrice)
		}
	}
}
