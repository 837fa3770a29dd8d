package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"dealwatch/internal/model"
)

func TestDeparture(t *testing.T) {
	rs := newRules(t)

	tests := []struct {
		name string
		text string
		want model.DepartureSignal
	}{
		{
			name: "no departure clause anywhere",
			text: "Билеты в Гоа от 25000 руб, вылеты весь март",
			want: model.DepartureSignal{},
		},
		{
			name: "explicit non-moscow departure",
			text: "Билеты в Гоа\nВылет из Казани\nЦена от 30000 руб",
			want: model.DepartureSignal{Explicit: true, Resolved: true, FromTarget: false, Value: "казани"},
		},
		{
			name: "explicit moscow departure, inflected",
			text: "Гоа прямым рейсом\nВылет из Москвы 5 марта",
			want: model.DepartureSignal{Explicit: true, Resolved: true, FromTarget: true, Value: "москвы"},
		},
		{
			name: "hashtag token preferred over plain words",
			text: "Вылет из #Москва завтра утром",
			want: model.DepartureSignal{Explicit: true, Resolved: true, FromTarget: true, Value: "москва"},
		},
		{
			name: "english clause",
			text: "Goa deal!\nDeparture from Moscow on March 5",
			want: model.DepartureSignal{Explicit: true, Resolved: true, FromTarget: true, Value: "moscow"},
		},
		{
			name: "airport name counts as target area",
			text: "Вылет из Шереметьево ночью",
			want: model.DepartureSignal{Explicit: true, Resolved: true, FromTarget: true, Value: "шереметьево"},
		},
		{
			name: "clause present but only stop-listed tokens",
			text: "Вылет из #перелёт #отель",
			want: model.DepartureSignal{Explicit: true},
		},
		{
			name: "the word from in running text does not qualify",
			text: "Скидка действует из расчёта на одного пассажира",
			want: model.DepartureSignal{},
		},
		{
			name: "only the first qualifying line is consulted",
			text: "Вылет из Казани\nВылет из Москвы",
			want: model.DepartureSignal{Explicit: true, Resolved: true, FromTarget: false, Value: "казани"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Departure(tt.text, rs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Departure mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
