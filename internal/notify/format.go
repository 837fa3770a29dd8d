package notify

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"dealwatch/internal/model"
)

const previewLimit = 300

var ruMonthNames = [13]string{
	"", "январь", "февраль", "март", "апрель", "май", "июнь",
	"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
}

// FormatMatch renders one matched message as an HTML notification:
// source header, date/destination/price summary, a preview of the post
// and a permalink. All interpolated text is escaped.
func FormatMatch(msg model.Message, v model.Verdict, targetMonth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✈️ <b>%s</b>\n", html.EscapeString(msg.SourceID))
	fmt.Fprintf(&b, "<i>%s</i>\n\n", html.EscapeString(summary(v, targetMonth)))
	b.WriteString(html.EscapeString(preview(msg.Text)))
	fmt.Fprintf(&b, "\n\n<a href=\"https://t.me/%s/%d\">👉 Открыть пост</a>", msg.SourceID, msg.ID)
	return b.String()
}

func summary(v model.Verdict, targetMonth int) string {
	dates := "дата не указана"
	switch {
	case len(v.Evidence.TargetDates) > 0:
		parts := make([]string, len(v.Evidence.TargetDates))
		for i, d := range v.Evidence.TargetDates {
			parts[i] = fmt.Sprintf("%02d.%02d", d.Day, d.Month)
		}
		dates = strings.Join(parts, ", ")
	case v.Reason == model.ReasonTargetMonthMentioned:
		dates = monthName(targetMonth)
	}

	dest := strings.Join(v.Evidence.Destinations, ", ")

	price := "цена не указана"
	if v.Evidence.Price > 0 {
		price = formatPrice(v.Evidence.Price) + "₽"
	}

	return fmt.Sprintf("📅 %s | ✈️ %s | 💰 %s", dates, dest, price)
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLimit]) + "..."
}

// formatPrice groups thousands with spaces: 60500 -> "60 500".
func formatPrice(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return ruMonthNames[m]
}
