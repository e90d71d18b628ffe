package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data    string
		unique  string
		payload string
	}{
		{"\\fbuy_plan|3", "buy_plan", "3"},
		{"\\fcancel|", "cancel", ""},
		{"\\frates", "rates", ""},
		{"my_orders|", "my_orders", ""},
		{"\\fconfirm| spaced ", "confirm", " spaced "},
		{"", "", ""},
	}
	for _, tc := range cases {
		unique, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
		if unique != tc.unique || payload != tc.payload {
			t.Errorf("ParseCallbackData(%q) = %q/%q, want %q/%q",
				tc.data, unique, payload, tc.unique, tc.payload)
		}
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	if unique != "" || payload != "" {
		t.Errorf("nil callback parsed to %q/%q", unique, payload)
	}
}
