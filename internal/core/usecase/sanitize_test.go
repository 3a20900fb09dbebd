package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  shoes ", want: "shoes"},
		{name: "tags removed", in: "<b>red</b> shoes", want: "red shoes"},
		{name: "script body dropped", in: "<script>alert(1)</script>boots", want: "boots"},
		{name: "control characters", in: "sho\x00es\x07", want: "shoes"},
		{name: "inner whitespace collapsed", in: "running \t\n shoes", want: "running shoes"},
		{name: "entities decoded", in: "salt &amp; pepper", want: "salt & pepper"},
		{name: "nfc", in: "café", want: "café"},
		{name: "only markup", in: "<br/>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeText(tt.in))
		})
	}
}
