package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)
	secret := "whsec_test"

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{
			name:   "valid signature",
			header: Compute(body, secret),
			want:   true,
		},
		{
			name:   "empty header",
			header: "",
			want:   false,
		},
		{
			name:   "not base64",
			header: "%%%not-base64%%%",
			want:   false,
		},
		{
			name:   "signature from wrong secret",
			header: Compute(body, "whsec_other"),
			want:   false,
		},
		{
			name:   "signature over different body",
			header: Compute([]byte(`{"id":"evt_2"}`), secret),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Verify(body, tt.header, secret))
		})
	}
}
