package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "+91 98765-43210", want: "9876543210"},
		{in: "9876543210", want: "9876543210"},
		{in: "09876543210", want: "9876543210"},
		{in: "(987) 654 3210", want: "9876543210"},
		{in: "12345", want: "12345"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMobile(tt.in))
		})
	}
}

func TestMobile(t *testing.T) {
	m, ok := Mobile("+91 98765-43210")
	assert.True(t, ok)
	assert.Equal(t, "9876543210", m)

	_, ok = Mobile("98765")
	assert.False(t, ok)
}

func TestPincode(t *testing.T) {
	p, ok := Pincode(" 560001 ")
	assert.True(t, ok)
	assert.Equal(t, "560001", p)

	_, ok = Pincode("056001")
	assert.False(t, ok)
	_, ok = Pincode("5600")
	assert.False(t, ok)
}

func TestEmail(t *testing.T) {
	_, ok := Email("")
	assert.True(t, ok)
	_, ok = Email("a@b.co")
	assert.True(t, ok)
	_, ok = Email("not-an-email")
	assert.False(t, ok)
}

func TestError(t *testing.T) {
	assert.Equal(t, "orderId: is required", Missing("orderId").Error())
}
