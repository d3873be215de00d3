// Package utility - Test chuẩn hóa SĐT (đầu vào của check trùng trong tổ chức).
package utility

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"0901 234 567":   "0901234567",
		"0901.234.567":   "0901234567",
		"0901-234-567":   "0901234567",
		"+84901234567":   "0901234567",
		"+84 901 234 56": "090123456",
		"(0901) 234567":  "0901234567",
		"0901234567":     "0901234567",
		"":               "",
	}
	for input, want := range cases {
		if got := NormalizePhone(input); got != want {
			t.Errorf("NormalizePhone(%q) = %q, muốn %q", input, got, want)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("agent@example.com"); err != nil {
		t.Errorf("email hợp lệ bị từ chối: %v", err)
	}
	for _, bad := range []string{"", "khong-phai-email", "a@b", "a b@c.com"} {
		if err := ValidateEmail(bad); err == nil {
			t.Errorf("ValidateEmail(%q) phải trả về lỗi", bad)
		}
	}
}
