package utility

import (
	"regexp"

	"estate_crm/internal/common"
)

// ValidateEmail kiểm tra định dạng email
func ValidateEmail(email string) error {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return common.ErrInvalidFormat
	}
	return nil
}

// NormalizePhone chuẩn hóa số điện thoại trước khi so trùng:
// bỏ khoảng trắng, dấu chấm, gạch ngang; đổi tiền tố +84 thành 0.
func NormalizePhone(phone string) string {
	re := regexp.MustCompile(`[\s.\-()]`)
	p := re.ReplaceAllString(phone, "")
	if len(p) > 3 && p[:3] == "+84" {
		p = "0" + p[3:]
	}
	return p
}
