// Package utility - tạo và kiểm tra JWT token.
package utility

import (
	"estate_crm/internal/common"

	"github.com/dgrijalva/jwt-go"
)

// TokenClaims chứa data được mã hóa trong JWT token.
type TokenClaims struct {
	UserID       string `json:"userId"`
	Time         string `json:"time"`
	RandomNumber string `json:"randomNumber"`
	jwt.StandardClaims
}

// CreateToken tạo JWT token mới cho người dùng.
// Token được ký bằng HMAC-SHA256 với secret của server.
//
// Parameters:
// - secret: JWT secret của server
// - userID: ID của người dùng (hex string)
// - time: Thời điểm tạo token (hex string, chống trùng)
// - randomNumber: Số ngẫu nhiên (chống trùng)
//
// Returns:
// - map[string]string: Map chứa key "token" là JWT token đã ký
// - error: Lỗi nếu có
func CreateToken(secret string, userID string, time string, randomNumber string) (map[string]string, error) {
	claims := TokenClaims{
		UserID:       userID,
		Time:         time,
		RandomNumber: randomNumber,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, common.NewError(common.ErrCodeAuthToken, "Không thể tạo token", common.StatusInternalServerError, err)
	}

	return map[string]string{"token": signed}, nil
}

// ParseToken kiểm tra chữ ký và giải mã JWT token.
//
// Parameters:
// - secret: JWT secret của server
// - tokenString: JWT token cần kiểm tra
//
// Returns:
// - *TokenClaims: Claims đã giải mã nếu token hợp lệ
// - error: Lỗi nếu token không hợp lệ
func ParseToken(secret string, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, common.NewError(common.ErrCodeAuthToken, "Token không hợp lệ", common.StatusUnauthorized, err)
	}
	return claims, nil
}
