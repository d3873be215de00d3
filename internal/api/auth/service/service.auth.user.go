// Package authsvc - service người dùng (User).
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	authdto "estate_crm/internal/api/auth/dto"
	models "estate_crm/internal/api/auth/models"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/global"
	"estate_crm/internal/utility"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Số lần thử lại khi đọc chi tiết user (lỗi mạng thoáng qua khi load profile
// không nên trả lỗi ngay cho client).
const (
	userDetailRetries   = 3
	userDetailBaseDelay = 200 * time.Millisecond
)

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
	userRoleService *basesvc.BaseServiceMongoImpl[models.UserRole]
}

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	userCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	userRoleCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.UserRoles)
	if !exist {
		return nil, fmt.Errorf("failed to get user_roles collection: %v", common.ErrNotFound)
	}

	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](userCollection),
		userRoleService:      basesvc.NewBaseServiceMongo[models.UserRole](userRoleCollection),
	}, nil
}

// Register đăng ký tài khoản mới bằng email/mật khẩu
// Email là duy nhất trong hệ thống, mật khẩu được hash bằng bcrypt trước khi lưu
func (s *UserService) Register(ctx context.Context, input *authdto.UserRegisterInput) (*models.User, error) {
	// Kiểm tra email đã tồn tại chưa
	_, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": input.Email}, nil)
	if err == nil {
		return nil, common.NewError(common.ErrCodeAuthCredentials, fmt.Sprintf("Email '%s' đã được sử dụng", input.Email), common.StatusConflict, nil)
	}
	if !errors.Is(err, common.ErrNotFound) {
		logrus.WithError(err).Error("Register: Lỗi khi kiểm tra email")
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Không thể xử lý mật khẩu", common.StatusInternalServerError, err)
	}

	newUser := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		Phone:    utility.NormalizePhone(input.Phone),
		Tokens:   []models.Token{},
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, newUser)
	if err != nil {
		logrus.WithError(err).Error("Register: Lỗi khi tạo user")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": created.ID.Hex(), "email": created.Email}).Info("Register: Đăng ký thành công")
	return &created, nil
}

// Login đăng nhập bằng email/mật khẩu
// Token được cấp theo hwid (mỗi thiết bị một token riêng) và lưu vào user
func (s *UserService) Login(ctx context.Context, input *authdto.UserLoginInput) (*models.User, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": input.Email}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		logrus.WithError(err).Error("Login: Lỗi khi tìm user theo email")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	if user.IsBlock {
		return nil, common.NewError(common.ErrCodeAuth, "Tài khoản đã bị khóa", common.StatusForbidden, nil)
	}

	// Tạo token mới cho thiết bị này
	rdNumber := rand.Intn(100)
	currentTime := time.Now().Unix()
	tokenMap, err := utility.CreateToken(global.ServerConfig.JwtSecret, user.ID.Hex(), strconv.FormatInt(currentTime, 16), strconv.Itoa(rdNumber))
	if err != nil {
		return nil, err
	}

	user.Token = tokenMap["token"]

	// Cập nhật hoặc thêm token vào tokens array (theo hwid)
	var idTokenExist int = -1
	for i, _token := range user.Tokens {
		if _token.Hwid == input.Hwid {
			idTokenExist = i
			break
		}
	}
	if idTokenExist == -1 {
		user.Tokens = append(user.Tokens, models.Token{Hwid: input.Hwid, JwtToken: tokenMap["token"]})
	} else {
		user.Tokens[idTokenExist].JwtToken = tokenMap["token"]
	}

	tokenUpdateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token":  user.Token,
			"tokens": user.Tokens,
		},
	}
	updatedUser, err := s.BaseServiceMongoImpl.UpdateById(ctx, user.ID, tokenUpdateData)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "error": err.Error()}).Error("Login: Lỗi khi cập nhật token vào user")
		return nil, err
	}

	// Ghi chú: Logic "first user becomes admin" được xử lý ở auth handler (tránh import cycle authsvc -> initsvc)

	logrus.WithFields(logrus.Fields{"user_id": updatedUser.ID.Hex(), "email": updatedUser.Email}).Info("Login: Đăng nhập thành công")
	return &updatedUser, nil
}

// Logout đăng xuất người dùng (xóa token theo hwid)
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID, input *authdto.UserLogoutInput) error {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return err
	}
	newTokens := make([]models.Token, 0)
	for _, t := range user.Tokens {
		if t.Hwid != input.Hwid {
			newTokens = append(newTokens, t)
		}
	}
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"tokens": newTokens,
			"token":  "",
		},
	}
	_, err = s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	return err
}

// ChangePassword đổi mật khẩu người dùng
// Yêu cầu mật khẩu cũ đúng, sau khi đổi sẽ thu hồi toàn bộ token (bắt đăng nhập lại)
func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, input *authdto.UserChangePasswordInput) error {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		return common.NewError(common.ErrCodeAuthCredentials, "Mật khẩu cũ không chính xác", common.StatusUnauthorized, nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.NewError(common.ErrCodeInternalServer, "Không thể xử lý mật khẩu", common.StatusInternalServerError, err)
	}

	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"password": string(hashed),
			"tokens":   []models.Token{},
			"token":    "",
		},
	}
	_, err = s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"user_id": userID.Hex()}).Info("ChangePassword: Đổi mật khẩu thành công, đã thu hồi toàn bộ phiên đăng nhập")
	return nil
}

// SessionInfo thông tin một phiên đăng nhập (một thiết bị)
type SessionInfo struct {
	Hwid    string `json:"hwid"`
	Current bool   `json:"current"`
}

// GetDetail đọc chi tiết user theo id, thử lại với backoff lũy thừa khi lỗi.
// Không thử lại khi không tìm thấy: đó là lỗi dữ liệu, không phải lỗi thoáng qua.
func (s *UserService) GetDetail(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var lastErr error
	delay := userDetailBaseDelay
	for attempt := 0; attempt < userDetailRetries; attempt++ {
		user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
		if err == nil {
			return &user, nil
		}
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, lastErr
}

// ListSessions liệt kê các phiên đăng nhập đang hoạt động của người dùng
// currentToken dùng để đánh dấu phiên hiện tại
func (s *UserService) ListSessions(ctx context.Context, userID primitive.ObjectID, currentToken string) ([]SessionInfo, error) {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions := make([]SessionInfo, 0, len(user.Tokens))
	for _, t := range user.Tokens {
		sessions = append(sessions, SessionInfo{
			Hwid:    t.Hwid,
			Current: t.JwtToken == currentToken,
		})
	}
	return sessions, nil
}

// TerminateSession chấm dứt phiên đăng nhập trên một thiết bị (xóa token theo hwid)
func (s *UserService) TerminateSession(ctx context.Context, userID primitive.ObjectID, hwid string) error {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	newTokens := make([]models.Token, 0, len(user.Tokens))
	for _, t := range user.Tokens {
		if t.Hwid == hwid {
			found = true
			continue
		}
		newTokens = append(newTokens, t)
	}
	if !found {
		return common.NewError(common.ErrCodeDatabaseQuery, fmt.Sprintf("Không tìm thấy phiên đăng nhập với thiết bị '%s'", hwid), common.StatusNotFound, nil)
	}

	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"tokens": newTokens,
		},
	}
	_, err = s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	return err
}
