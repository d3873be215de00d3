// Package notifsvc - Checker nhắc lịch hẹn khách (delayed_client).
// Một chu kỳ: tìm khách tới hạn → xác định người nhận → dedup chưa-đọc → tạo
// thông báo → enqueue email nhắc (best-effort).
package notifsvc

import (
	"context"
	"fmt"

	crmmodels "estate_crm/internal/api/crm/models"
	crmvc "estate_crm/internal/api/crm/service"
	deliverymodels "estate_crm/internal/api/delivery/models"
	notifmodels "estate_crm/internal/api/notification/models"
	"estate_crm/internal/delivery"
	"estate_crm/internal/global"
	"estate_crm/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DueClientSource nguồn khách có lịch hẹn đã tới hạn (nextActionDate <= now).
type DueClientSource interface {
	FindDueNextAction(ctx context.Context, now int64) ([]crmmodels.Client, error)
}

// DelayedStore đọc/ghi thông báo delayed_client.
type DelayedStore interface {
	HasUnreadDelayed(ctx context.Context, userID, clientID primitive.ObjectID) (bool, error)
	CreateDelayed(ctx context.Context, userID, clientID, ownerOrgID primitive.ObjectID, clientName string) (*notifmodels.Notification, error)
}

// ReminderEnqueuer gửi nhắc ngoài in-app (email). Lỗi enqueue chỉ log, không fail chu kỳ.
type ReminderEnqueuer interface {
	EnqueueDelayedReminder(ctx context.Context, notification *notifmodels.Notification, client *crmmodels.Client) error
}

// NotificationCheckService chạy một chu kỳ kiểm tra lịch hẹn.
type NotificationCheckService struct {
	clients  DueClientSource
	store    DelayedStore
	reminder ReminderEnqueuer // nil = không gửi email
}

// NewNotificationCheckService tạo checker với các service thật.
func NewNotificationCheckService() (*NotificationCheckService, error) {
	clientService, err := crmvc.NewClientService()
	if err != nil {
		return nil, fmt.Errorf("tạo ClientService: %w", err)
	}
	notificationService, err := NewNotificationService()
	if err != nil {
		return nil, fmt.Errorf("tạo NotificationService: %w", err)
	}
	reminder, err := newEmailReminderEnqueuer()
	if err != nil {
		// Thiếu queue/collection thì vẫn chạy được phần in-app
		logger.GetAppLogger().WithError(err).Warn("⏰ [DELAYED_CHECKER] Không khởi tạo được email reminder, chỉ tạo thông báo in-app")
		reminder = nil
	}
	return &NotificationCheckService{
		clients:  clientService,
		store:    notificationService,
		reminder: reminder,
	}, nil
}

// NewNotificationCheckServiceWith tạo checker với dependency tự chọn (dùng cho test).
func NewNotificationCheckServiceWith(clients DueClientSource, store DelayedStore, reminder ReminderEnqueuer) *NotificationCheckService {
	return &NotificationCheckService{clients: clients, store: store, reminder: reminder}
}

// CheckCycleResult kết quả một chu kỳ kiểm tra.
type CheckCycleResult struct {
	Due     int // Số khách tới hạn
	Created int // Số thông báo mới tạo
	Skipped int // Bỏ qua (đã có thông báo chưa đọc, hoặc không xác định được người nhận)
	Failed  int // Lỗi trên từng khách (đã log, không abort chu kỳ)
}

// RunCycle chạy một chu kỳ kiểm tra tại thời điểm now (Unix ms, truyền vào để test được).
// Khách được xử lý tuần tự; lỗi trên một khách được log rồi bỏ qua, không hủy cả chu kỳ.
func (s *NotificationCheckService) RunCycle(ctx context.Context, now int64) (*CheckCycleResult, error) {
	log := logger.GetAppLogger()
	due, err := s.clients.FindDueNextAction(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("tìm khách tới hạn: %w", err)
	}

	result := &CheckCycleResult{Due: len(due)}
	for i := range due {
		client := &due[i]

		// Người nhận: người phụ trách nếu có, không thì người tạo
		recipient := client.AssignedTo
		if recipient.IsZero() {
			recipient = client.CreatedBy
		}
		if recipient.IsZero() {
			result.Skipped++
			continue
		}

		exists, err := s.store.HasUnreadDelayed(ctx, recipient, client.ID)
		if err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"clientId": client.ID.Hex(),
				"userId":   recipient.Hex(),
			}).Warn("⏰ [DELAYED_CHECKER] Lỗi kiểm tra thông báo chưa đọc, bỏ qua khách này")
			result.Failed++
			continue
		}
		if exists {
			// Đã có thông báo chưa đọc cho cặp (user, client) — không tạo thêm
			result.Skipped++
			continue
		}

		notification, err := s.store.CreateDelayed(ctx, recipient, client.ID, client.OwnerOrganizationID, client.Name)
		if err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"clientId": client.ID.Hex(),
				"userId":   recipient.Hex(),
			}).Warn("⏰ [DELAYED_CHECKER] Lỗi tạo thông báo, bỏ qua khách này")
			result.Failed++
			continue
		}
		result.Created++

		// Nhắc qua email: best-effort, lỗi chỉ log
		if s.reminder != nil {
			if err := s.reminder.EnqueueDelayedReminder(ctx, notification, client); err != nil {
				log.WithError(err).WithFields(map[string]interface{}{
					"clientId": client.ID.Hex(),
					"userId":   recipient.Hex(),
				}).Warn("⏰ [DELAYED_CHECKER] Lỗi enqueue email nhắc, thông báo in-app vẫn đã tạo")
			}
		}
	}
	return result, nil
}

// emailReminderEnqueuer đẩy item email vào delivery queue, người nhận resolve
// từ email của user trong collection users.
type emailReminderEnqueuer struct {
	queue          *delivery.Queue
	userCollection *mongo.Collection
}

func newEmailReminderEnqueuer() (*emailReminderEnqueuer, error) {
	queue, err := delivery.NewQueue()
	if err != nil {
		return nil, err
	}
	userColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s", global.MongoDB_ColNames.Users)
	}
	return &emailReminderEnqueuer{queue: queue, userCollection: userColl}, nil
}

// EnqueueDelayedReminder tạo một item email trong delivery queue.
func (e *emailReminderEnqueuer) EnqueueDelayedReminder(ctx context.Context, notification *notifmodels.Notification, client *crmmodels.Client) error {
	var user struct {
		Email string `bson:"email"`
	}
	if err := e.userCollection.FindOne(ctx, bson.M{"_id": notification.UserID}).Decode(&user); err != nil {
		return fmt.Errorf("tìm email người nhận: %w", err)
	}
	if user.Email == "" {
		return fmt.Errorf("user %s không có email", notification.UserID.Hex())
	}
	item := &deliverymodels.DeliveryQueueItem{
		EventType:           notifmodels.NotificationTypeDelayedClient,
		OwnerOrganizationID: notification.OwnerOrganizationID,
		ChannelType:         "email",
		Recipient:           user.Email,
		Subject:             notification.Title,
		Content:             notification.Message,
		Payload: map[string]interface{}{
			"notificationId": notification.ID.Hex(),
			"clientId":       client.ID.Hex(),
			"userId":         notification.UserID.Hex(),
		},
	}
	return e.queue.Enqueue(ctx, []*deliverymodels.DeliveryQueueItem{item})
}
