// Package insightsvc - Rule engine sinh đánh giá khách: thuần, không gọi DB.
package insightsvc

import (
	"fmt"
	"time"

	crmmodels "estate_crm/internal/api/crm/models"
	insightmodels "estate_crm/internal/api/insight/models"
)

// Ngưỡng ngày không tương tác để coi là nguội.
const (
	staleAfterDays   = 14
	dormantAfterDays = 45
)

// BuildClientInsight tính insight cho một khách tại thời điểm now (Unix ms).
// Rule theo thứ tự ưu tiên: trạng thái kết thúc → độ nguội → giai đoạn pipeline.
func BuildClientInsight(client *crmmodels.Client, now int64) insightmodels.ClientInsight {
	stalenessDays := 0
	if client.UpdatedAt > 0 && now > client.UpdatedAt {
		stalenessDays = int((now - client.UpdatedAt) / int64(24*time.Hour/time.Millisecond))
	}

	signal := insightmodels.AttentionSignalWarm
	var summary string
	var suggestions []string

	switch {
	case client.Status == crmmodels.ClientStatusWon:
		signal = insightmodels.AttentionSignalComplete
		summary = fmt.Sprintf("Khách %s đã chốt thành công.", client.Name)
		suggestions = append(suggestions, "Chuyển sang quy trình chăm sóc sau bán")

	case client.Status == crmmodels.ClientStatusLost || client.Status == crmmodels.ClientStatusPostponed:
		signal = insightmodels.AttentionSignalDormant
		summary = fmt.Sprintf("Khách %s đang ở trạng thái %s, không cần chăm chủ động.", client.Name, client.Status)
		if client.Status == crmmodels.ClientStatusPostponed {
			suggestions = append(suggestions, "Đặt lịch hẹn quay lại khi khách sẵn sàng")
		}

	case stalenessDays >= dormantAfterDays:
		signal = insightmodels.AttentionSignalDormant
		summary = fmt.Sprintf("Khách %s không có tương tác trong %d ngày, nguy cơ mất khách.", client.Name, stalenessDays)
		suggestions = append(suggestions, "Liên hệ lại để xác nhận khách còn nhu cầu")

	case stalenessDays >= staleAfterDays:
		signal = insightmodels.AttentionSignalStale
		summary = fmt.Sprintf("Khách %s đã %d ngày chưa được cập nhật.", client.Name, stalenessDays)
		suggestions = append(suggestions, "Gọi điện hoặc nhắn tin hỏi thăm tiến độ")

	case client.Status == crmmodels.ClientStatusNegotiation || client.Rating >= 4:
		signal = insightmodels.AttentionSignalHot
		summary = fmt.Sprintf("Khách %s đang ở giai đoạn quyết định, ưu tiên chăm sóc.", client.Name)
		suggestions = append(suggestions, "Chuẩn bị phương án giá và chính sách thanh toán")
		if client.NextActionDate == 0 {
			suggestions = append(suggestions, "Đặt lịch hẹn tiếp theo, khách chưa có lịch")
		}

	default:
		summary = fmt.Sprintf("Khách %s đang ở giai đoạn %s, giữ nhịp tư vấn.", client.Name, client.Status)
		if client.Rating == 0 {
			suggestions = append(suggestions, "Đánh giá mức độ tiềm năng sau lần liên hệ tới")
		}
		if client.NextActionDate == 0 {
			suggestions = append(suggestions, "Đặt lịch hẹn tiếp theo, khách chưa có lịch")
		}
	}

	return insightmodels.ClientInsight{
		ClientID:            client.ID,
		Signal:              signal,
		Summary:             summary,
		Suggestions:         suggestions,
		StalenessDays:       stalenessDays,
		GeneratedAt:         now,
		OwnerOrganizationID: client.OwnerOrganizationID,
	}
}
