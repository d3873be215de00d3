package insightsvc

import (
	"testing"
	"time"

	crmmodels "estate_crm/internal/api/crm/models"
	insightmodels "estate_crm/internal/api/insight/models"
)

func daysAgo(now int64, days int) int64 {
	return now - int64(days)*int64(24*time.Hour/time.Millisecond)
}

func TestBuildClientInsight_KhachDaChotLaComplete(t *testing.T) {
	now := time.Now().UnixMilli()
	client := &crmmodels.Client{Name: "Anh Minh", Status: crmmodels.ClientStatusWon, UpdatedAt: now}

	insight := BuildClientInsight(client, now)
	if insight.Signal != insightmodels.AttentionSignalComplete {
		t.Errorf("Khách đã chốt phải có signal complete, nhận được %s", insight.Signal)
	}
}

func TestBuildClientInsight_ThuongLuongLaHot(t *testing.T) {
	now := time.Now().UnixMilli()
	client := &crmmodels.Client{Name: "Chị Lan", Status: crmmodels.ClientStatusNegotiation, UpdatedAt: now}

	insight := BuildClientInsight(client, now)
	if insight.Signal != insightmodels.AttentionSignalHot {
		t.Errorf("Khách đang thương lượng phải là hot, nhận được %s", insight.Signal)
	}
	if len(insight.Suggestions) == 0 {
		t.Error("Khách hot phải có gợi ý hành động")
	}
}

func TestBuildClientInsight_RatingCaoLaHot(t *testing.T) {
	now := time.Now().UnixMilli()
	client := &crmmodels.Client{Name: "Anh Tuấn", Status: crmmodels.ClientStatusInterested, Rating: 5, UpdatedAt: now}

	insight := BuildClientInsight(client, now)
	if insight.Signal != insightmodels.AttentionSignalHot {
		t.Errorf("Khách rating 5 phải là hot, nhận được %s", insight.Signal)
	}
}

func TestBuildClientInsight_LauKhongCapNhatLaStale(t *testing.T) {
	now := time.Now().UnixMilli()
	client := &crmmodels.Client{Name: "Chị Hoa", Status: crmmodels.ClientStatusContacted, UpdatedAt: daysAgo(now, 20)}

	insight := BuildClientInsight(client, now)
	if insight.Signal != insightmodels.AttentionSignalStale {
		t.Errorf("Khách 20 ngày không cập nhật phải là stale, nhận được %s", insight.Signal)
	}
	if insight.StalenessDays != 20 {
		t.Errorf("StalenessDays phải là 20, nhận được %d", insight.StalenessDays)
	}
}

func TestBuildClientInsight_QuaLauLaDormant(t *testing.T) {
	now := time.Now().UnixMilli()
	client := &crmmodels.Client{Name: "Anh Hùng", Status: crmmodels.ClientStatusContacted, UpdatedAt: daysAgo(now, 60)}

	insight := BuildClientInsight(client, now)
	if insight.Signal != insightmodels.AttentionSignalDormant {
		t.Errorf("Khách 60 ngày không cập nhật phải là dormant, nhận được %s", insight.Signal)
	}
}

func TestBuildClientInsight_TrangThaiHoanLaDormant(t *testing.T) {
	now := time.Now().UnixMilli()
	client := &crmmodels.Client{Name: "Chị Mai", Status: crmmodels.ClientStatusPostponed, UpdatedAt: now}

	insight := BuildClientInsight(client, now)
	if insight.Signal != insightmodels.AttentionSignalDormant {
		t.Errorf("Khách hoãn phải là dormant, nhận được %s", insight.Signal)
	}
}

func TestBuildClientInsight_MacDinhLaWarm(t *testing.T) {
	now := time.Now().UnixMilli()
	client := &crmmodels.Client{Name: "Anh Nam", Status: crmmodels.ClientStatusNew, UpdatedAt: now}

	insight := BuildClientInsight(client, now)
	if insight.Signal != insightmodels.AttentionSignalWarm {
		t.Errorf("Khách mới phải là warm, nhận được %s", insight.Signal)
	}
}

func TestBuildClientInsight_GoiYDatLichKhiChuaCoLich(t *testing.T) {
	now := time.Now().UnixMilli()
	client := &crmmodels.Client{Name: "Anh Nam", Status: crmmodels.ClientStatusNew, UpdatedAt: now, NextActionDate: 0}

	insight := BuildClientInsight(client, now)
	found := false
	for _, s := range insight.Suggestions {
		if s == "Đặt lịch hẹn tiếp theo, khách chưa có lịch" {
			found = true
		}
	}
	if !found {
		t.Error("Khách chưa có lịch hẹn phải có gợi ý đặt lịch")
	}
}
