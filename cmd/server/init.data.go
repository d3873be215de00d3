package main

import (
	"estate_crm/internal/api/initsvc"
	"estate_crm/internal/global"
	"estate_crm/internal/logger"
)

func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	initService, err := initsvc.NewInitService()
	if err != nil {
		log.Fatalf("Failed to initialize init service: %v", err)
	}

	// 1. Khởi tạo Organization Root (PHẢI LÀM TRƯỚC)
	log.Info("🔄 [INIT] Step 1: Initializing root organization...")
	if err := initService.InitRootOrganization(); err != nil {
		log.Fatalf("Failed to initialize root organization: %v", err)
	}
	log.Info("✅ [INIT] Step 1: Root organization initialized")

	// 2. Khởi tạo Permissions (tạo các quyền mới nếu chưa có)
	log.Info("🔄 [INIT] Step 2: Initializing permissions...")
	if err := initService.InitPermission(); err != nil {
		log.Fatalf("Failed to initialize permissions: %v", err)
	}
	log.Info("✅ [INIT] Step 2: Permissions initialized/updated successfully")

	// 3. Khởi tạo các vai trò mặc định
	log.Info("🔄 [INIT] Step 3: Initializing roles...")
	if err := initService.InitRole(); err != nil {
		log.Fatalf("Failed to initialize roles: %v", err)
	}
	log.Info("✅ [INIT] Step 3: Roles initialized")

	// 4. Đảm bảo Administrator có đầy đủ Permission (tự gán quyền mới nếu có)
	if err := initService.CheckPermissionForAdministrator(); err != nil {
		log.Warnf("Failed to check permissions for administrator: %v", err)
	} else {
		log.Info("Administrator role permissions synchronized successfully")
	}

	// 5. Tạo user admin mặc định từ env (nếu có config)
	// Không có ADMIN_EMAIL thì user đầu tiên đăng ký sẽ tự trở thành admin
	cfg := global.ServerConfig
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := initService.InitAdminUser(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Warnf("Failed to initialize admin user: %v", err)
		} else {
			log.Info("✅ [INIT] Admin user initialized successfully")
		}
	} else {
		log.Info("ADMIN_EMAIL not set, user đầu tiên đăng ký sẽ tự động trở thành admin")
	}

	log.Info("✅ [INIT] InitDefaultData completed successfully")
}
