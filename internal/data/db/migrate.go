package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}

	// Stage values are closed; reject anything outside the lifecycle at the store too.
	if err := db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_user_stage') THEN
				ALTER TABLE "user" ADD CONSTRAINT chk_user_stage
				CHECK (stage IN ('ONBOARDING','DISCOVERY','SHORTLISTING','LOCKED','APPLICATION'));
			END IF;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("create chk_user_stage: %w", err)
	}

	if err := db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_checklist_status') THEN
				ALTER TABLE checklist_item ADD CONSTRAINT chk_checklist_status
				CHECK (status IN ('PENDING','SUBMITTED','APPROVED'));
			END IF;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("create chk_checklist_status: %w", err)
	}

	// Chat history is read newest-first per conversation.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_counsellor_message_conv_created
		ON counsellor_message (conversation_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_counsellor_message_conv_created: %w", err)
	}
	return nil
}
