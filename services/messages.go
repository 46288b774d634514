package services

import (
	"backup-courier/domain"
	"fmt"
)

func detectedMessage(name string, size int64, mode domain.TransportMode) string {
	return fmt.Sprintf("📦 Backup detected: %s\nSize: %.1f MB\nMode: %s", name, domain.SizeInMB(size), mode)
}

func overLimitMessage(size int64, mode domain.TransportMode, limitMB int) string {
	return fmt.Sprintf("❌ Failed: size %.1f MB exceeds the %s limit of %d MB", domain.SizeInMB(size), mode, limitMB)
}

func successMessage(name string) string {
	return fmt.Sprintf("✅ Backup uploaded: %s", name)
}

func failureMessage(name string) string {
	return fmt.Sprintf("❌ Backup failed: %s", name)
}
