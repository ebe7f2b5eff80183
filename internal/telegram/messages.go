package telegram

import (
	"fmt"

	"github.com/dvloznov/expense-bot/internal/domain"
)

// FailureMessage is sent when a message could not be processed.
const FailureMessage = "❌ Mình chưa xử lý được tin nhắn này. Bạn thử ghi rõ: số tiền + mục đích + ngày (nếu có)."

// SuccessMessage summarizes a saved record.
func SuccessMessage(rec *domain.Record) string {
	if rec == nil {
		rec = &domain.Record{}
	}
	return fmt.Sprintf("✅ Đã lưu: %s VND | %s | %s",
		domain.Display(rec.Amount),
		domain.Display(rec.Purpose),
		domain.Display(rec.Category),
	)
}
