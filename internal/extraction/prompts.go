package extraction

import (
	"fmt"
	"strings"
)

// BuildInstruction returns the fixed system instruction for the extraction model.
// Field names and types are taken from schema.
func BuildInstruction(schema Schema, timezone string) string {
	var b strings.Builder
	b.WriteString("Bạn là hệ thống trích xuất dữ liệu chi tiêu/thu nhập tiếng Việt. ")
	b.WriteString("Trả về JSON đúng schema với các trường: ")
	for i, f := range schema.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (%s)", f.Name, f.Type)
	}
	b.WriteString(". ")
	b.WriteString("amount bắt buộc là số, không có dấu chấm phẩy hay ký tự tiền tệ. ")
	fmt.Fprintf(&b, "Nếu người dùng không ghi ngày, suy ra ngày hiện tại theo timezone %s. ", timezone)
	fmt.Fprintf(&b, "source nếu không rõ thì ghi %q.", SourcePlaceholder)
	return b.String()
}
