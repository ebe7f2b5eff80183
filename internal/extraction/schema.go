package extraction

// FieldType is the semantic type of a schema field.
type FieldType string

const (
	FieldNumber FieldType = "number"
	FieldString FieldType = "string"
)

// Field describes one property the model must return.
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

// Schema is the output contract shared by the instruction text and the
// provider's structured-output request.
type Schema struct {
	Version string
	Fields  []Field
}

// Required lists every field name; all fields are mandatory.
func (s Schema) Required() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// SourcePlaceholder is what the model writes when the funding source is unknown.
const SourcePlaceholder = "chưa rõ"

// ExtractionSchema is the v1 expense/income record contract.
var ExtractionSchema = Schema{
	Version: "v1",
	Fields: []Field{
		{Name: "amount", Type: FieldNumber, Description: "Số tiền theo đơn vị VND, chỉ là số."},
		{Name: "purpose", Type: FieldString, Description: "Mục đích chi tiêu hoặc thu nhập."},
		{Name: "category", Type: FieldString, Description: "Nhóm chi tiêu/thu nhập phù hợp như ăn uống, di chuyển, lương, giải trí."},
		{Name: "time", Type: FieldString, Description: "Thời gian chuẩn ISO-8601 nếu xác định được, nếu không dùng ngày hiện tại theo timezone."},
		{Name: "source", Type: FieldString, Description: "Nguồn tiền: ví dụ tiền mặt, tài khoản ngân hàng, momo, lương, " + SourcePlaceholder + "."},
		{Name: "raw_message", Type: FieldString, Description: "Tin nhắn gốc người dùng gửi."},
	},
}
