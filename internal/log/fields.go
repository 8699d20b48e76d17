package log

// Attribute keys shared by every tabung process.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBillID      = "bill_id"
	FieldArchiveDate = "archive_date"

	FieldMethod     = "method"
	FieldPath       = "path"
	FieldRoute      = "route"
	FieldRemoteAddr = "remote_addr"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
)

// Components
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCLI     = "cli"
)

// Ledger operations, used as the operation attribute and metric label.
const (
	OpRecordMoney    = "record_money"
	OpUpdateMoney    = "update_money"
	OpRecordExpense  = "record_expense"
	OpUpdateExpense  = "update_expense"
	OpDeleteExpense  = "delete_expense"
	OpAddCategory    = "add_category"
	OpUpdateCategory = "update_category"
	OpDeleteCategory = "delete_category"
	OpAddBill        = "add_bill"
	OpUpdateBill     = "update_bill"
	OpPayBill        = "pay_bill"
	OpReverseBill    = "reverse_bill"
	OpDeleteBill     = "delete_bill"
	OpAddGoal        = "add_goal"
	OpDeleteGoal     = "delete_goal"
	OpResetPeriod    = "reset_period"
)
