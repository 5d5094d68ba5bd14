package util

const (
	StorageNone  = "none"
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// QuestionFieldPrefix 考试表单字段名前缀，如 question_12=34
const QuestionFieldPrefix = "question_"

const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "request_id"
	HeaderRequestID     = "X-Request-ID"
)
