package errors

// ErrorCode identifies an application error category in responses and logs.
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006
	ErrorCode_PROCESSING_FAILED ErrorCode = 1007

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2001

	// Messaging / transcripts
	ErrorCode_INVALID_PHONE_NUMBER  ErrorCode = 3000
	ErrorCode_TRANSCRIPT_NOT_FOUND  ErrorCode = 3001
	ErrorCode_TRANSCRIPT_NOT_PENDING ErrorCode = 3002
	ErrorCode_MEDIA_FETCH_FAILED    ErrorCode = 3003
	ErrorCode_TRANSCRIPTION_FAILED  ErrorCode = 3004
	ErrorCode_EXTRACTION_FAILED     ErrorCode = 3005

	// Templates
	ErrorCode_TEMPLATE_NOT_FOUND ErrorCode = 4000

	// Billing
	ErrorCode_SUBSCRIPTION_NOT_FOUND ErrorCode = 5000
	ErrorCode_NO_METERED_ITEM        ErrorCode = 5001
	ErrorCode_CHECKOUT_FAILED        ErrorCode = 5002
	ErrorCode_USAGE_REPORT_FAILED    ErrorCode = 5003
	ErrorCode_ACTIVATION_TIMEOUT     ErrorCode = 5004

	// Integrations
	ErrorCode_INTEGRATION_WHATSAPP_FAILED ErrorCode = 6000
	ErrorCode_INTEGRATION_STRIPE_FAILED   ErrorCode = 6001
	ErrorCode_INTEGRATION_OPENAI_FAILED   ErrorCode = 6002
	ErrorCode_INTEGRATION_EMAIL_FAILED    ErrorCode = 6003
	ErrorCode_INTEGRATION_STORAGE_FAILED  ErrorCode = 6004
	ErrorCode_INTEGRATION_CACHE_FAILED    ErrorCode = 6005

	// Database
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 7000
	ErrorCode_DB_QUERY_FAILED      ErrorCode = 7001
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                     "OK",
	ErrorCode_INTERNAL:                    "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:            "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                   "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:              "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:           "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:             "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:             "INVALID_PAYLOAD",
	ErrorCode_PROCESSING_FAILED:           "PROCESSING_FAILED",
	ErrorCode_AUTH_INVALID_TOKEN:          "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:          "AUTH_TOKEN_EXPIRED",
	ErrorCode_INVALID_PHONE_NUMBER:        "INVALID_PHONE_NUMBER",
	ErrorCode_TRANSCRIPT_NOT_FOUND:        "TRANSCRIPT_NOT_FOUND",
	ErrorCode_TRANSCRIPT_NOT_PENDING:      "TRANSCRIPT_NOT_PENDING",
	ErrorCode_MEDIA_FETCH_FAILED:          "MEDIA_FETCH_FAILED",
	ErrorCode_TRANSCRIPTION_FAILED:        "TRANSCRIPTION_FAILED",
	ErrorCode_EXTRACTION_FAILED:           "EXTRACTION_FAILED",
	ErrorCode_TEMPLATE_NOT_FOUND:          "TEMPLATE_NOT_FOUND",
	ErrorCode_SUBSCRIPTION_NOT_FOUND:      "SUBSCRIPTION_NOT_FOUND",
	ErrorCode_NO_METERED_ITEM:             "NO_METERED_ITEM",
	ErrorCode_CHECKOUT_FAILED:             "CHECKOUT_FAILED",
	ErrorCode_USAGE_REPORT_FAILED:         "USAGE_REPORT_FAILED",
	ErrorCode_ACTIVATION_TIMEOUT:          "ACTIVATION_TIMEOUT",
	ErrorCode_INTEGRATION_WHATSAPP_FAILED: "INTEGRATION_WHATSAPP_FAILED",
	ErrorCode_INTEGRATION_STRIPE_FAILED:   "INTEGRATION_STRIPE_FAILED",
	ErrorCode_INTEGRATION_OPENAI_FAILED:   "INTEGRATION_OPENAI_FAILED",
	ErrorCode_INTEGRATION_EMAIL_FAILED:    "INTEGRATION_EMAIL_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:  "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:    "INTEGRATION_CACHE_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:        "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:             "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
