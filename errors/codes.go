package errors

// ErrorCode identifies an application error category
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_SOURCE_UNAVAILABLE
	ErrorCode_CALL_NOT_FOUND
	ErrorCode_TURN_OUT_OF_RANGE
	ErrorCode_UNKNOWN_RATING_FIELD
	ErrorCode_EXPORT_FAILED
	ErrorCode_EXPORT_UPLOAD_FAILED
	ErrorCode_EXPORT_STORAGE_DISABLED
	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                 "OK",
	ErrorCode_INTERNAL:                "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:        "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:               "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:         "INVALID_PAYLOAD",
	ErrorCode_SOURCE_UNAVAILABLE:      "SOURCE_UNAVAILABLE",
	ErrorCode_CALL_NOT_FOUND:          "CALL_NOT_FOUND",
	ErrorCode_TURN_OUT_OF_RANGE:       "TURN_OUT_OF_RANGE",
	ErrorCode_UNKNOWN_RATING_FIELD:    "UNKNOWN_RATING_FIELD",
	ErrorCode_EXPORT_FAILED:           "EXPORT_FAILED",
	ErrorCode_EXPORT_UPLOAD_FAILED:    "EXPORT_UPLOAD_FAILED",
	ErrorCode_EXPORT_STORAGE_DISABLED: "EXPORT_STORAGE_DISABLED",
	ErrorCode_DB_CONNECTION_FAILED:    "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:         "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
