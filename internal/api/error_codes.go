// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorConflict      = "CONFLICT"
	ErrorValidation    = "VALIDATION_ERROR"

	// 生成相关错误
	ErrorConfiguration     = "CONFIGURATION_ERROR"
	ErrorTransportFailure  = "TRANSPORT_FAILURE"
	ErrorMalformedResponse = "MALFORMED_RESPONSE"
	ErrorNoImageProduced   = "NO_IMAGE_PRODUCED"

	// 角色相关错误
	ErrorCharacterNotFound = "CHARACTER_NOT_FOUND"

	// 剧本相关错误
	ErrorScriptNotFound = "SCRIPT_NOT_FOUND"
	ErrorSceneNotFound  = "SCENE_NOT_FOUND"

	// 项目文件相关错误
	ErrorInvalidProjectFile = "INVALID_PROJECT_FILE"
	ErrorExportFailed       = "EXPORT_FAILED"

	// LLM服务相关错误
	ErrorLLMServiceUnavailable = "LLM_SERVICE_UNAVAILABLE"
	ErrorLLMConfigInvalid      = "LLM_CONFIG_INVALID"
)
