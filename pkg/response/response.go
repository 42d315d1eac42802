package response

// ResponseCode 业务状态码，与 HTTP 状态码相互独立
type ResponseCode int

// Success 成功
const Success ResponseCode = 100

// Response JSON 接口统一结构
type Response struct {
	Message string       `json:"message"`
	Code    ResponseCode `json:"code"`
	Data    any          `json:"data"`
}

func SuccessResponse(data any) Response {
	return Response{Message: "success", Code: Success, Data: data}
}

// ErrorResponse data 恒为 null
func ErrorResponse(code ResponseCode, msg string) Response {
	return Response{Message: msg, Code: code}
}

// FromError 由业务错误构造响应，只暴露 Msg，不暴露内部 Err
func FromError(err *BusinessError) Response {
	return ErrorResponse(err.Code, err.Msg)
}
