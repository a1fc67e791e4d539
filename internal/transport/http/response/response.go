package response

type Envelope struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
}

func (e Envelope) OK() bool { return e.Status == StatusSuccess }

func Success(code int, msg string, data any) Envelope {
	return Envelope{Status: StatusSuccess, Message: msgOr(code, msg), Code: code, Data: data}
}

// Failure 失败响应（msg 为空则用 code 默认文案）
func Failure(code int, msg string) Envelope {
	return Envelope{Status: StatusFailure, Message: msgOr(code, msg), Code: code}
}

func msgOr(code int, msg string) string {
	if msg != "" {
		return msg
	}
	return CodeMsgMap[code]
}
