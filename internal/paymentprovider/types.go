package paymentprovider

// Коды статусов провайдера.
const (
	// StatusOK — операция подтверждена впервые.
	StatusOK = 100
	// StatusAlreadyVerified — платёж уже был подтверждён ранее.
	// Для settlement это тоже успех: повторный callback идемпотентен.
	StatusAlreadyVerified = 101
)

// RequestPayment — запрос на создание платежа.
type RequestPayment struct {
	MerchantID  string `json:"merchant_id"`
	Amount      int    `json:"amount"`
	CallbackURL string `json:"callback_url"`
	Description string `json:"description"`
	Email       string `json:"email,omitempty"`
	Mobile      string `json:"mobile,omitempty"`
}

// RequestResponse — ответ провайдера на создание платежа.
type RequestResponse struct {
	Status      int    `json:"status"`
	Authority   string `json:"authority"`
	RedirectURL string `json:"redirect_url"`
}

// VerifyPayment — запрос на верификацию платежа.
type VerifyPayment struct {
	MerchantID string `json:"merchant_id"`
	Amount     int    `json:"amount"`
	Authority  string `json:"authority"`
}

// VerifyResponse — ответ провайдера на верификацию.
type VerifyResponse struct {
	Status int    `json:"status"`
	RefID  string `json:"ref_id"`
}

// statusTexts переводит коды отказов провайдера в человекочитаемые причины.
var statusTexts = map[int]string{
	-1:  "information submitted is incomplete",
	-2:  "merchant id or ip address is not correct",
	-3:  "amount should be above minimum",
	-11: "request not found",
	-21: "financial operations for this transaction not found",
	-22: "transaction is unsuccessful",
	-33: "transaction amount does not match the paid amount",
	-54: "authority is expired",
	100: "transaction succeeded",
	101: "transaction already verified",
}

// StatusText возвращает описание кода статуса провайдера.
func StatusText(code int) string {
	if text, ok := statusTexts[code]; ok {
		return text
	}
	return "unknown payment provider status"
}
