package middleware

import "net/http"

// StatusObserver はHTTPレスポンスのステータスコードを記録するインターフェース。
// metrics.Collectorが満たす。
type StatusObserver interface {
	ObserveHTTPStatus(statusCode int)
}

// NewStatusMetricsMiddleware はレスポンスのステータスコードをobserverへ記録するミドルウェアを返す。
func NewStatusMetricsMiddleware(observer StatusObserver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(rec, r)
			observer.ObserveHTTPStatus(rec.statusCode)
		})
	}
}
