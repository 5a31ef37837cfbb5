package middleware

import "net/http"

// SecureHeadersMiddleware 安全响应头中间件
// 存储的 Content-Type 来自上传方，禁止浏览器嗅探和嵌入文件。
func SecureHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			// 防止 MIME 类型嗅探
			h.Set("X-Content-Type-Options", "nosniff")
			// 防止点击劫持
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; media-src 'self'; sandbox")
			next.ServeHTTP(w, r)
		})
	}
}
