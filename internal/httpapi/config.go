package httpapi

// maxUploadBytes caps the multipart body of /train and /predict.
var maxUploadBytes int64 = 10 << 20

// SetMaxUploadBytes configures the upload limit; n <= 0 restores the default.
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = 10 << 20
		return
	}
	maxUploadBytes = n
}

// CORS configuration. No origins disables the middleware.
var corsAllowedOrigins = []string{"*"}

// SetCORSOrigins configures the allowed origins.
func SetCORSOrigins(origins []string) {
	corsAllowedOrigins = append([]string(nil), origins...)
}
