// internal/app/system/limits/limits.go
package limits

// Request body size limits. These keep a single request from exhausting
// memory; the JSON decoders and multipart parsers wrap the body with
// http.MaxBytesReader using these values.
const (
	// MaxJSONBody bounds every JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxProfileImageSize bounds profile image uploads.
	MaxProfileImageSize = 5 << 20 // 5 MB

	// MaxResumeSize bounds resume (PDF) uploads.
	MaxResumeSize = 10 << 20 // 10 MB
)
