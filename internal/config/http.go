package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html"
	CTypeJSON = "application/json"
)

const (
	HTTPErrInvalidPostID = "Invalid post id"
)

const (
	// Multipart field carrying the uploaded media file.
	FormMedia = "media"

	FormTitle   = "title"
	FormContent = "content"
	FormImage   = "image"
)
