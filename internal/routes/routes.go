// Package routes defines HTTP route constants for the application.
package routes

// Static and assets
const (
	RobotsPath     = "GET /robots.txt"
	SyntaxThemeGet = "GET /syntax-theme/{theme}"
	PostPreview    = "GET /posts/{id}/preview"
)

// SSE
const SSEPath = "GET /sse"

// Posts API
const (
	APIPosts      = "GET /api/posts"
	APIPost       = "GET /api/posts/{id}"
	APIPostDelete = "DELETE /api/posts/{id}"
)

// Editor API
const (
	EditorSnapshot = "GET /api/editor"
	EditorCompose  = "POST /api/editor/compose"
	EditorEdit     = "POST /api/editor/edit/{id}"
	EditorDraft    = "PATCH /api/editor/draft"
	EditorMedia    = "POST /api/editor/media"
	EditorSubmit   = "POST /api/editor/submit"
	EditorCancel   = "POST /api/editor/cancel"
	EditorPreview  = "POST /api/editor/preview"
)
