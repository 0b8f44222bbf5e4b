package middleware

// Context keys stored on the echo context.
const (
	ContextKeySubject   = "subject"
	ContextKeyClaims    = "claims"
	ContextKeyRequestID = "request_id"
)
