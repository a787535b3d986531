package httpx

type ctxKey string

const (
	// CtxKeyUserID is the authenticated member id (JWT subject).
	CtxKeyUserID ctxKey = "user_id"
	// CtxKeyClaims carries the full jwtx.Claims when a handler needs more.
	CtxKeyClaims ctxKey = "claims"
)
