package consts

const (
	SessionKey = "session:"
)
