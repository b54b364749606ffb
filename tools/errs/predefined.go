package errs

// Error codes are grouped by concern: 1xxx generic, 2xxx auth, 3xxx storage.
const (
	ArgsError         = 1001
	RecordNotFound    = 1002
	NoPermission      = 1003
	DuplicateRecord   = 1004
	TokenInvalidError = 2001
	TokenExpiredError = 2002
	PasswordError     = 2003
	DatabaseError     = 3001
)

var (
	ErrArgs           = NewCodeError(ArgsError, "invalid argument")
	ErrRecordNotFound = NewCodeError(RecordNotFound, "record not found")
	ErrNoPermission   = NewCodeError(NoPermission, "no permission")
	ErrDuplicate      = NewCodeError(DuplicateRecord, "record already exists")
	ErrTokenInvalid   = NewCodeError(TokenInvalidError, "token invalid")
	ErrTokenExpired   = NewCodeError(TokenExpiredError, "token expired")
	ErrPassword       = NewCodeError(PasswordError, "invalid credentials")
	ErrDatabase       = NewCodeError(DatabaseError, "database error")
)
