package handlers

const (
	maxBodyBytes = 1 << 20

	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidSlot         = "Day or period out of range"
	ErrUnknownClass        = "Unknown class"
	ErrUnknownRule         = "Unknown rule"
	ErrUnauthorized        = "Unauthorized"
	ErrTooManyRequests     = "Too many requests"
	ErrSaveFailed          = "Timetable changed but could not be saved"
	ErrInternalServerError = "Internal server error"
)
