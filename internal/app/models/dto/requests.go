package dto

// SignUpRequest registers a new account with the identity provider.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName"`
}

// SignInRequest performs a password sign-in.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChooseRoleRequest completes the role-selection flow for a session whose
// profile row does not exist yet.
type ChooseRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SaveAttendanceRequest upserts the attendance record for a natural key.
// The date is a plain calendar date, YYYY-MM-DD.
type SaveAttendanceRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	SubjectID string `json:"subjectId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Present   bool   `json:"present"`
}

// ToggleAttendanceRequest flips a record's present flag. Present carries the
// record's current value as the client last saw it.
type ToggleAttendanceRequest struct {
	Present bool `json:"present"`
}

// SessionResponse describes the resolved session returned from auth
// endpoints.
type SessionResponse struct {
	AccessToken string `json:"accessToken,omitempty"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	State       string `json:"state"`
}
