package service

import "errors"

var (
	// ErrLoginFieldsRequired indicates email, password or role was missing from a login.
	ErrLoginFieldsRequired = errors.New("email, password and role required")
	// ErrInvalidCredentials is returned for every failed login regardless of the cause.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRegisterFieldsRequired indicates an incomplete signup payload.
	ErrRegisterFieldsRequired = errors.New("name, email and password required")
	// ErrUserFieldsRequired indicates an incomplete admin user payload.
	ErrUserFieldsRequired = errors.New("name,email,password,role required")
	// ErrInvalidRole indicates the role is not Admin, Instructor or Student.
	ErrInvalidRole = errors.New("role must be one of Admin, Instructor, Student")
	// ErrEmailTaken indicates another user already owns the email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrUserNotFound indicates no user has the requested email.
	ErrUserNotFound = errors.New("user not found")

	// ErrSubmissionFieldsRequired indicates student or title was missing.
	ErrSubmissionFieldsRequired = errors.New("student and title required")
	// ErrFileRequired indicates the multipart request carried no file.
	ErrFileRequired = errors.New("file required")
	// ErrGradeFieldsRequired indicates score or feedback was absent or null.
	ErrGradeFieldsRequired = errors.New("score and feedback required")
	// ErrInvalidScore indicates the score could not be read as a number.
	ErrInvalidScore = errors.New("score must be a number")
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
)
