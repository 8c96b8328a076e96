// Package auth holds account form validation, bcrypt password hashing and
// the explicit user Session.
//
// # Usage
//
//	svc := auth.NewService(lib.Users, logger)
//	if err := svc.Register(auth.Registration{Name: "Ann", Email: "ann@example.com", Login: "ann", Password: "Secret#123"}); err != nil {
//		// validation error, ErrUserExists or a storage failure
//	}
//	session, err := svc.Login("ann", "Secret#123")
//
// Validation runs before the repository is touched, so rule violations never
// produce database writes.
package auth
