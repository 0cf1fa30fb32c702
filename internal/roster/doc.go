// Package roster provides the HTTP client for the student records service.
//
// # Overview
//
// The service exposes a small JSON API rooted at /students. This package
// wraps it in a typed Client and the transport-friendly Student, Bucket and
// Statistics types. It holds no state beyond the HTTP connection pool;
// caching and reconciliation live in the state and syncer packages.
//
// # Endpoints
//
//	GET    /students                     → []Student (null = empty)
//	GET    /students?rollNumber=<key>    → Student | [Student] | null | {} | []
//	GET    /students/statistics          → Statistics (any field may be absent)
//	GET    /students/:id                 → Student
//	POST   /students                     → create (identity assigned remotely)
//	PUT    /students/:id                 → full replacement
//	DELETE /students/:id                 → any 2xx is success
//
// # Lenient Decoding
//
// Records are rendered as-is, so decoding is deliberately forgiving:
//
//   - text attributes accept JSON strings or numbers (batch years and
//     contact numbers are often numeric server-side)
//   - other JSON kinds and nulls decode as ""
//   - bucket counts and totalStudents accept numbers or numeric strings;
//     anything else is zero
//
// A body that is not JSON at all is still a decode failure.
//
// # Errors
//
// Every failed call returns *Error carrying the operation name, the request
// path, the X-Request-ID that was sent and one of three kinds:
//
//	KindTransport  connection refused, DNS, timeout, cancelled context
//	KindStatus     non-2xx response (Status holds the code)
//	KindDecode     malformed or mis-shaped JSON body
//
// Use KindOf and RequestIDOf instead of matching strings.
//
// # Usage Example
//
//	client, err := roster.NewClient("http://localhost:5000", 5*time.Second)
//	if err != nil {
//		return err
//	}
//	students, err := client.ListStudents(ctx)
package roster
