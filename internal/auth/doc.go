// Package auth derives the caller's Identity from a verified token claim set.
// Token signature, issuer, and audience checks happen behind the
// TokenValidator boundary; this package only interprets the claims it is
// handed. Extraction never rejects a request: a claim source that fails to
// parse is skipped, and a missing subject yields an Identity with an empty
// Subject that downstream policies will deny on their own terms.
package auth
