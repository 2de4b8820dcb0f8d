// Package auth provides authentication and authorisation for Customer Core.
//
// It implements a 2-tier role model (ADMIN → SUPERADMIN) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Signed HS256 bearer tokens with per-request store validation
//   - Blinded credential errors: unknown email and wrong password are
//     indistinguishable, and account state only leaks after a password match
//   - Ownership-scoped customer access: ADMIN sees only records it created,
//     SUPERADMIN sees everything
//   - SUPERADMIN-only staff account management with self-deactivation denied
//
// Token claims are never trusted for authorisation. Every validated request
// re-reads the account row, so role changes and deactivations take effect on
// the next request rather than at token expiry.
package auth
