package authz

import (
	"fmt"
	"strings"
	"time"

	"github.com/authgate/authgate/internal/auth"
)

// Requirement is one clause of a policy. All clauses of a policy must be
// satisfied for the policy to allow a request.
type Requirement interface {
	// Describe names the clause for decision reporting and logs.
	Describe() string

	// Satisfied reports whether the clause holds for the identity at the
	// given evaluation time.
	Satisfied(identity *auth.Identity, now time.Time) bool
}

// RoleIn passes when the identity holds at least one of the listed roles.
type RoleIn struct {
	Roles []string
}

func (r RoleIn) Describe() string {
	return fmt.Sprintf("roleIn(%s)", strings.Join(r.Roles, ","))
}

func (r RoleIn) Satisfied(identity *auth.Identity, _ time.Time) bool {
	return identity.HasAnyRole(r.Roles...)
}

// ClaimEquals passes when the named attribute equals the expected value.
type ClaimEquals struct {
	Key   string
	Value string
}

func (r ClaimEquals) Describe() string {
	return fmt.Sprintf("claimEquals(%s=%s)", r.Key, r.Value)
}

func (r ClaimEquals) Satisfied(identity *auth.Identity, _ time.Time) bool {
	value, ok := identity.Attribute(r.Key)
	return ok && value == r.Value
}

// ClaimPresent passes when the named attribute is present and non-empty.
type ClaimPresent struct {
	Key string
}

func (r ClaimPresent) Describe() string {
	return fmt.Sprintf("claimPresent(%s)", r.Key)
}

func (r ClaimPresent) Satisfied(identity *auth.Identity, _ time.Time) bool {
	value, ok := identity.Attribute(r.Key)
	return ok && value != ""
}

// TimeWindow passes when the UTC hour at evaluation time lies inside
// [StartHourUTC, EndHourUTC], boundaries included. It is a coarse
// working-hours gate, not a precise interval.
type TimeWindow struct {
	StartHourUTC int
	EndHourUTC   int
}

func (r TimeWindow) Describe() string {
	return fmt.Sprintf("timeWindow(%d-%d)", r.StartHourUTC, r.EndHourUTC)
}

func (r TimeWindow) Satisfied(_ *auth.Identity, now time.Time) bool {
	hour := now.UTC().Hour()
	return hour >= r.StartHourUTC && hour <= r.EndHourUTC
}
