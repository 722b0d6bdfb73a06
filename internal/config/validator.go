package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// catchAllSegment matches a trailing wildcard segment such as {**} or
// {**catch-all}.
var catchAllSegment = regexp.MustCompile(`^\{\*\*[^/{}]*\}$`)

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// Validate checks the configuration for structural errors. Any error returned
// here is a ConfigurationError: the process must refuse to serve traffic, and
// a reload must keep the previous generation.
func (c *GatewayConfig) Validate() error {
	var errs []error

	errs = append(errs, c.validateAuth()...)
	clusterNames := map[string]bool{}
	errs = append(errs, c.validateClusters(clusterNames)...)
	policyNames := map[string]bool{}
	errs = append(errs, c.validatePolicies(policyNames)...)
	errs = append(errs, c.validateRoutes(clusterNames, policyNames)...)

	if c.Limits.Enabled && c.Limits.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("rateLimit: requestsPerSecond must be positive when enabled"))
	}

	return errors.Join(errs...)
}

func (c *GatewayConfig) validateAuth() []error {
	var errs []error
	if c.Auth.JWKSURL != "" && c.Auth.Secret != "" {
		errs = append(errs, errors.New("auth: jwksUrl and secret are mutually exclusive"))
	}
	if c.Auth.JWKSURL != "" {
		if _, err := url.ParseRequestURI(c.Auth.JWKSURL); err != nil {
			errs = append(errs, fmt.Errorf("auth: invalid jwksUrl: %w", err))
		}
	}
	return errs
}

func (c *GatewayConfig) validateClusters(names map[string]bool) []error {
	var errs []error
	for _, cluster := range c.Clusters {
		if cluster.Name == "" {
			errs = append(errs, errors.New("cluster: name is required"))
			continue
		}
		if names[cluster.Name] {
			errs = append(errs, fmt.Errorf("cluster %s: duplicate name", cluster.Name))
		}
		names[cluster.Name] = true

		if len(cluster.Destinations) == 0 {
			errs = append(errs, fmt.Errorf("cluster %s: at least one destination is required", cluster.Name))
		}
		for _, dest := range cluster.Destinations {
			u, err := url.Parse(dest)
			if err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, fmt.Errorf("cluster %s: invalid destination %q", cluster.Name, dest))
			}
		}
		if cluster.Breaker != nil && cluster.Breaker.FailureThreshold <= 0 {
			errs = append(errs, fmt.Errorf("cluster %s: breaker failureThreshold must be positive", cluster.Name))
		}
	}
	return errs
}

func (c *GatewayConfig) validatePolicies(names map[string]bool) []error {
	var errs []error
	for _, policy := range c.Policies {
		if policy.Name == "" {
			errs = append(errs, errors.New("policy: name is required"))
			continue
		}
		if names[policy.Name] {
			errs = append(errs, fmt.Errorf("policy %s: duplicate name", policy.Name))
		}
		names[policy.Name] = true

		if len(policy.Requirements) == 0 {
			errs = append(errs, fmt.Errorf("policy %s: at least one requirement is required", policy.Name))
		}
		for i, req := range policy.Requirements {
			if err := validateRequirement(policy.Name, i, req); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

func validateRequirement(policy string, index int, req Requirement) error {
	set := 0
	if len(req.RolesAny) > 0 {
		set++
	}
	if req.ClaimEquals != nil {
		set++
		if req.ClaimEquals.Key == "" || req.ClaimEquals.Value == "" {
			return fmt.Errorf("policy %s: requirement %d: claimEquals needs key and value", policy, index)
		}
	}
	if req.ClaimPresent != "" {
		set++
	}
	if req.TimeWindow != nil {
		set++
		tw := req.TimeWindow
		if tw.StartHourUTC < 0 || tw.StartHourUTC > 23 || tw.EndHourUTC < 0 || tw.EndHourUTC > 23 {
			return fmt.Errorf("policy %s: requirement %d: timeWindow hours must be in [0,23]", policy, index)
		}
		if tw.StartHourUTC > tw.EndHourUTC {
			return fmt.Errorf("policy %s: requirement %d: timeWindow start must not exceed end", policy, index)
		}
	}
	if req.Expression != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("policy %s: requirement %d: exactly one requirement kind must be set", policy, index)
	}
	return nil
}

func (c *GatewayConfig) validateRoutes(clusters, policies map[string]bool) []error {
	var errs []error
	ids := map[string]bool{}
	for _, route := range c.Routes {
		if route.ID == "" {
			errs = append(errs, errors.New("route: id is required"))
			continue
		}
		if ids[route.ID] {
			errs = append(errs, fmt.Errorf("route %s: duplicate id", route.ID))
		}
		ids[route.ID] = true

		if err := validatePathPattern(route.PathPattern); err != nil {
			errs = append(errs, fmt.Errorf("route %s: %w", route.ID, err))
		}
		for _, method := range route.Methods {
			if !validMethods[strings.ToUpper(method)] {
				errs = append(errs, fmt.Errorf("route %s: invalid method %q", route.ID, method))
			}
		}
		if route.ClusterID == "" || !clusters[route.ClusterID] {
			errs = append(errs, fmt.Errorf("route %s: unknown cluster %q", route.ID, route.ClusterID))
		}
		if route.PolicyName == "" || !policies[route.PolicyName] {
			errs = append(errs, fmt.Errorf("route %s: unknown policy %q", route.ID, route.PolicyName))
		}
	}
	return errs
}

func validatePathPattern(pattern string) error {
	if pattern == "" || !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("pathPattern %q must start with /", pattern)
	}
	segments := strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	for i, seg := range segments {
		if !strings.Contains(seg, "*") && !strings.Contains(seg, "{") {
			continue
		}
		if !catchAllSegment.MatchString(seg) {
			return fmt.Errorf("pathPattern %q: segment %q is not a valid wildcard", pattern, seg)
		}
		if i != len(segments)-1 {
			return fmt.Errorf("pathPattern %q: wildcard segment must be trailing", pattern)
		}
	}
	return nil
}
