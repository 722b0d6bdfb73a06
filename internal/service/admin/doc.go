// Package admin implements the admin backend service: system info, user
// listings, settings and reports. Every endpoint requires the Admin role;
// the gateway additionally gates reports on department and working hours.
package admin
