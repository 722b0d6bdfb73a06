// Package orders implements the orders backend service. Reads are open
// to User, Admin and Support roles; mutations require Admin. The data
// lives in a locked in-memory repository seeded with demo orders.
package orders
