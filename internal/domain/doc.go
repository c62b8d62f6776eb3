// Package domain defines the core business entities and errors: vocabulary
// jobs, their per-word items, generated word definitions, and users.
package domain
