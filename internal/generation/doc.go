// Package generation provides interfaces and types for interacting with
// external AI/LLM services for content generation. It abstracts the details
// of LLM API integration (Gemini), allowing the application to turn
// vocabulary words into structured definition and quiz data without coupling
// to a specific external service.
package generation
