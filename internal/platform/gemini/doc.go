// Package gemini adapts Google's Gemini API (google.golang.org/genai) to the
// generation.Completer contract, so reminder content can be produced by
// Gemini instead of the default gateway.
//
// Only the transport lives here. Prompt rendering, retries, parsing and the
// plain-text fallback are shared with every other provider through
// generation.Client.
package gemini
