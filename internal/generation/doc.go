// Package generation produces reminder content through an external
// text-completion service. It owns the parts of that exchange that do not
// depend on a particular provider: prompt construction, the retry policy, and
// parsing of the returned content with a graceful fallback for malformed text.
//
// Providers plug in as a Completer (see internal/platform/bluelm and
// internal/platform/gemini). Client wraps a Completer and implements Generator.
package generation
